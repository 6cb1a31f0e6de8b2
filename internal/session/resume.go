package session

import (
	"fmt"
	"strings"
)

// Résumé field keys, in the order they are collected and rendered.
const (
	FieldPosition   = "position"
	FieldName       = "name"
	FieldContacts   = "contacts"
	FieldEducation  = "education"
	FieldExperience = "work_experience"
	FieldSkills     = "skills"
	FieldExtra      = "additional_information"
)

// ResumeFields is the collection order of the seven résumé fields.
var ResumeFields = []string{
	FieldPosition,
	FieldName,
	FieldContacts,
	FieldEducation,
	FieldExperience,
	FieldSkills,
	FieldExtra,
}

// ResumeDraft accumulates the résumé fields a user enters step by step.
type ResumeDraft struct {
	values map[string]string
}

func NewResumeDraft() *ResumeDraft {
	return &ResumeDraft{values: make(map[string]string)}
}

// Set stores a value for a known field key and reports whether the key is one
// of the seven résumé fields.
func (d *ResumeDraft) Set(field, value string) bool {
	for _, f := range ResumeFields {
		if f == field {
			d.values[field] = value
			return true
		}
	}
	return false
}

func (d *ResumeDraft) Get(field string) string {
	return d.values[field]
}

// Apply interprets a free-text message at the confirmation step. A message of
// the form "field: new value" overwrites exactly that field (key is
// lower-cased and trimmed, split on the first colon); a message without a
// colon replaces the additional-information field. Returns the field that was
// written, or "" when the message named an unknown field.
func (d *ResumeDraft) Apply(message string) string {
	message = strings.TrimSpace(message)

	if idx := strings.Index(message, ":"); idx >= 0 {
		field := strings.ToLower(strings.TrimSpace(message[:idx]))
		value := strings.TrimSpace(message[idx+1:])
		if d.Set(field, value) {
			return field
		}
		return ""
	}

	d.values[FieldExtra] = message
	return FieldExtra
}

// Summary renders the collected fields for the confirmation message, using a
// dash for fields without a value.
func (d *ResumeDraft) Summary() string {
	lines := make([]string, 0, len(ResumeFields))
	for _, field := range ResumeFields {
		value := d.values[field]
		if value == "" {
			value = "—"
		}
		lines = append(lines, fmt.Sprintf("'%s:' %s", field, value))
	}
	return strings.Join(lines, "\n")
}

// Prompt renders the collected fields as the user message sent to the résumé
// assistant.
func (d *ResumeDraft) Prompt() string {
	var sb strings.Builder
	sb.WriteString("Use this information to write a user summary.\n")
	for _, field := range ResumeFields {
		sb.WriteString(fmt.Sprintf("%s: %s\n", field, d.values[field]))
	}
	return sb.String()
}
