package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Converter re-encodes inbound Telegram voice notes to the OGG_OPUS mono
// 16 kHz format the recognizer expects, by shelling out to ffmpeg.
type Converter struct {
	ffmpegPath string
	outputDir  string
	logger     *zap.Logger
}

func NewConverter(ffmpegPath, outputDir string, logger *zap.Logger) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Converter{ffmpegPath: ffmpegPath, outputDir: outputDir, logger: logger}
}

// ToOggOpus converts inputPath and returns the path of the converted file.
// The caller owns both files and removes them after processing.
func (c *Converter) ToOggOpus(ctx context.Context, inputPath string) (string, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	outputPath := filepath.Join(c.outputDir, uuid.New().String()+".ogg")

	cmd := exec.CommandContext(ctx, c.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "libopus",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg failed to convert audio: %w: %s", err, stderr.String())
	}

	return outputPath, nil
}
