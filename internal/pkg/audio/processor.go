package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
)

const transcodeTimeout = 10 * time.Minute

// FFmpegTranscoder converts preview audio to MP3 with an ffmpeg binary.
type FFmpegTranscoder struct {
	ffmpegPath string
	bitrate    string
}

func NewFFmpegTranscoder(ffmpegPath, bitrate string) *FFmpegTranscoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if bitrate == "" {
		bitrate = "192k"
	}
	return &FFmpegTranscoder{ffmpegPath: ffmpegPath, bitrate: bitrate}
}

// ToMP3 writes data to a temp dir, transcodes it with libmp3lame and
// returns the encoded bytes.
func (t *FFmpegTranscoder) ToMP3(ctx context.Context, data []byte, ext string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio input")
	}

	tempDir, err := os.MkdirTemp("", "preview-transcode-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inFile := filepath.Join(tempDir, "input"+normalizeExt(ext))
	outFile := filepath.Join(tempDir, "output.mp3")
	if err := os.WriteFile(inFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write input file: %w", err)
	}

	start := time.Now()
	if _, err := runCommandBytes(ctx, t.ffmpegPath, buildMP3Args(inFile, outFile, t.bitrate)...); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode failed: %w", err)
	}

	out, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcoded file: %w", err)
	}
	logger.Debug("preview transcoded",
		logger.Int("input_bytes", len(data)),
		logger.Int("output_bytes", len(out)),
		logger.Duration("took", time.Since(start)))
	return out, nil
}

func buildMP3Args(inFile, outFile, bitrate string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inFile,
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		outFile,
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".wav"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func runCommandBytes(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
