package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMP3Args(t *testing.T) {
	args := buildMP3Args("/tmp/in.wav", "/tmp/out.mp3", "128k")
	assert.Equal(t, "-y", args[0])
	assert.Contains(t, args, "libmp3lame")
	assert.Equal(t, "/tmp/out.mp3", args[len(args)-1])

	for i, a := range args {
		if a == "-b:a" {
			require.Less(t, i+1, len(args))
			assert.Equal(t, "128k", args[i+1])
		}
		if a == "-i" {
			assert.Equal(t, "/tmp/in.wav", args[i+1])
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, ".wav", normalizeExt(""))
	assert.Equal(t, ".wav", normalizeExt(".WAV"))
	assert.Equal(t, ".flac", normalizeExt("flac"))
}

func TestNewFFmpegTranscoderDefaults(t *testing.T) {
	tc := NewFFmpegTranscoder("", "")
	assert.Equal(t, "ffmpeg", tc.ffmpegPath)
	assert.Equal(t, "192k", tc.bitrate)
}

func TestToMP3RejectsEmptyInput(t *testing.T) {
	_, err := NewFFmpegTranscoder("ffmpeg", "192k").ToMP3(context.Background(), nil, ".wav")
	assert.Error(t, err)
}

func TestToMP3MissingBinary(t *testing.T) {
	tc := NewFFmpegTranscoder("/nonexistent/ffmpeg-binary", "192k")
	_, err := tc.ToMP3(context.Background(), []byte("RIFF"), ".wav")
	assert.Error(t, err)
}
