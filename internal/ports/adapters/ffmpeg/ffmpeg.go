package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/mutecut/internal/types"
)

const (
	defaultAudioEncoder = "aac"
	defaultAudioBitrate = "192k"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string

	audioEncoder string
	audioBitrate string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{
		ffmpeg:       ffmpegPath,
		ffprobe:      ffprobePath,
		audioEncoder: defaultAudioEncoder,
		audioBitrate: defaultAudioBitrate,
	}
}

// WithAudioEncoder sets the encoder and bitrate used when audio has to be
// re-encoded. Empty values keep the defaults.
func (a *Adapter) WithAudioEncoder(encoder, bitrate string) *Adapter {
	if strings.TrimSpace(encoder) != "" {
		a.audioEncoder = strings.TrimSpace(encoder)
	}
	if strings.TrimSpace(bitrate) != "" {
		a.audioBitrate = strings.TrimSpace(bitrate)
	}
	return a
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, tail(b))
	}
	return nil
}

func (a *Adapter) MuteFilter(ranges []types.MuteRange) (string, error) {
	return VolumeFilter(ranges)
}

func (a *Adapter) Render(ctx context.Context, inVideo, outVideo string, plan types.RenderPlan, filter string) error {
	args, err := renderArgs(inVideo, outVideo, plan, filter, a.audioEncoder, a.audioBitrate)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render: %w\n%s", err, tail(b))
	}
	return nil
}

var errVideoReencode = errors.New("render plan asks for video re-encode; only stream copy is supported")

func renderArgs(inVideo, outVideo string, plan types.RenderPlan, filter, encoder, bitrate string) ([]string, error) {
	if plan.VideoCodec != types.CodecCopy {
		return nil, errVideoReencode
	}
	if plan.NeedsFilter != (filter != "") {
		return nil, fmt.Errorf("render plan needs_filter=%t does not match filter %q", plan.NeedsFilter, filter)
	}
	if plan.NeedsFilter && plan.AudioCodec != types.CodecTranscode {
		return nil, errors.New("filtered audio cannot be stream copied")
	}

	args := []string{"-y", "-i", inVideo}
	if plan.NeedsFilter {
		args = append(args, "-af", filter)
	}
	args = append(args, "-c:v", "copy")
	switch plan.AudioCodec {
	case types.CodecCopy:
		args = append(args, "-c:a", "copy")
	case types.CodecTranscode:
		args = append(args, "-c:a", encoder)
		if bitrate != "" {
			args = append(args, "-b:a", bitrate)
		}
	default:
		return nil, fmt.Errorf("unsupported audio codec %v", plan.AudioCodec)
	}
	return append(args, outVideo), nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// tail keeps the last lines of tool output; ffmpeg prints its banner first.
func tail(b []byte) string {
	const maxLines = 20
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
