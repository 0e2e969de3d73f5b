//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// probeStream returns "codec_name,nb_frames" for the selected stream.
func probeStream(mp4Path, selector string) (string, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", selector,
		"-count_packets",
		"-show_entries", "stream=codec_name,nb_read_packets",
		"-of", "csv=p=0",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	return strings.TrimSpace(string(b)), nil
}

var maxVolumeRe = regexp.MustCompile(`max_volume:\s*(-?[0-9.]+|-inf) dB`)

// maxVolumeDB measures the loudest sample of the audio in [start, start+dur).
func maxVolumeDB(mp4Path string, start, dur float64) (float64, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-t", strconv.FormatFloat(dur, 'f', 3, 64),
		"-i", mp4Path,
		"-vn",
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg volumedetect: %w\n%s", err, string(b))
	}
	m := maxVolumeRe.FindStringSubmatch(string(b))
	if m == nil {
		return 0, fmt.Errorf("no max_volume in output:\n%s", string(b))
	}
	if m[1] == "-inf" {
		return -1000, nil
	}
	return strconv.ParseFloat(m[1], 64)
}
