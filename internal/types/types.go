package types

import (
	"strings"
	"time"
)

type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// FullText returns the engine's full text verbatim, or the joined segment
// texts when the engine did not report one.
func (t Transcript) FullText() string {
	if strings.TrimSpace(t.Text) != "" {
		return t.Text
	}
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount returns the number of timed words across all segments.
func (t Transcript) WordCount() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Words)
	}
	return n
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"word"`
}

// MuteRange is a span of seconds during which audio is forced silent.
type MuteRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r MuteRange) Duration() time.Duration {
	if r.End <= r.Start {
		return 0
	}
	return time.Duration((r.End - r.Start) * float64(time.Second))
}

type Codec int

const (
	CodecCopy Codec = iota
	CodecTranscode
)

func (c Codec) String() string {
	switch c {
	case CodecCopy:
		return "copy"
	case CodecTranscode:
		return "transcode"
	default:
		return "unknown"
	}
}

type RenderPlan struct {
	NeedsFilter bool
	AudioCodec  Codec
	VideoCodec  Codec
}

// InputFile is one video to process together with the name shown in reports.
type InputFile struct {
	Path string
	Name string
}

type Stage string

const (
	StageInput            Stage = "input"
	StageExtractAudio     Stage = "extract_audio"
	StageTranscribe       Stage = "transcribe"
	StageClassify         Stage = "classify"
	StageMerge            Stage = "merge"
	StageSynthesizeFilter Stage = "synthesize_filter"
	StagePlanRender       Stage = "plan_render"
	StageRender           Stage = "render"
	StageEmit             Stage = "emit"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// FileReport describes the outcome of one file's pass. Stage is the last
// stage reached; when Err is set it is the stage that failed.
type FileReport struct {
	Input          InputFile
	Stage          Stage
	Err            error
	TranscriptPath string
	VideoPath      string
	SubtitlesPath  string
	Flagged        int
	Ranges         []MuteRange
	Plan           RenderPlan
	Elapsed        time.Duration
}

func (r FileReport) Failed() bool { return r.Err != nil }

// Status is StageFailed for a failed file and the last stage reached otherwise.
func (r FileReport) Status() Stage {
	if r.Failed() {
		return StageFailed
	}
	return r.Stage
}
