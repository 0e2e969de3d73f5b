package ports

import (
	"context"
	"time"

	"github.com/forPelevin/mutecut/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error
	ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error)
	// MuteFilter compiles merged ranges into the tool's filter grammar.
	// It fails on an empty range set.
	MuteFilter(ranges []types.MuteRange) (string, error)
	// Render writes outVideo following plan; filter is empty when
	// plan.NeedsFilter is false.
	Render(ctx context.Context, inVideo, outVideo string, plan types.RenderPlan, filter string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, workDir string) (types.Transcript, error)
}

// Classifier is loaded once and shared read-only across files.
type Classifier interface {
	ContainsProfanity(token string) bool
	Censor(text string) string
}

type InputSource interface {
	Inputs(ctx context.Context) ([]types.InputFile, error)
}
