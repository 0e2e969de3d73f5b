package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/mutecut/internal/domain/redact"
	"github.com/forPelevin/mutecut/internal/ports"
	"github.com/forPelevin/mutecut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/mutecut/internal/types"
	"github.com/forPelevin/mutecut/internal/usecase"
)

// PlanResult is the offline view of what a render would do for a transcript.
type PlanResult struct {
	Flagged []types.Word
	Ranges  []types.MuteRange
	Plan    types.RenderPlan
	Filter  string
}

// LoadTranscript reads a transcript saved with --save-transcript.
func LoadTranscript(path string) (types.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var tr types.Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcript %s: %w", path, err)
	}
	if err := usecase.ValidateTranscript(tr); err != nil {
		return types.Transcript{}, err
	}
	return tr, nil
}

// PlanTranscript runs classification, merging and planning without touching
// any media.
func PlanTranscript(tr types.Transcript, c ports.Classifier) (PlanResult, error) {
	res := PlanResult{Flagged: redact.FlaggedWords(tr, c)}
	res.Ranges = redact.MergeRanges(redact.BuildMuteRanges(tr, c))
	res.Plan = redact.PlanRender(res.Ranges)
	if res.Plan.NeedsFilter {
		f, err := ffmpeg.VolumeFilter(res.Ranges)
		if err != nil {
			return PlanResult{}, err
		}
		res.Filter = f
	}
	return res, nil
}

// RenderPlanReport formats a PlanResult for the terminal.
func RenderPlanReport(res PlanResult, fancy bool) string {
	var b strings.Builder

	rows := make([][]string, 0, len(res.Flagged))
	for _, w := range res.Flagged {
		rows = append(rows, []string{w.Text, fmtSec(w.Start), fmtSec(w.End)})
	}
	if len(rows) > 0 {
		b.WriteString("Flagged words\n")
		b.WriteString(renderTable([]string{"Word", "Start", "End"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}, fancy))
		b.WriteString("\n")
	}

	rows = rows[:0]
	for _, r := range res.Ranges {
		rows = append(rows, []string{fmtSec(r.Start), fmtSec(r.End), fmtSec(r.End - r.Start)})
	}
	if len(rows) > 0 {
		b.WriteString("Mute ranges\n")
		b.WriteString(renderTable([]string{"Start", "End", "Length"}, rows, []columnAlignment{alignRight, alignRight, alignRight}, fancy))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "flagged: %d  ranges: %d  muted: %ss\n", len(res.Flagged), len(res.Ranges), fmtSec(redact.TotalMuted(res.Ranges)))
	fmt.Fprintf(&b, "audio: %s  video: %s\n", res.Plan.AudioCodec, res.Plan.VideoCodec)
	if res.Filter != "" {
		fmt.Fprintf(&b, "filter: %s\n", res.Filter)
	} else {
		b.WriteString("filter: none (streams copied)\n")
	}
	return b.String()
}

func fmtSec(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
