package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/mutecut/internal/types"
)

func TestRenderSRTMasksWords(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{{
		Start: 0, End: 3,
		Words: []types.Word{
			{Start: 0.5, End: 0.9, Text: "oh"},
			{Start: 2.0, End: 2.4, Text: "shit,"},
			{Start: 2.5, End: 2.9, Text: "really"},
		},
	}}}
	mask := func(s string) string { return strings.ReplaceAll(s, "shit", "****") }

	got := RenderSRT(tr, mask)
	want := "1\n00:00:00,500 --> 00:00:02,900\noh ****, really\n\n"
	if got != want {
		t.Fatalf("RenderSRT =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderSRTSplitsOnBudgetsAndGaps(t *testing.T) {
	var words []types.Word
	for i := 0; i < 12; i++ {
		start := float64(i) * 0.5
		words = append(words, types.Word{Start: start, End: start + 0.4, Text: "word"})
	}
	words = append(words, types.Word{Start: 20, End: 20.5, Text: "later"})
	tr := types.Transcript{Segments: []types.Segment{{Start: 0, End: 21, Words: words}}}

	got := RenderSRT(tr, nil)
	if n := strings.Count(got, " --> "); n != 3 {
		t.Fatalf("expected 3 cues (word budget + gap), got %d:\n%s", n, got)
	}
	if !strings.Contains(got, "00:00:20,000 --> 00:00:20,500\nlater") {
		t.Fatalf("expected gap to start a new cue:\n%s", got)
	}
}

func TestRenderSRTSegmentFallback(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{{Start: 1, End: 2, Text: " hello "}}}
	got := RenderSRT(tr, strings.ToUpper)
	if !strings.Contains(got, "00:00:01,000 --> 00:00:02,000\nHELLO") {
		t.Fatalf("unexpected fallback cue:\n%s", got)
	}
}

func TestSRTTime(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond
	if got := srtTime(d); got != "01:02:03,045" {
		t.Fatalf("srtTime = %q", got)
	}
}
