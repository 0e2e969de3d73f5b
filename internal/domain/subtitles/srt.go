package subtitles

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/forPelevin/mutecut/internal/types"
)

// Per-cue limits.
const (
	charBudget = 42
	wordBudget = 9
	maxGap     = 1500 * time.Millisecond
)

// RenderSRT builds SubRip cues from the transcript's timed words, passing
// every word through mask first. Segments without word timestamps fall back
// to one cue per segment.
func RenderSRT(tr types.Transcript, mask func(string) string) string {
	if mask == nil {
		mask = func(s string) string { return s }
	}
	var lines []line
	for _, s := range tr.Segments {
		words := collectWords(s, mask)
		if len(words) == 0 {
			text := strings.TrimSpace(s.Text)
			if text == "" || s.End <= s.Start {
				continue
			}
			lines = append(lines, line{Start: dur(s.Start), End: dur(s.End), Words: []wword{{Text: mask(text)}}})
			continue
		}
		lines = append(lines, packWords(words)...)
	}

	var b strings.Builder
	for i, ln := range lines {
		parts := make([]string, 0, len(ln.Words))
		for _, w := range ln.Words {
			parts = append(parts, w.Text)
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTime(ln.Start), srtTime(ln.End), strings.Join(parts, " "))
	}
	return b.String()
}

type wword struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type line struct {
	Start time.Duration
	End   time.Duration
	Words []wword
}

func collectWords(s types.Segment, mask func(string) string) []wword {
	var out []wword
	for _, w := range s.Words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		ws, we := dur(w.Start), dur(w.End)
		if we < ws {
			we = ws
		}
		out = append(out, wword{Start: ws, End: we, Text: mask(text)})
	}
	return out
}

func packWords(words []wword) []line {
	var out []line
	cur := line{Start: words[0].Start}
	curLen := 0
	for i, w := range words {
		wl := len([]rune(w.Text))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		gap := len(cur.Words) > 0 && w.Start-cur.Words[len(cur.Words)-1].End > maxGap
		if len(cur.Words) > 0 && (len(cur.Words) >= wordBudget || nextLen > charBudget || gap) {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: w.Start}
			curLen = 0
		}
		cur.Words = append(cur.Words, w)
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		if i == len(words)-1 {
			cur.End = w.End
			out = append(out, cur)
		}
	}
	return out
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, int(d/time.Millisecond))
}

// dur rounds to milliseconds, the precision of SRT timestamps.
func dur(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}
