package redact

import (
	"sort"

	"github.com/forPelevin/mutecut/internal/types"
)

// Detector reports whether a normalized token is profane.
type Detector interface {
	ContainsProfanity(token string) bool
}

// BuildMuteRanges returns one raw range per flagged word, in transcript
// order. Zero-width words still yield (zero-width) ranges; MergeRanges drops
// them.
func BuildMuteRanges(tr types.Transcript, d Detector) []types.MuteRange {
	flagged := FlaggedWords(tr, d)
	if len(flagged) == 0 {
		return nil
	}
	out := make([]types.MuteRange, 0, len(flagged))
	for _, w := range flagged {
		out = append(out, types.MuteRange{Start: w.Start, End: w.End})
	}
	return out
}

// FlaggedWords returns the words whose normalized text the detector flags.
func FlaggedWords(tr types.Transcript, d Detector) []types.Word {
	var out []types.Word
	for _, s := range tr.Segments {
		for _, w := range s.Words {
			if d.ContainsProfanity(Normalize(w.Text)) {
				out = append(out, w)
			}
		}
	}
	return out
}

// MergeRanges unions raw ranges into the minimal sorted set of disjoint,
// non-touching ranges covering the same time points. Ranges with End <= Start
// have no audible effect and are dropped. The input is not modified.
func MergeRanges(raw []types.MuteRange) []types.MuteRange {
	rs := make([]types.MuteRange, 0, len(raw))
	for _, r := range raw {
		if r.End > r.Start {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		return nil
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Start == rs[j].Start {
			return rs[i].End < rs[j].End
		}
		return rs[i].Start < rs[j].Start
	})

	out := make([]types.MuteRange, 0, len(rs))
	cur := rs[0]
	for _, r := range rs[1:] {
		if r.Start <= cur.End {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	return append(out, cur)
}

// TotalMuted sums the duration of merged ranges in seconds.
func TotalMuted(merged []types.MuteRange) float64 {
	var total float64
	for _, r := range merged {
		total += r.End - r.Start
	}
	return total
}
