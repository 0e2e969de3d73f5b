package ffmpeg

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/forPelevin/mutecut/internal/types"
)

// ErrNoMuteRanges is returned when a mute filter is requested for nothing.
var ErrNoMuteRanges = errors.New("no mute ranges: a filter must not be built for an empty range set")

// VolumeFilter compiles merged ranges into an ffmpeg volume filter that is
// silent whenever t lies inside any closed range. Bounds are widened to whole
// milliseconds so the filter never covers less than the range:
//
//	volume=enable='between(t,2.000,2.400)+between(t,5.100,5.600)':volume=0
func VolumeFilter(ranges []types.MuteRange) (string, error) {
	if len(ranges) == 0 {
		return "", ErrNoMuteRanges
	}
	conds := make([]string, 0, len(ranges))
	for _, r := range ranges {
		start, end := millisBounds(r)
		conds = append(conds, "between(t,"+fmtMillis(start)+","+fmtMillis(end)+")")
	}
	return "volume=enable='" + strings.Join(conds, "+") + "':volume=0", nil
}

// roundingSlack absorbs float noise such as 2.4*1000 = 2400.0000000000005.
const roundingSlack = 1e-6

func millisBounds(r types.MuteRange) (start, end int64) {
	start = int64(math.Floor(r.Start*1000 + roundingSlack))
	end = int64(math.Ceil(r.End*1000 - roundingSlack))
	if end <= start {
		end = start + 1
	}
	return start, end
}

func fmtMillis(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
