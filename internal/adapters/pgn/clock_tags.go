package pgn

import (
	"regexp"
	"strconv"
)

// clockTagRE matches the DGT-style clock annotation embedded in move
// comments, e.g. "[%clk 1:55:21]". Fractional seconds are truncated.
var clockTagRE = regexp.MustCompile(`\[%clk\s+(\d+):(\d{1,2}):(\d{1,2})(?:\.\d+)?\]`)

// ParseClock extracts the remaining time in seconds from a move comment.
// The second return value reports whether the comment carried a clock tag.
func ParseClock(comment string) (int, bool) {
	m := clockTagRE.FindStringSubmatch(comment)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + sec, true
}
