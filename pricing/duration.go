package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ParseDuration converts a human-entered duration into minutes.
// Accepted forms are "MM:SS" and a raw minute count ("12", "7.5");
// full-width digits/colon are folded to ASCII first. Empty or
// malformed input yields 0, never an error: duration is optional
// under FIXED and PERFORMANCE tariffs, so the parser degrades
// instead of failing.
func ParseDuration(s string) float64 {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" {
		return 0
	}
	if mm, ss, ok := strings.Cut(s, ":"); ok {
		m, err1 := strconv.ParseFloat(strings.TrimSpace(mm), 64)
		sec, err2 := strconv.ParseFloat(strings.TrimSpace(ss), 64)
		if err1 != nil || err2 != nil || m < 0 || sec < 0 {
			return 0
		}
		return m + sec/60
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// FormatDuration renders minutes back into the persisted "MM:SS" shape.
// Non-positive input renders as the empty string (unset).
func FormatDuration(minutes float64) string {
	if minutes <= 0 {
		return ""
	}
	total := int(math.Round(minutes * 60))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
