package infrastructure

import (
	"regexp"
	"strconv"

	"github.com/yourusername/vidgrab/internal/domain"
)

// Progress lines look like
//
//	[download]  10.5% of ~ 50.2MiB at  1.2MiB/s ETA 00:30 (frag 3/40)
//
// but the format is not contractual, so each token is matched on its own.
var (
	percentRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	sizeRegex    = regexp.MustCompile(`\bof\s+~?\s*(\d+(?:\.\d+)?\s*[KMGT]i?B)\b`)
	speedRegex   = regexp.MustCompile(`\bat\s+(\d+(?:\.\d+)?\s*[KMGT]i?B/s)`)
	etaRegex     = regexp.MustCompile(`\bETA\s+(\d+(?::\d{2})+)\b`)
)

// ParseProgress extracts whatever progress tokens the line carries.
// Unmatched tokens are simply absent from the result.
func ParseProgress(line string) domain.ProgressSignal {
	var signal domain.ProgressSignal

	if match := percentRegex.FindStringSubmatch(line); match != nil {
		if percent, err := strconv.ParseFloat(match[1], 64); err == nil && percent >= 0 && percent <= 100 {
			signal.Percent = &percent
		}
	}
	if match := sizeRegex.FindStringSubmatch(line); match != nil {
		signal.Size = match[1]
	}
	if match := speedRegex.FindStringSubmatch(line); match != nil {
		signal.Speed = match[1]
	}
	if match := etaRegex.FindStringSubmatch(line); match != nil {
		signal.ETA = match[1]
	}

	return signal
}
