// Package demotime computes the simulated clock a group sees after skipping
// time forward. The offset is always read from the group row and passed in.
package demotime

import (
	"fmt"
	"strings"
	"time"
)

const DefaultRotationPeriod = 7

// Now returns wall-clock time shifted by offsetMs.
func Now(offsetMs int64) time.Time {
	return At(time.Now(), offsetMs)
}

func At(now time.Time, offsetMs int64) time.Time {
	return now.Add(time.Duration(offsetMs) * time.Millisecond)
}

// DueDateAt is the shifted now plus rotationPeriodDays for every queue slot
// up to and including position. A non-positive period uses the default.
func DueDateAt(now time.Time, offsetMs int64, rotationPeriodDays, position int) time.Time {
	if rotationPeriodDays <= 0 {
		rotationPeriodDays = DefaultRotationPeriod
	}
	if position < 0 {
		position = 0
	}
	return At(now, offsetMs).AddDate(0, 0, rotationPeriodDays*(position+1))
}

// FormatOffset renders an offset as "+1d 2h 3m". Zero, negative and
// sub-minute offsets read "Real time".
func FormatOffset(offsetMs int64) string {
	if offsetMs <= 0 {
		return "Real time"
	}
	total := offsetMs / 1000
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "Real time"
	}
	return "+" + strings.Join(parts, " ")
}
