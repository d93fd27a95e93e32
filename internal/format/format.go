package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout used for fetch history entries.
const TimestampLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// Percentage renders a decimal fraction such as "0.87" as "87%". Input that
// does not parse as a number is treated as zero.
func Percentage(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.FormatFloat(math.Round(v*100), 'f', 0, 64) + "%"
}

// Timestamp renders t using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
