package monitoring

import (
	"fmt"
	"math"
	"time"
)

const bytesPerGB = 1024 * 1024 * 1024

// BootTimeLayout is the boot_time format, in local time.
const BootTimeLayout = "2006-01-02 15:04:05"

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// BytesToGB converts a byte count to GiB rounded to 2 decimal places.
func BytesToGB(b uint64) float64 {
	return roundTo(float64(b)/bytesPerGB, 2)
}

// FormatUptime renders elapsed seconds as "H:MM:SS", prefixed with
// "N day(s), " once a day has passed.
func FormatUptime(seconds uint64) string {
	days := seconds / 86400
	rem := seconds % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, rem%3600/60, rem%60)

	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}

func FormatBootTime(t time.Time) string {
	return t.Local().Format(BootTimeLayout)
}
