package host

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimecode renders a frame number as HH:MM:SS:FF at the given rate.
func FormatTimecode(frame int, fps float64) string {
	if fps <= 0 {
		return fmt.Sprintf("Frame %d", frame)
	}
	totalSeconds := float64(frame) / fps
	hours := int(totalSeconds) / 3600
	minutes := (int(totalSeconds) % 3600) / 60
	seconds := int(totalSeconds) % 60
	frames := frame % int(fps)
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

// ParseTimecode converts HH:MM:SS:FF (or a bare seconds value) to a frame
// number. Unparseable input yields 0.
func ParseTimecode(tc string, fps float64) int {
	if strings.Contains(tc, ":") {
		parts := strings.Split(tc, ":")
		if len(parts) != 4 {
			return 0
		}
		vals := make([]int, 4)
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return 0
			}
			vals[i] = v
		}
		total := float64(vals[0]*3600+vals[1]*60+vals[2])*fps + float64(vals[3])
		return int(total)
	}
	seconds, err := strconv.ParseFloat(tc, 64)
	if err != nil {
		return 0
	}
	return int(seconds * fps)
}
