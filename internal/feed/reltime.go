package feed

import (
	"fmt"
	"time"
)

// RelativeTime describes how long before now t happened: minutes under an hour,
// hours under a day, days otherwise. Times in the future read as zero minutes.
func RelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	mins := int(diff / time.Minute)
	hours := mins / 60
	days := hours / 24

	switch {
	case mins < 60:
		return fmt.Sprintf("Hace %d %s", mins, plural(mins, "minuto", "minutos"))
	case hours < 24:
		return fmt.Sprintf("Hace %d %s", hours, plural(hours, "hora", "horas"))
	default:
		return fmt.Sprintf("Hace %d %s", days, plural(days, "día", "días"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
