package crawler

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a wall-clock duration the way a run summary reads
// best: "840ms", "12.3s", "4m 5s", "1h 2m 3s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	totalSeconds := int(d / time.Second)
	minutes := totalSeconds / 60
	hours := minutes / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, totalSeconds%60)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, totalSeconds%60)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatSummary renders the human-readable run summary block printed at the
// end of every completed or partially-completed run.
func FormatSummary(s Summary) string {
	divider := strings.Repeat("=", 50)
	var b strings.Builder
	fmt.Fprintln(&b, divider)
	fmt.Fprintln(&b, "Crawl Summary")
	fmt.Fprintf(&b, "Run:    %s (%s)\n", s.RunID, s.Mode)
	fmt.Fprintln(&b, divider)
	fmt.Fprintf(&b, "Events:          %d processed, %d added\n", s.EventsProcessed, s.EventsAdded)
	fmt.Fprintf(&b, "Players:         %d added, %d reused\n", s.PlayersAdded, s.PlayersReused)
	fmt.Fprintf(&b, "Participations:  %d added\n", s.ParticipationsAdded)
	fmt.Fprintf(&b, "Errors:          %d\n", s.TotalErrors)
	fmt.Fprintf(&b, "Duration:        %s\n", FormatDuration(s.Duration))
	fmt.Fprint(&b, divider)
	return b.String()
}
