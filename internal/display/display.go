// Package display provides terminal formatting for notionqueue output.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/daviddao/notionqueue/internal/types"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	UrgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	HighStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	MediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	LowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	BlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9333ea"))
	ActiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb"))
)

func priorityStyle(priority string) lipgloss.Style {
	switch priority {
	case types.PriorityP0:
		return UrgentStyle
	case types.PriorityP1:
		return HighStyle
	case types.PriorityP2:
		return MediumStyle
	case types.PriorityP3, types.PriorityP4:
		return LowStyle
	default:
		return Dim
	}
}

// PriorityDot returns a colored dot for a priority level.
func PriorityDot(priority string) string {
	switch priority {
	case types.PriorityP0, types.PriorityP1:
		return priorityStyle(priority).Render("●")
	case types.PriorityP2, types.PriorityP3:
		return priorityStyle(priority).Render("○")
	case types.PriorityP4:
		return LowStyle.Render("◌")
	default:
		return Dim.Render("·")
	}
}

// PriorityLabel returns a styled priority label. Missing priorities show
// as "--".
func PriorityLabel(priority string) string {
	label := priority
	if label == "" {
		label = "--"
	}
	return priorityStyle(priority).Render(fmt.Sprintf("%-3s", label))
}

// StatusLabel returns a styled, padded status label.
func StatusLabel(status string) string {
	padded := fmt.Sprintf("%-16s", status)
	switch status {
	case types.StatusInProgress, types.StatusInReview:
		return ActiveStyle.Render(padded)
	case types.StatusDone:
		return Success.Render(padded)
	case types.StatusBlockedByHuman, types.StatusOnHold:
		return BlockedStyle.Render(padded)
	case types.StatusReviewAIFix:
		return MediumStyle.Render(padded)
	default:
		return padded
	}
}

// ShortID returns the first eight characters of a page id, ignoring
// hyphens.
func ShortID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		return compact[:8]
	}
	return compact
}

// TimeAgo formats an ISO date string relative to now.
func TimeAgo(isoDate string, now time.Time) string {
	if isoDate == "" {
		return ""
	}

	var t time.Time
	var err error
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
		t, err = time.Parse(layout, isoDate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return isoDate[:min(10, len(isoDate))]
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Truncate shortens a string to maxLen runes, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, Success.Render("✓")+" "+msg)
}

// ErrorMsg prints a red X + message.
func ErrorMsg(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, ErrStyle.Render("✗")+" "+msg)
}

// Header prints a section header.
func Header(w io.Writer, title string) {
	fmt.Fprintln(w, Bold.Render(title))
}

// SubHeader prints a dim subsection label.
func SubHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Muted.Render(title))
}

// QueueLine renders one ticket row: dot, short id, priority, status,
// title and a blocked marker.
func QueueLine(id, priority, status, title string, blockedBy []string) string {
	line := fmt.Sprintf("%s %s  %s  %s %s",
		PriorityDot(priority),
		Dim.Render(ShortID(id)),
		PriorityLabel(priority),
		StatusLabel(status),
		Truncate(title, 60),
	)
	if len(blockedBy) > 0 {
		line += " " + BlockedStyle.Render(fmt.Sprintf("(blocked by %d)", len(blockedBy)))
	}
	return line
}

// Body prints text indented under a tree connector, cut to maxLines.
func Body(w io.Writer, text string, maxLines int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	prefix := Muted.Render("  │  ")
	for i, line := range lines {
		if maxLines > 0 && i >= maxLines {
			fmt.Fprintf(w, "%s%s\n", prefix, Dim.Render(fmt.Sprintf("... (%d more lines)", len(lines)-maxLines)))
			break
		}
		fmt.Fprintf(w, "%s%s\n", prefix, line)
	}
}
