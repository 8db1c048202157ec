package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner outputs the asyncresource banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _ ___ _   _ _ __   ___ ", "#818cf8"},
		{"  / _` / __| | | | '_ \\ / __|", "#a78bfa"},
		{" | (_| \\__ \\ |_| | | | | (__ ", "#c084fc"},
		{"  \\__,_|___/\\__, |_| |_|\\___|", "#e879f9"},
		{"            |___/  resource  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusColor maps each status to a display color.
func StatusColor(s domain.Status) string {
	switch s {
	case domain.StatusRunning, domain.StatusReRunning:
		return "#facc15"
	case domain.StatusResolved:
		return "#4ade80"
	case domain.StatusRejected:
		return "#f87171"
	default:
		return "#94a3b8"
	}
}

// StatusBadge renders the status in its color for the current terminal profile.
func StatusBadge(s domain.Status) string {
	p := termenv.ColorProfile()
	return termenv.String(fmt.Sprintf("[%s]", s)).Foreground(p.Color(StatusColor(s))).Bold().String()
}
