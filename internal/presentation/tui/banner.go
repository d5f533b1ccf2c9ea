package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the inferschema banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	s1 := out.String(" _        __                     _                          ").Foreground(out.Color("#818cf8"))
	s2 := out.String("(_)_ __  / _| ___ _ __ ___  ___| |__   ___ _ __ ___   __ _ ").Foreground(out.Color("#a78bfa"))
	s3 := out.String("| | '_ \\| |_ / _ \\ '__/ __|/ __| '_ \\ / _ \\ '_ ` _ \\ / _` |").Foreground(out.Color("#c084fc"))
	s4 := out.String("| | | | |  _|  __/ |  \\__ \\ (__| | | |  __/ | | | | | (_| |").Foreground(out.Color("#e879f9"))
	s5 := out.String("|_|_| |_|_|  \\___|_|  |___/\\___|_| |_|\\___|_| |_| |_|\\__,_|").Foreground(out.Color("#f472b6"))

	fmt.Fprintln(w)
	for _, s := range []termenv.Style{s1, s2, s3, s4, s5} {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintf(w, "  %s\n\n", out.String("v"+strings.TrimSpace(version)).Faint())
}

// Success formats a positive status line for w's color profile.
func Success(w io.Writer, msg string) string {
	out := termenv.NewOutput(w)
	return out.String("✔ " + msg).Foreground(out.Color("#22c55e")).String()
}

// Failure formats a negative status line for w's color profile.
func Failure(w io.Writer, msg string) string {
	out := termenv.NewOutput(w)
	return out.String("✘ " + msg).Foreground(out.Color("#ef4444")).String()
}
