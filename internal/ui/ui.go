// Package ui holds the terminal output helpers shared by the install
// flow: step and detail lines, warnings, and a download progress bar
// that only renders when stderr is a real terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Step prints a top-level progress line.
func Step(format string, args ...interface{}) {
	fmt.Println(
		color.BlueString(" •"),
		color.New(color.FgHiBlack).Sprintf(format, args...),
	)
}

// Detail prints an indented line under the current step.
func Detail(format string, args ...interface{}) {
	fmt.Println(
		color.New(color.FgHiBlack).Sprint("   └"),
		color.New(color.FgHiBlack).Sprintf(format, args...),
	)
}

// Success prints a completed-step line.
func Success(format string, args ...interface{}) {
	fmt.Println(color.GreenString(" ✔"), fmt.Sprintf(format, args...))
}

// Warn prints a warning line to stderr.
func Warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString(" !"), fmt.Sprintf(format, args...))
}

// Progress wraps a reader with a progress bar when running in a
// terminal. Returns the wrapped reader and a function that finalizes the
// display; in non-interactive runs both are pass-throughs.
func Progress(reader io.Reader, size int64) (io.Reader, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					`   └ {{counters . }}` +
						` {{bar . "[" "=" ">" " " "]" }} {{percent . }}` +
						` {{speed . }}`,
				),
			),
		).
		SetRefreshRate(time.Second / 60).
		SetMaxWidth(100).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}
