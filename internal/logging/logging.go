// Package logging builds the application logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// New creates the application logger writing to w. Debug enables debug-level
// output and caller reporting.
func New(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		ReportCaller:    debug,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1).
		Foreground(lipgloss.Color("86")).Bold(true)
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Padding(0, 1).
		Foreground(lipgloss.Color("192")).Bold(true)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1).
		Foreground(lipgloss.Color("204")).Bold(true)
	logger.SetStyles(styles)

	return logger
}

// Default creates the standard stderr logger
func Default(debug bool) *log.Logger {
	return New(os.Stderr, debug)
}
