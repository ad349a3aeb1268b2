// Package ui holds terminal styling shared by the CLI commands.
package ui

import (
	"fmt"
	"strings"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Heading renders a bold cyan title.
func Heading(s string) string {
	return ColorBold + ColorCyan + s + ColorReset
}

// Field renders an aligned "label: value" line. Empty values print as a dim dash.
func Field(label, value string) string {
	if strings.TrimSpace(value) == "" {
		value = Dim("-")
	}
	return fmt.Sprintf("  %s%-16s%s %s", ColorBold, label+":", ColorReset, value)
}

// Score colors a 0-100 completeness score: green from 75, yellow from 40.
func Score(score float64) string {
	s := fmt.Sprintf("%.1f%%", score)
	switch {
	case score >= 75:
		return Success(s)
	case score >= 40:
		return ColorYellow + s + ColorReset
	default:
		return Error(s)
	}
}
