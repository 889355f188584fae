package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

// ColorMode decides when C emits escape codes.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto" // only when stdout is a terminal
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var colorMode = ColorAuto

// ParseColorMode accepts auto, always or never. Empty means auto.
func ParseColorMode(s string) (ColorMode, bool) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColorAuto:
		return ColorAuto, true
	case ColorAlways:
		return ColorAlways, true
	case ColorNever:
		return ColorNever, true
	}
	return "", false
}

func SetColorMode(m ColorMode) { colorMode = m }

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// C wraps s in color. Plain themes never get escape codes.
func C(color, s string) string {
	if color == "" || current.Plain {
		return s
	}
	switch colorMode {
	case ColorAlways:
		return color + s + reset
	case ColorNever:
		return s
	}
	if isTTY() {
		return color + s + reset
	}
	return s
}

// Dim renders s faint.
func Dim(s string) string { return C(dim, s) }

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, C(fgGreen, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, C(fgRed, symCross+" "+msg)) }
