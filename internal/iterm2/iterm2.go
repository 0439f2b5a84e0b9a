// Package iterm2 shows images inline in terminals speaking the iTerm2
// image protocol.
package iterm2

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/term"
)

// IsCompatible reports whether f is an iTerm2 terminal.
func IsCompatible(f *os.File) bool {
	if os.Getenv("TERM_PROGRAM") != "iTerm.app" && os.Getenv("LC_TERMINAL") != "iTerm2" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Options control how an image is placed.
type Options struct {
	Width  string // e.g. "40" cells, "200px", "50%" or "auto"
	Height string
	Name   string
}

// Image writes m as an inline PNG.
func Image(w io.Writer, m image.Image, opts Options) error {
	args := "inline=1;preserveAspectRatio=1"
	if opts.Width != "" {
		args += ";width=" + opts.Width
	}
	if opts.Height != "" {
		args += ";height=" + opts.Height
	}
	if opts.Name != "" {
		args += ";name=" + base64.StdEncoding.EncodeToString([]byte(opts.Name))
	}
	if _, err := fmt.Fprintf(w, "\x1b]1337;File=%s:", args); err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, w)
	if err := png.Encode(enc, m); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\x07\n")); err != nil {
		return err
	}
	return nil
}

// Columns returns the width of the terminal on f in cells, or 0.
func Columns(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
