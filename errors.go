package main

import "errors"

// Fatal pipeline errors, matched via errors.Is. Anything not listed here
// (bad theme, bad background color, a destination that cannot be resolved,
// a failed upload) is logged and the run continues.
var (
	// ErrMissingInput indicates a required parameter or credential is absent.
	ErrMissingInput = errors.New("missing required input")

	// ErrInvalidFormat indicates an output format outside png/svg/pdf.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrRenderFailed indicates the renderer process exited non-zero.
	ErrRenderFailed = errors.New("render failed")

	// ErrOutputMissing indicates the renderer exited zero but produced no file.
	ErrOutputMissing = errors.New("render output missing")
)
