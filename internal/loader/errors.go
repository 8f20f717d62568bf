// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package loader

import (
	"errors"
	"fmt"
)

// ErrIO matches every error caused by a missing, unreadable or malformed
// input file. Startup treats it as fatal.
var ErrIO = errors.New("input file error")

// FileError locates a load failure within an input file.
type FileError struct {
	Path string
	// Line is 1-based; zero when the failure is not tied to a line.
	Line int
	Err  error
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Is makes every FileError match ErrIO.
func (e *FileError) Is(target error) bool { return target == ErrIO }

func fileError(path string, line int, err error) error {
	var fe *FileError
	if errors.As(err, &fe) {
		if fe.Path == "" {
			fe.Path = path
		}
		return fe
	}
	return &FileError{Path: path, Line: line, Err: err}
}
