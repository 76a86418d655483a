package domain

import (
	"errors"
	"fmt"
)

// ErrNoAccidentData is fatal: the offline pipeline found no usable
// accident dataset and cannot produce a training matrix.
var ErrNoAccidentData = errors.New("no accident data available")

// ErrModelUnavailable marks a missing or unloadable classifier. At serving
// time it is non-fatal; the scorer degrades to the rule-based estimator.
var ErrModelUnavailable = errors.New("model unavailable")

// WidthMismatchError reports a feature vector whose length disagrees with
// the schema manifest. Silent padding masks schema drift, so every
// occurrence is surfaced through this type before any safety-net repair.
type WidthMismatchError struct {
	Got, Want int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("vector width mismatch: got %d features, manifest expects %d", e.Got, e.Want)
}

// IsWidthMismatch reports whether err is a WidthMismatchError.
func IsWidthMismatch(err error) bool {
	var w *WidthMismatchError
	return errors.As(err, &w)
}
