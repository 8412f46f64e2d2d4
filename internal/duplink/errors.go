package duplink

import (
	"context"
	"errors"
	"io/fs"
)

var (
	// ErrConfig marks invalid parameters or a malformed corpus. Raised before
	// any alignment runs.
	ErrConfig = errors.New("configuration error")
	// ErrInvariant marks an internal logic defect detected while linking.
	ErrInvariant = errors.New("invariant violation")
)

// Code is a coarse error class used for exit codes and log fields.
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeConfig    Code = "config"
	CodeInvariant Code = "invariant"
	CodeIO        Code = "io"
	CodeCancel    Code = "cancel"
)

// Classify maps an error onto a Code using sentinel errors and standard
// library error types only.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, ErrConfig):
		return CodeConfig
	case errors.Is(err, ErrInvariant):
		return CodeInvariant
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
