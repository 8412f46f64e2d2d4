package duplink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeUnknown},
		{"config", fmt.Errorf("loading: %w", ErrConfig), CodeConfig},
		{"invariant", fmt.Errorf("linking 2 <- 1: %w", ErrInvariant), CodeInvariant},
		{"path error", fmt.Errorf("reading: %w", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}), CodeIO},
		{"canceled", fmt.Errorf("round: %w", context.Canceled), CodeCancel},
		{"deadline", context.DeadlineExceeded, CodeCancel},
		{"other", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
