package docstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIndexUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "sentinel", err: ErrIndexUnavailable, expected: true},
		{name: "wrappedSentinel", err: fmt.Errorf("query failed: %w", ErrIndexUnavailable), expected: true},
		{name: "messageMentionsIndex", err: errors.New("the query requires an INDEX that is still building"), expected: true},
		{name: "unrelated", err: errors.New("connection refused"), expected: false},
		{name: "notFound", err: ErrNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIndexUnavailable(tt.err))
		})
	}
}
