package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"unauthorized", errors.New("401 Unauthorized"), ErrorTypeAuth, false},
		{"invalid key", errors.New("invalid api key provided"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-5o does not exist"), ErrorTypeModel, false},
		{"endpoint missing", errors.New("404 page not found"), ErrorTypeEndpoint, false},
		{"rate limit", errors.New("429 Too Many Requests"), ErrorTypeRateLimit, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeTimeout, true},
		{"server", errors.New("502 Bad Gateway"), ErrorTypeServer, true},
		{"unknown", errors.New("connection reset by peer"), ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.retryable, got.Retryable)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyError_PassesThroughStructured(t *testing.T) {
	orig := NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("429"))
	wrapped := fmt.Errorf("call failed: %w", orig)
	assert.Same(t, orig, ClassifyError(wrapped))
}
