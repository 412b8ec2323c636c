package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
		show     bool
	}{
		{name: "nil", err: nil, show: false},
		{name: "session expired", err: ErrSessionExpired, show: false},
		{name: "wrapped session expired", err: fmt.Errorf("load tasks: %w", ErrSessionExpired), show: false},
		{name: "validation", err: &ValidationError{Field: "chat_ids", Message: "Select at least one chat"}, expected: "Select at least one chat", show: true},
		{name: "api error", err: &APIError{StatusCode: 400, Message: "Task not found"}, expected: "Task not found", show: true},
		{name: "api error without message", err: &APIError{StatusCode: http.StatusBadGateway}, expected: "Bad Gateway", show: true},
		{name: "network", err: &NetworkError{Op: "GET /api/tasks", Err: errors.New("dial tcp")}, expected: "Internal error: backend unavailable.", show: true},
		{name: "plain", err: errors.New("boom"), expected: "boom", show: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, show := UserMessage(tt.err)
			assert.Equal(t, tt.show, show)
			assert.Equal(t, tt.expected, msg)
		})
	}
}

func TestHasAction(t *testing.T) {
	err := fmt.Errorf("start auth: %w", &APIError{StatusCode: 400, Message: "full login", Action: ActionRequireFullLogin})
	assert.True(t, HasAction(err, ActionRequireFullLogin))
	assert.False(t, HasAction(err, "other"))
	assert.False(t, HasAction(errors.New("x"), ActionRequireFullLogin))
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "POST /api/logout", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "backend unavailable")
}
