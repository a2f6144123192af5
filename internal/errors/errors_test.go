package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	detectErr := NewFormatError("", []string{"trivy", "grype"})
	assert.True(t, errors.Is(detectErr, ErrFormatUnrecognized))
	assert.Contains(t, detectErr.Error(), "trivy, grype")

	pinned := fmt.Errorf("resolve: %w", NewFormatError("snyk", []string{"trivy"}))
	assert.True(t, errors.Is(pinned, ErrFormatUnrecognized))
	assert.Contains(t, pinned.Error(), `"snyk"`)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("rule", 2, "reason", "is required")
	assert.Equal(t, `invalid rule 2: field "reason" is required`, err.Error())

	err = NewValidationError("notifier", 0, "", "must be a mapping")
	assert.Equal(t, "invalid notifier 0: must be a mapping", err.Error())
}

func TestDispatchError(t *testing.T) {
	boom := errors.New("boom")
	dispatchErr := &DispatchError{Failures: []error{
		&ChannelSendError{Channel: "teams", Index: 1, Err: boom},
		&UnknownChannelError{Type: "pager", Registered: []string{"teams", "slack"}},
	}}

	assert.Equal(t, []string{"teams", "pager"}, dispatchErr.Channels())
	assert.True(t, errors.Is(dispatchErr, boom))
	assert.Contains(t, dispatchErr.Error(), "2 channel(s)")
	assert.Contains(t, dispatchErr.Error(), "available: teams, slack")

	var unknown *UnknownChannelError
	require.True(t, errors.As(dispatchErr, &unknown))
	assert.Equal(t, "pager", unknown.Type)

	var sendErr *ChannelSendError
	require.True(t, errors.As(dispatchErr.First(), &sendErr))
	assert.Equal(t, "teams", sendErr.Channel)

	assert.Nil(t, (&DispatchError{}).First())
}
