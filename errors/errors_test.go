package errors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListError_Matches_Kind_And_Cause(t *testing.T) {
	req := require.New(t)
	cause := Wrap(ErrConfirmationTimeout, "create group", "Work", context.DeadlineExceeded)

	// When
	err := Wrap(ErrNetwork, "create group", "Work", cause)

	// Then
	req.True(Is(err, ErrNetwork))
	req.True(Is(err, ErrConfirmationTimeout))
	req.True(Is(err, context.DeadlineExceeded))
	req.False(Is(err, ErrMoveFailed))
	var listErr *ListError
	req.True(As(err, &listErr))
	req.Equal(ErrNetwork, listErr.Kind)
	req.Equal("create group Work: network error: create group Work: confirmation not received in time: context deadline exceeded", err.Error())
}

func TestListError_Without_Cause(t *testing.T) {
	req := require.New(t)

	// When
	err := Wrap(ErrGroupAlreadyExists, "create group", "", nil)

	// Then
	req.Equal("create group: group already exists", err.Error())
	req.ErrorIs(err, ErrGroupAlreadyExists)
}
