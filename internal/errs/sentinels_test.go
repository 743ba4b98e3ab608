package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage_WrapsTransportErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Storage("list", cause)

	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "storage: list: connection refused", err.Error())

	var se *StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "list", se.Op)
}

func TestStorage_PassesThroughSentinels(t *testing.T) {
	t.Parallel()

	require.NoError(t, Storage("x", nil))

	nf := fmt.Errorf("entry abc: %w", ErrNotFound)
	require.Same(t, nf, Storage("delete", nf))
	require.NotErrorIs(t, Storage("delete", nf), ErrStorage)

	require.Equal(t, ErrUnauthenticated, Storage("add", ErrUnauthenticated))

	once := Storage("replace", errors.New("boom"))
	require.Same(t, once, Storage("update", once))
}
