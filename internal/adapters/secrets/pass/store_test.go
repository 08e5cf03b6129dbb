package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrimsTrailingNewline(t *testing.T) {
	store := &Store{run: func(_ context.Context, _ string, args ...string) (string, string, error) {
		assert.Equal(t, []string{"show", "x://1/cookies"}, args)
		return "ct0=abc; twid=u%3D42\n", "", nil
	}}

	value, err := store.Get(context.Background(), "x://1/cookies")
	require.NoError(t, err)
	assert.Equal(t, "ct0=abc; twid=u%3D42", value)
}

func TestPutPipesValueToInsert(t *testing.T) {
	var gotInput string
	var gotArgs []string
	store := &Store{run: func(_ context.Context, input string, args ...string) (string, string, error) {
		gotInput = input
		gotArgs = args
		return "", "", nil
	}}

	require.NoError(t, store.Put(context.Background(), "x://1/cookies", "ct0=abc"))
	assert.Equal(t, "ct0=abc\n", gotInput)
	assert.Equal(t, []string{"insert", "-m", "-f", "x://1/cookies"}, gotArgs)
}

func TestErrorsIncludeStderr(t *testing.T) {
	store := &Store{run: func(_ context.Context, _ string, _ ...string) (string, string, error) {
		return "", "gpg: decryption failed", errors.New("exit status 2")
	}}

	_, err := store.Get(context.Background(), "x://1/cookies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpg: decryption failed")
}

func TestUnavailableCommandSurfacesSentinel(t *testing.T) {
	store := &Store{run: func(_ context.Context, _ string, _ ...string) (string, string, error) {
		return "", "", ErrUnavailable
	}}

	err := store.Delete(context.Background(), "x://1/cookies")
	require.ErrorIs(t, err, ErrUnavailable)
}
