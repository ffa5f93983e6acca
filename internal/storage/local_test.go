package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Store(ctx, "700-AB", "Report.XLSX", []byte("payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "700-AB/"))
	assert.True(t, strings.HasSuffix(ref, ".xlsx"))

	data, err := store.Retrieve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Retrieve(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStoreRejectsEscapingRefs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, ref := range []string{"", "../secret", "/etc/passwd", "a/../../b"} {
		_, err := store.Retrieve(ctx, ref)
		assert.ErrorIs(t, err, ErrInvalidRef, ref)
	}

	_, err = store.Store(ctx, "../up", "x.txt", nil)
	assert.ErrorIs(t, err, ErrInvalidRef)
}
