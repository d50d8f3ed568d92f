package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	a := ObjectKey("notes", "Algebra Notes.PDF")
	b := ObjectKey("notes", "Algebra Notes.PDF")

	assert.True(t, strings.HasPrefix(a, "notes/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotEqual(t, a, b)

	assert.NotContains(t, ObjectKey("images", "photo"), ".")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("campus")

	u, err := s.Put(ctx, "notes/a.pdf", strings.NewReader("hello"), 5, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://campus/notes/a.pdf", u)

	data, ok := s.Object("notes/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))

	signed, err := s.PresignedGet(ctx, "notes/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, signed, "expires=1m0s")

	_, err = s.Put(ctx, "notes/b.pdf", strings.NewReader("hi"), 5, "")
	assert.Error(t, err)

	require.NoError(t, s.Remove(ctx, "notes/a.pdf"))
	_, err = s.PresignedGet(ctx, "notes/a.pdf", time.Minute)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
