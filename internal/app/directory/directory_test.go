package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace/internal/pkg/errs"
)

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()

	closed := NewMemoryDirectory(false)
	closed.Put("u-1", "ada@example.com")

	p, err := closed.Lookup(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", p.Name)

	_, err = closed.Lookup(ctx, "u-2")
	assert.True(t, errs.Is(err, errs.ErrUserNotFound))

	open := NewMemoryDirectory(true)
	p, err = open.Lookup(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, "u-2", p.Name)

	_, err = open.Lookup(ctx, "")
	assert.True(t, errs.Is(err, errs.ErrUserNotFound))
}
