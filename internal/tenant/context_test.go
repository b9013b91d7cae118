package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseFromContextDefaultsToEmpty(t *testing.T) {
	assert.Equal(t, "", DatabaseFromContext(context.Background()))
}

func TestWithDatabaseRoundTrip(t *testing.T) {
	ctx := WithDatabase(context.Background(), "clinic_a")
	assert.Equal(t, "clinic_a", DatabaseFromContext(ctx))
}

func TestClearDatabaseShadowsValue(t *testing.T) {
	ctx := WithDatabase(context.Background(), "clinic_a")
	cleared := ClearDatabase(ctx)

	assert.Equal(t, "", DatabaseFromContext(cleared))
	// The original context is untouched.
	assert.Equal(t, "clinic_a", DatabaseFromContext(ctx))
}

func TestWithTenantContextScopesTenantToCallback(t *testing.T) {
	parent := context.Background()

	err := WithTenantContext(parent, "clinic_a", func(ctx context.Context) error {
		assert.Equal(t, "clinic_a", DatabaseFromContext(ctx))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "", DatabaseFromContext(parent))
}

func TestWithTenantContextPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := WithTenantContext(context.Background(), "clinic_a", func(ctx context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestNestedTenantContexts(t *testing.T) {
	ctx := WithDatabase(context.Background(), "clinic_a")
	inner := WithDatabase(ctx, "clinic_b")

	assert.Equal(t, "clinic_b", DatabaseFromContext(inner))
	assert.Equal(t, "clinic_a", DatabaseFromContext(ctx))
}
