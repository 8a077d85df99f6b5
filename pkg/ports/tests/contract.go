package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/ports"
)

// ContextStoreContractTest is a reusable suite verifying that an
// adapter complies with ports.ContextStore semantics, including
// round-trip fidelity and isolation from caller mutation.
func ContextStoreContractTest(t *testing.T, store ports.ContextStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-key")
		assert.ErrorIs(t, err, domain.ErrContextNotFound)
	})

	t.Run("SaveLoad_RoundTrip", func(t *testing.T) {
		ec := domain.NewExecutionContext()
		ec.Set("user", map[string]any{"name": "ada", "age": 36})
		ec.SetResult("greet", map[string]any{"response": "hello ada"})
		ec.SetStatus("greet", domain.StatusCompleted)
		ec.AppendMemory("facts", map[string]any{"likes": "math"})
		ec.SetError("fetch", "connection refused")

		require.NoError(t, store.Save(ctx, "k", ec))

		loaded, err := store.Load(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, ec.ID, loaded.ID)
		assert.Equal(t, "hello ada", loaded.Results["greet"]["response"])
		assert.Equal(t, domain.StatusCompleted, loaded.Status["greet"])
		assert.Equal(t, "connection refused", loaded.Errors["fetch"])
		require.Len(t, loaded.Memory["facts"], 1)

		name, ok := loaded.Lookup("user.name")
		require.True(t, ok)
		assert.Equal(t, "ada", name)
	})

	t.Run("Save_Isolation", func(t *testing.T) {
		ec := domain.NewExecutionContext()
		ec.Set("count", "one")
		require.NoError(t, store.Save(ctx, "iso", ec))

		// Mutating the original after Save must not leak into the store.
		ec.Set("count", "two")

		loaded, err := store.Load(ctx, "iso")
		require.NoError(t, err)
		assert.Equal(t, "one", loaded.Data["count"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := domain.NewExecutionContext()
		first.Set("v", 1)
		require.NoError(t, store.Save(ctx, "ow", first))

		second := domain.NewExecutionContext()
		second.Set("v", 2)
		require.NoError(t, store.Save(ctx, "ow", second))

		loaded, err := store.Load(ctx, "ow")
		require.NoError(t, err)
		assert.Equal(t, second.ID, loaded.ID)
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, "k")
		assert.Contains(t, keys, "iso")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "k"))
		_, err := store.Load(ctx, "k")
		assert.ErrorIs(t, err, domain.ErrContextNotFound)
	})
}
