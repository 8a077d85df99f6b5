package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/adapters/memory"
	"github.com/arbor-flow/arbor/pkg/domain"
	"github.com/arbor-flow/arbor/pkg/persistence/middleware"
	"github.com/arbor-flow/arbor/pkg/ports/tests"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_Contract(t *testing.T) {
	mw, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(1)})
	require.NoError(t, err)

	tests.ContextStoreContractTest(t, middleware.Chain(memory.NewStore(), mw))
}

func TestEncryption_AtRestOpacity(t *testing.T) {
	inner := memory.NewStore()
	mw, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(1)})
	require.NoError(t, err)
	store := middleware.Chain(inner, mw)
	ctx := context.Background()

	ec := domain.NewExecutionContext()
	ec.Set("secret", "hunter2")
	ec.SetResult("greet", map[string]any{"response": "hello"})
	require.NoError(t, store.Save(ctx, "s", ec))

	// The inner store sees only the envelope.
	raw, err := inner.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, raw.Results)
	_, hasSecret := raw.Get("secret")
	assert.False(t, hasSecret)
	_, hasEnvelope := raw.Get("__encrypted__")
	assert.True(t, hasEnvelope)
	assert.Equal(t, ec.ID, raw.ID)

	// The decorated store round-trips the full context.
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	v, _ := loaded.Get("secret")
	assert.Equal(t, "hunter2", v)
	assert.Equal(t, "hello", loaded.Results["greet"]["response"])
}

func TestEncryption_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	oldMw, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(1)})
	require.NoError(t, err)

	ec := domain.NewExecutionContext()
	ec.Set("k", "v")
	require.NoError(t, middleware.Chain(inner, oldMw).Save(ctx, "s", ec))

	t.Run("new active key with old as fallback", func(t *testing.T) {
		rotated, err := middleware.NewEncryption(middleware.EncryptionConfig{
			ActiveKey:    testKey(2),
			FallbackKeys: [][]byte{testKey(1)},
		})
		require.NoError(t, err)

		loaded, err := middleware.Chain(inner, rotated).Load(ctx, "s")
		require.NoError(t, err)
		v, _ := loaded.Get("k")
		assert.Equal(t, "v", v)
	})

	t.Run("wrong key without fallback fails", func(t *testing.T) {
		wrong, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(9)})
		require.NoError(t, err)

		_, err = middleware.Chain(inner, wrong).Load(ctx, "s")
		assert.ErrorContains(t, err, "decrypt")
	})
}

func TestEncryption_PlainContextFailsSecure(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "plain", domain.NewExecutionContext()))

	mw, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(1)})
	require.NoError(t, err)

	_, err = middleware.Chain(inner, mw).Load(ctx, "plain")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryption_KeyLength(t *testing.T) {
	_, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey:    testKey(1),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}
