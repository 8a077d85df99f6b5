package badger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbor-flow/arbor/pkg/adapters/badger"
	"github.com/arbor-flow/arbor/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	store, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tests.ContextStoreContractTest(t, store)
}

func TestStore_OnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := badger.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tests.ContextStoreContractTest(t, store)
}
