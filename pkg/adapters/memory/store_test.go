package memory_test

import (
	"testing"

	"github.com/arbor-flow/arbor/pkg/adapters/memory"
	"github.com/arbor-flow/arbor/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	tests.ContextStoreContractTest(t, memory.NewStore())
}
