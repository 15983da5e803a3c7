package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadiness_StartsNotReady(t *testing.T) {
	r := NewReadiness(false)
	assert.False(t, r.Ready())
	assert.NoError(t, r.InitErr())
}

func TestReadiness_AdvancesOnce(t *testing.T) {
	r := NewReadiness(false)

	r.Ensure(context.Background())
	assert.True(t, r.Ready())

	// Second Ensure is a no-op; the flag never goes back
	r.Ensure(context.Background())
	assert.True(t, r.Ready())
	assert.NoError(t, r.InitErr())
}

func TestReadiness_ConcurrentEnsure(t *testing.T) {
	r := NewReadiness(false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Ensure(context.Background())
		}()
	}
	wg.Wait()

	assert.True(t, r.Ready())
}
