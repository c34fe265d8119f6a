package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClockAdvances(t *testing.T) {
	c := NewDeterministicClock()

	assert.Equal(t, DefaultBase, c.Now())
	assert.Equal(t, DefaultBase.Add(time.Minute), c.Now())
	assert.Equal(t, DefaultBase.Add(2*time.Minute), c.Current())

	c.Reset()
	assert.Equal(t, DefaultBase, c.Now())
}

func TestDeterministicClockCustomStep(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDeterministicClockAt(base, time.Second)

	c.Now()
	assert.Equal(t, base.Add(time.Second), c.Now())
}

func TestDeterministicClockConcurrent(t *testing.T) {
	c := NewDeterministicClock()
	seen := make(map[time.Time]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := c.Now()
			mu.Lock()
			seen[ts] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
