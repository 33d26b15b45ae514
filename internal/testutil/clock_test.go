package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestStepClock_StartsAtStart(t *testing.T) {
	clock := NewStepClock(start, time.Second)
	assert.Equal(t, start, clock.Current())
	assert.Equal(t, start, clock.Now())
}

func TestStepClock_Advances(t *testing.T) {
	clock := NewStepClock(start, time.Millisecond)

	clock.Now()
	assert.Equal(t, start.Add(time.Millisecond), clock.Now())
	assert.Equal(t, start.Add(2*time.Millisecond), clock.Now())
	assert.Equal(t, start.Add(3*time.Millisecond), clock.Current())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(start, time.Second)
	clock.Now()
	clock.Now()
	clock.Reset()
	assert.Equal(t, start, clock.Now())
}

func TestStepClock_Concurrent(t *testing.T) {
	clock := NewStepClock(start, time.Microsecond)

	const goroutines = 50
	seen := make(chan time.Time, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- clock.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, goroutines)
}
