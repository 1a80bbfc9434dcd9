package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAfterAdvancesAndRecords(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Fake(start)

	got := <-c.After(350 * time.Millisecond)
	<-c.After(350 * time.Millisecond)

	assert.Equal(t, start.Add(350*time.Millisecond), got)
	assert.Equal(t, start.Add(700*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{350 * time.Millisecond, 350 * time.Millisecond}, c.Sleeps())
}

func TestFakeAdvanceDoesNotRecord(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Fake(start)

	c.Advance(time.Hour)

	assert.Equal(t, start.Add(time.Hour), c.Now())
	assert.Empty(t, c.Sleeps())
}
