package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuesserScoreBounds(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"instant guess", 0, 200},
		{"half time", 30 * time.Second, 100},
		{"full time", 60 * time.Second, 0},
		{"past full time", 90 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuesserScore(start, start.Add(tt.elapsed), 60)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuesserScoreMonotonic(t *testing.T) {
	start := time.Now()
	prev := 201
	for elapsed := 0; elapsed <= 70; elapsed += 5 {
		got := GuesserScore(start, start.Add(time.Duration(elapsed)*time.Second), 60)
		assert.LessOrEqual(t, got, prev, "score must not increase with elapsed time")
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 200)
		prev = got
	}
}

func TestGuesserScoreZeroRoundTime(t *testing.T) {
	start := time.Now()
	assert.Equal(t, 0, GuesserScore(start, start, 0))
}

func TestDrawerScore(t *testing.T) {
	// floor(100*3/4) + floor(100*(1-10/60)) = 75 + 83
	assert.Equal(t, 158, DrawerScore(3, 4, 10, 60))

	assert.Equal(t, 0, DrawerScore(0, 4, 10, 60))
	assert.Equal(t, 0, DrawerScore(3, 0, 10, 60))

	// Everyone guessed immediately: full marks.
	assert.Equal(t, 200, DrawerScore(4, 4, 0, 60))

	// Slow guesses clamp the time component at zero.
	assert.Equal(t, 100, DrawerScore(4, 4, 120, 60))
}
