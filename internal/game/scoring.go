// internal/game/scoring.go
package game

import (
	"math"
	"time"
)

// GuesserScore awards up to 200 points for a correct guess, scaled linearly
// by how much of the round time remained when the guess landed.
func GuesserScore(roundStart, guessTime time.Time, roundTimeSeconds int) int {
	if roundTimeSeconds <= 0 {
		return 0
	}
	elapsed := guessTime.Sub(roundStart).Seconds()
	ratio := clamp01(1 - elapsed/float64(roundTimeSeconds))
	return int(math.Floor(200 * ratio))
}

// DrawerScore awards up to 200 points to the drawer: up to 100 for the share
// of guessers who got the word, and up to 100 for how quickly they did on
// average. Zero when nobody could guess or nobody did.
func DrawerScore(correctCount, totalGuessers int, avgGuessSeconds float64, roundTimeSeconds int) int {
	if totalGuessers == 0 || correctCount == 0 || roundTimeSeconds <= 0 {
		return 0
	}
	percentageScore := int(math.Floor(100 * float64(correctCount) / float64(totalGuessers)))
	timeScore := int(math.Floor(100 * clamp01(1-avgGuessSeconds/float64(roundTimeSeconds))))
	return percentageScore + timeScore
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
