package game

import (
	"fmt"
	"strings"
)

// Difficulty controls how often the computer plays its heuristic move.
type Difficulty string

const (
	Easy       Difficulty = "easy"
	Medium     Difficulty = "medium"
	Hard       Difficulty = "hard"
	Impossible Difficulty = "impossible"
)

// Difficulties lists the supported levels from weakest to strongest.
var Difficulties = []Difficulty{Easy, Medium, Hard, Impossible}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is a supported level.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard, Impossible:
		return true
	}
	return false
}

// SmartProbability is the chance that the heuristic move is used instead of a
// random one.
func (d Difficulty) SmartProbability() float64 {
	switch d {
	case Medium:
		return 0.7
	case Hard:
		return 0.9
	case Impossible:
		return 1
	}
	return 0
}
