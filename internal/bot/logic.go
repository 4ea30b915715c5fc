package bot

import (
	"errors"
	"math/rand/v2"
	"time"

	"ctchen222/tictactoe-solo/internal/game"
)

// ErrNoMovesAvailable is returned when a move is requested for a full board.
var ErrNoMovesAvailable = errors.New("no moves available")

// RandSource is the randomness the policy draws on. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
	Float64() float64
}

// Policy picks the computer's moves. It only ever reads the board it is given.
type Policy struct {
	rng RandSource
}

// NewPolicy creates a policy backed by rng. A nil rng is replaced with a
// PCG generator seeded from the clock.
func NewPolicy(rng RandSource) *Policy {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32|1))
	}
	return &Policy{rng: rng}
}

// NewSeededPolicy creates a policy whose choices are reproducible for seed.
func NewSeededPolicy(seed uint64) *Policy {
	return &Policy{rng: rand.New(rand.NewPCG(seed, seed))}
}

// SelectMove determines the computer's next move based on the difficulty.
func (p *Policy) SelectMove(board game.Board, difficulty game.Difficulty) (int, error) {
	available := board.EmptyCells()
	if len(available) == 0 {
		return -1, ErrNoMovesAvailable
	}

	switch difficulty {
	case game.Impossible:
		return p.SmartMove(board), nil
	case game.Medium, game.Hard:
		if p.rng.Float64() < difficulty.SmartProbability() {
			return p.SmartMove(board), nil
		}
		return p.randomMove(available), nil
	default:
		return p.randomMove(available), nil
	}
}

// SmartMove will win if it can, block if it must, then prefer the center,
// a corner and an edge in that order.
func (p *Policy) SmartMove(board game.Board) int {
	// 1. Win: Check if O can win in the next move
	if idx, ok := findWinningMove(board, game.PlayerO); ok {
		return idx
	}

	// 2. Block: Check if X is about to win and block them
	if idx, ok := findWinningMove(board, game.PlayerX); ok {
		return idx
	}

	// 3. Center
	if board[game.Center] == game.None {
		return game.Center
	}

	// 4. Corners: Take an available corner randomly
	if corners := emptyOf(board, game.Corners); len(corners) > 0 {
		return p.randomMove(corners)
	}

	// 5. Edges: Take any available edge randomly
	if edges := emptyOf(board, game.Edges); len(edges) > 0 {
		return p.randomMove(edges)
	}

	// Corners, edges and center cover the board, so this only runs on a full one.
	if available := board.EmptyCells(); len(available) > 0 {
		return available[0]
	}
	return -1
}

func (p *Policy) randomMove(cells []int) int {
	return cells[p.rng.IntN(len(cells))]
}

// findWinningMove returns the lowest empty cell that completes a line for mark.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	for i, cell := range board {
		if cell == game.None && completesLine(board, i, mark) {
			return i, true
		}
	}
	return -1, false
}

// completesLine reports whether placing mark at index fills a win line.
func completesLine(board game.Board, index int, mark game.PlayerMark) bool {
	for _, line := range game.WinLines {
		if line[0] != index && line[1] != index && line[2] != index {
			continue
		}
		filled := 0
		for _, c := range line {
			if c == index || board[c] == mark {
				filled++
			}
		}
		if filled == len(line) {
			return true
		}
	}
	return false
}

func emptyOf(board game.Board, cells [4]int) []int {
	var out []int
	for _, i := range cells {
		if board[i] == game.None {
			out = append(out, i)
		}
	}
	return out
}
