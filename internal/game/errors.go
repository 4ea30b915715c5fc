package game

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is the root of every recoverable move rejection.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrGameOver        = fmt.Errorf("%w: game already finished", ErrInvalidMove)
	ErrOutOfRange      = fmt.Errorf("%w: index out of range", ErrInvalidMove)
	ErrCellOccupied    = fmt.Errorf("%w: cell already occupied", ErrInvalidMove)
	ErrNotYourTurn     = fmt.Errorf("%w: not player's turn", ErrInvalidMove)
	ErrNotComputerTurn = fmt.Errorf("%w: not computer's turn", ErrInvalidMove)

	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
