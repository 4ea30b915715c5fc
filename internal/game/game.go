package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// GameStatus is the lifecycle state of a single game.
type GameStatus string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game statuses
	StatusInProgress GameStatus = "in_progress"
	StatusWon        GameStatus = "won"
	StatusDraw       GameStatus = "draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 8
	BoardSize = 9
	Center    = 4
)

// WinLine is a triple of cell indices that wins when uniformly occupied.
type WinLine [3]int

// WinLines lists every winning triple: rows, then columns, then diagonals.
var WinLines = [8]WinLine{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

var (
	Corners = [4]int{0, 2, 6, 8}
	Edges   = [4]int{1, 3, 5, 7}
)

// Board is a 3x3 grid stored row-major.
type Board [BoardSize]PlayerMark

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// InBounds reports whether index addresses a cell.
func InBounds(index int) bool {
	return index >= BorderMin && index <= BorderMax
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, c := range b {
		if c == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, c := range b {
		if c == None {
			return false
		}
	}
	return true
}

// Count returns how many cells hold mark.
func (b Board) Count(mark PlayerMark) int {
	n := 0
	for _, c := range b {
		if c == mark {
			n++
		}
	}
	return n
}

// LineFor returns the first win line fully occupied by mark.
func (b Board) LineFor(mark PlayerMark) (WinLine, bool) {
	if mark == None {
		return WinLine{}, false
	}
	for _, line := range WinLines {
		if b[line[0]] == mark && b[line[1]] == mark && b[line[2]] == mark {
			return line, true
		}
	}
	return WinLine{}, false
}

// CheckWinner returns the winning player and line. X is checked before O.
func CheckWinner(b Board) (PlayerMark, WinLine, bool) {
	for _, mark := range [2]PlayerMark{PlayerX, PlayerO} {
		if line, ok := b.LineFor(mark); ok {
			return mark, line, true
		}
	}
	return None, WinLine{}, false
}

// Rows converts the board into a slice of rows for rendering.
func (b Board) Rows() [][]PlayerMark {
	rows := make([][]PlayerMark, 3)
	for r := range [3]int{} {
		rows[r] = []PlayerMark{b[r*3], b[r*3+1], b[r*3+2]}
	}
	return rows
}

// Outcome describes the status of a game and, when won, who won and how.
type Outcome struct {
	Status GameStatus `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
	Line   *WinLine   `json:"line,omitempty"`
}

// IsTerminal reports whether the game is over.
func (o Outcome) IsTerminal() bool {
	return o.Status == StatusWon || o.Status == StatusDraw
}

// InProgress is the outcome of a game that is still being played.
func InProgress() Outcome {
	return Outcome{Status: StatusInProgress}
}

// ScoreBoard counts finished games for a session.
type ScoreBoard struct {
	XWins      int `json:"x_wins"`
	OWins      int `json:"o_wins"`
	Draws      int `json:"draws"`
	TotalGames int `json:"total_games"`
}

// Record adds a finished game to the score board.
func (s *ScoreBoard) Record(o Outcome) {
	switch {
	case o.Status == StatusWon && o.Winner == PlayerX:
		s.XWins++
	case o.Status == StatusWon && o.Winner == PlayerO:
		s.OWins++
	case o.Status == StatusDraw:
		s.Draws++
	default:
		return
	}
	s.TotalGames++
}
