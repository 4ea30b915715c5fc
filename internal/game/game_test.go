package game

import (
	"errors"
	"testing"
)

const (
	X = PlayerX
	O = PlayerO
)

func TestCheckWinner(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		want     PlayerMark
		wantLine WinLine
		wantOK   bool
	}{
		{
			name:  "No winner - empty board",
			board: Board{},
		},
		{
			name:  "No winner - partial board",
			board: Board{X, None, None, None, O, None, None, None, None},
		},
		{
			name:     "X wins - first row",
			board:    Board{X, X, X, None, O, None, None, None, O},
			want:     X,
			wantLine: WinLine{0, 1, 2},
			wantOK:   true,
		},
		{
			name:     "O wins - second column",
			board:    Board{X, O, None, X, O, None, None, O, None},
			want:     O,
			wantLine: WinLine{1, 4, 7},
			wantOK:   true,
		},
		{
			name:     "X wins - main diagonal",
			board:    Board{X, None, None, None, X, None, None, None, X},
			want:     X,
			wantLine: WinLine{0, 4, 8},
			wantOK:   true,
		},
		{
			name:     "O wins - anti-diagonal",
			board:    Board{None, None, O, None, O, None, O, None, None},
			want:     O,
			wantLine: WinLine{2, 4, 6},
			wantOK:   true,
		},
		{
			name:  "No winner - full board (draw)",
			board: Board{X, O, X, X, O, O, O, X, X},
		},
		{
			name:     "X checked before O",
			board:    Board{O, O, O, X, X, X, None, None, None},
			want:     X,
			wantLine: WinLine{3, 4, 5},
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, line, ok := CheckWinner(tt.board)
			if got != tt.want || ok != tt.wantOK || line != tt.wantLine {
				t.Errorf("CheckWinner() got = (%v, %v, %v), want (%v, %v, %v)", got, line, ok, tt.want, tt.wantLine, tt.wantOK)
			}
		})
	}
}

func TestBoardIsFull(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  bool
	}{
		{name: "Empty board is not full", board: Board{}, want: false},
		{name: "Partial board is not full", board: Board{X, None, None, None, O}, want: false},
		{name: "Full board is full", board: Board{X, O, X, X, O, O, O, X, X}, want: true},
		{name: "Full board with winner is full", board: Board{X, X, X, O, O, X, O, X, O}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.IsFull(); got != tt.want {
				t.Errorf("IsFull() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoardEmptyCellsAndCount(t *testing.T) {
	b := Board{X, None, O, None, X, None, None, None, O}

	got := b.EmptyCells()
	want := []int{1, 3, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("EmptyCells() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EmptyCells() = %v, want %v", got, want)
		}
	}

	if n := b.Count(X); n != 2 {
		t.Errorf("Count(X) = %d, want 2", n)
	}
	if n := b.Count(O); n != 2 {
		t.Errorf("Count(O) = %d, want 2", n)
	}
	if n := b.Count(None); n != 5 {
		t.Errorf("Count(None) = %d, want 5", n)
	}
}

func TestBoardRows(t *testing.T) {
	b := Board{X, None, O, None, X, None, O, None, X}
	rows := b.Rows()
	if len(rows) != 3 {
		t.Fatalf("Rows() returned %d rows", len(rows))
	}
	if rows[0][2] != O || rows[1][1] != X || rows[2][0] != O {
		t.Errorf("Rows() = %v does not match row-major layout", rows)
	}
}

func TestScoreBoardRecord(t *testing.T) {
	var s ScoreBoard
	line := WinLines[0]

	s.Record(Outcome{Status: StatusWon, Winner: X, Line: &line})
	s.Record(Outcome{Status: StatusWon, Winner: O, Line: &line})
	s.Record(Outcome{Status: StatusDraw})
	s.Record(InProgress())

	want := ScoreBoard{XWins: 1, OWins: 1, Draws: 1, TotalGames: 3}
	if s != want {
		t.Errorf("ScoreBoard = %+v, want %+v", s, want)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{in: "easy", want: Easy},
		{in: "Medium", want: Medium},
		{in: " hard ", want: Hard},
		{in: "impossible", want: Impossible},
		{in: "nightmare", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDifficulty) {
					t.Errorf("ParseDifficulty(%q) error = %v, want ErrUnknownDifficulty", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDifficulty(%q) = (%v, %v), want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestSmartProbability(t *testing.T) {
	want := map[Difficulty]float64{Easy: 0, Medium: 0.7, Hard: 0.9, Impossible: 1, "bogus": 0}
	for d, p := range want {
		if got := d.SmartProbability(); got != p {
			t.Errorf("%s.SmartProbability() = %v, want %v", d, got, p)
		}
	}
}

func TestInvalidMoveErrorsWrapRoot(t *testing.T) {
	for _, err := range []error{ErrGameOver, ErrOutOfRange, ErrCellOccupied, ErrNotYourTurn, ErrNotComputerTurn} {
		if !errors.Is(err, ErrInvalidMove) {
			t.Errorf("%v does not wrap ErrInvalidMove", err)
		}
	}
}
