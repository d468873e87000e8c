// Package engine holds the board state and move rules of a two-player chess
// board. It knows nothing about players, selection or rendering; callers gate on
// whose turn it is, validate, apply, then flip the turn themselves.
//
// A BoardEngine is not safe for concurrent use.
package engine

import "strings"

const (
	BoardSize = 8
	NumCells  = BoardSize * BoardSize
)

// Board is the row-major cell array: index = row*8 + col.
type Board [NumCells]Piece

// backRank is White's row 0 from column 0 to 7. Black's row 7 is its negation.
var backRank = [BoardSize]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Move is a transient from/to pair; no history of moves is kept.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type BoardEngine struct {
	board Board
	turn  Color
}

// New returns an engine holding the starting layout with White to move.
func New() *BoardEngine {
	e := &BoardEngine{}
	e.Reset()
	return e
}

// Initialize lays out the standard starting position. White occupies rows 0
// and 1 and moves toward increasing rows; Black occupies rows 6 and 7. The turn
// flag is left alone.
func (e *BoardEngine) Initialize() {
	e.board = Board{}
	for col := 0; col < BoardSize; col++ {
		e.board[Index(0, col)] = backRank[col]
		e.board[Index(1, col)] = WhitePawn
		e.board[Index(6, col)] = BlackPawn
		e.board[Index(7, col)] = -backRank[col]
	}
}

// Reset restores the starting layout and gives the move to White.
func (e *BoardEngine) Reset() {
	e.Initialize()
	e.turn = White
}

func (e *BoardEngine) PieceAt(index int) (Piece, error) {
	if !InRange(index) {
		return Empty, outOfRange(index)
	}
	return e.board[index], nil
}

// Board returns a copy of all 64 cells.
func (e *BoardEngine) Board() Board {
	return e.board
}

func (e *BoardEngine) Turn() Color {
	return e.turn
}

// FlipTurn hands the move to the other side. ApplyMove never does this; the
// caller flips after each move it commits.
func (e *BoardEngine) FlipTurn() {
	e.turn = e.turn.Opposite()
}

// String draws the board with row 7 on top, one line per row.
func (e *BoardEngine) String() string {
	var sb strings.Builder
	for row := BoardSize - 1; row >= 0; row-- {
		for col := 0; col < BoardSize; col++ {
			p := e.board[Index(row, col)]
			if p.IsEmpty() {
				sb.WriteString(".")
			} else {
				sb.WriteString(p.Symbol())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func InRange(index int) bool {
	return index >= 0 && index < NumCells
}

func Index(row, col int) int {
	return row*BoardSize + col
}

func RowCol(index int) (int, int) {
	return index / BoardSize, index % BoardSize
}
