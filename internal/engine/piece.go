package engine

import "strings"

// Piece is a signed piece code. The magnitude is the kind, the sign the colour:
// positive for White, negative for Black, zero for an empty cell.
type Piece int8

const (
	Empty  Piece = 0
	Pawn   Piece = 1
	Knight Piece = 2
	Bishop Piece = 3
	Rook   Piece = 4
	Queen  Piece = 5
	King   Piece = 6
)

const (
	WhitePawn   = Pawn
	WhiteKnight = Knight
	WhiteBishop = Bishop
	WhiteRook   = Rook
	WhiteQueen  = Queen
	WhiteKing   = King

	BlackPawn   = -Pawn
	BlackKnight = -Knight
	BlackBishop = -Bishop
	BlackRook   = -Rook
	BlackQueen  = -Queen
	BlackKing   = -King
)

// Kind strips the colour from a piece code.
func (p Piece) Kind() Piece {
	if p < 0 {
		return -p
	}
	return p
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

// Color reports the side owning the piece. The result is meaningless for Empty.
func (p Piece) Color() Color {
	if p < 0 {
		return Black
	}
	return White
}

// SameSide reports whether both pieces are non-empty and share a colour.
func (p Piece) SameSide(other Piece) bool {
	return int(p)*int(other) > 0
}

func (p Piece) Symbol() string {
	switch p {
	case WhitePawn:
		return "♙"
	case BlackPawn:
		return "♟"
	case WhiteKnight:
		return "♘"
	case BlackKnight:
		return "♞"
	case WhiteBishop:
		return "♗"
	case BlackBishop:
		return "♝"
	case WhiteRook:
		return "♖"
	case BlackRook:
		return "♜"
	case WhiteQueen:
		return "♕"
	case BlackQueen:
		return "♛"
	case WhiteKing:
		return "♔"
	case BlackKing:
		return "♚"
	}
	return ""
}

// Notation returns the algebraic letter of the piece kind; pawns have none.
func (p Piece) Notation() string {
	switch p.Kind() {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	var name string
	switch p.Kind() {
	case Pawn:
		name = "pawn"
	case Knight:
		name = "knight"
	case Bishop:
		name = "bishop"
	case Rook:
		name = "rook"
	case Queen:
		name = "queen"
	case King:
		name = "king"
	default:
		return "unknown"
	}
	return strings.Join([]string{p.Color().String(), name}, " ")
}

// Color is the turn flag: which side moves next.
type Color int8

const (
	White Color = 1
	Black Color = -1
)

func (c Color) Opposite() Color {
	return -c
}

// Owns reports whether p is a piece of colour c.
func (c Color) Owns(p Piece) bool {
	return int(p)*int(c) > 0
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return ErrUnknownColor
	}
	return nil
}
