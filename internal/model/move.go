package model

import "github.com/benbeisheim/chess-backend/internal/engine"

// Selection is the first half of the select-then-move protocol: the square a
// player picked and the squares its piece may reach.
type Selection struct {
	Square     int
	LegalMoves []int
}

// LastMove records the most recent committed move for highlighting.
type LastMove struct {
	engine.Move
	Piece    engine.Piece `json:"piece"`
	Captured engine.Piece `json:"captured"`
	Notation string       `json:"notation"`
}

// notation renders a move as piece letter, optional capture mark and target
// square, with files a..h for columns 0..7 and ranks 1..8 for rows 0..7.
func notation(piece, captured engine.Piece, m engine.Move) string {
	_, fromCol := engine.RowCol(m.From)
	toRow, toCol := engine.RowCol(m.To)
	prefix := piece.Notation()
	if piece.Kind() == engine.Pawn && fromCol != toCol {
		prefix = string(rune('a' + fromCol))
	}
	capture := ""
	if !captured.IsEmpty() {
		capture = "x"
	}
	return prefix + capture + string(rune('a'+toCol)) + string(rune('1'+toRow))
}
