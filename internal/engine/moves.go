package engine

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func checkRange(from, to int) error {
	if !InRange(from) {
		return outOfRange(from)
	}
	if !InRange(to) {
		return outOfRange(to)
	}
	return nil
}

// IsPathClear reports whether every cell strictly between from and to is
// empty. It serves the sliding pieces only, so from and to must share a rank,
// file or diagonal; any other pair has no straight path and yields false.
// Adjacent cells, and from == to, are trivially clear.
func (e *BoardEngine) IsPathClear(from, to int) (bool, error) {
	if err := checkRange(from, to); err != nil {
		return false, err
	}
	return e.pathClear(from, to), nil
}

func (e *BoardEngine) pathClear(from, to int) bool {
	fromRow, fromCol := RowCol(from)
	toRow, toCol := RowCol(to)
	dRow, dCol := toRow-fromRow, toCol-fromCol
	if dRow != 0 && dCol != 0 && abs(dRow) != abs(dCol) {
		return false
	}

	rowStep, colStep := sign(dRow), sign(dCol)
	row, col := fromRow+rowStep, fromCol+colStep
	for row != toRow || col != toCol {
		if !e.board[Index(row, col)].IsEmpty() {
			return false
		}
		row += rowStep
		col += colStep
	}
	return true
}

// IsValidMove reports whether the piece on from may move to to under the basic
// movement rules. It does not check that the piece belongs to the side to move,
// nor king safety. A piece never captures its own side, which also rejects
// from == to for any occupied cell.
func (e *BoardEngine) IsValidMove(from, to int) (bool, error) {
	if err := checkRange(from, to); err != nil {
		return false, err
	}
	return e.validMove(from, to), nil
}

func (e *BoardEngine) validMove(from, to int) bool {
	piece := e.board[from]
	target := e.board[to]

	if piece.SameSide(target) {
		return false
	}

	fromRow, fromCol := RowCol(from)
	toRow, toCol := RowCol(to)
	dRow, dCol := toRow-fromRow, toCol-fromCol

	switch piece.Kind() {
	case Pawn:
		return e.validPawnMove(piece, from, to, fromRow, dRow, dCol)
	case Knight:
		return (abs(dRow) == 2 && abs(dCol) == 1) || (abs(dRow) == 1 && abs(dCol) == 2)
	case Bishop:
		return abs(dRow) == abs(dCol) && e.pathClear(from, to)
	case Rook:
		return (dRow == 0 || dCol == 0) && e.pathClear(from, to)
	case Queen:
		return (dRow == 0 || dCol == 0 || abs(dRow) == abs(dCol)) && e.pathClear(from, to)
	case King:
		return abs(dRow) <= 1 && abs(dCol) <= 1
	}
	return false
}

// White pawns advance toward increasing rows from home row 1, Black pawns
// toward decreasing rows from home row 6.
func (e *BoardEngine) validPawnMove(piece Piece, from, to, fromRow, dRow, dCol int) bool {
	forward, homeRow := 1, 1
	if piece.Color() == Black {
		forward, homeRow = -1, 6
	}
	target := e.board[to]

	if fromRow == homeRow && dRow == 2*forward && dCol == 0 &&
		e.board[from+forward*BoardSize].IsEmpty() && target.IsEmpty() {
		return true
	}
	if dRow == forward && dCol == 0 && target.IsEmpty() {
		return true
	}
	if dRow == forward && abs(dCol) == 1 && !target.IsEmpty() && !piece.SameSide(target) {
		return true
	}
	return false
}

// ApplyMove moves the piece on from to to and empties from. It performs no
// legality check and does not flip the turn: callers validate with IsValidMove
// first and call FlipTurn after. Only the index range is enforced.
func (e *BoardEngine) ApplyMove(from, to int) error {
	if err := checkRange(from, to); err != nil {
		return err
	}
	e.board[to] = e.board[from]
	e.board[from] = Empty
	return nil
}

// LegalTargets lists, in ascending order, every cell the piece on from may move
// to.
func (e *BoardEngine) LegalTargets(from int) ([]int, error) {
	if !InRange(from) {
		return nil, outOfRange(from)
	}
	targets := []int{}
	if e.board[from].IsEmpty() {
		return targets, nil
	}
	for to := 0; to < NumCells; to++ {
		if e.validMove(from, to) {
			targets = append(targets, to)
		}
	}
	return targets, nil
}
