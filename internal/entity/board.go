package entity

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

const BoardSize = 3

// Mark is a player symbol as it appears on the board and on the wire.
type Mark string

func (that Mark) Other() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Board is a value type; passing it around always copies the full grid, so
// event subscribers only ever see immutable snapshots.
type Board [BoardSize][BoardSize]Mark

// WinLines are the 8 winning lines as (row, col) coordinate triples:
// 3 rows, 3 columns, 2 diagonals.
var WinLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Winner returns the mark completing a line, or EmptyCell if no line is complete.
func (that Board) Winner() Mark {
	for _, line := range WinLines {
		a := that[line[0][0]][line[0][1]]
		b := that[line[1][0]][line[1][1]]
		c := that[line[2][0]][line[2][1]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

// Move is a transient value: built by a participant, consumed once by the engine.
type Move struct {
	Player Mark
	Row    int
	Col    int
}

func (that Move) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}
