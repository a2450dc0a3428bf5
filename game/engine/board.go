package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrInvalidTileSet = errors.New("invalid tile set")
	ErrNotPermutation = errors.New("tiles are not a permutation of the canonical order")
)

// Board holds the current arrangement of a square puzzle.
type Board struct {
	size      int
	canonical []Tile
	tiles     []Tile
	blank     int
}

// NewBoard creates a solved board for the given canonical order. The order
// must describe a square grid of at least 2×2 with exactly one blank.
func NewBoard(canonical []Tile) (*Board, error) {
	size := 0
	for size*size < len(canonical) {
		size++
	}
	if size < 2 || size*size != len(canonical) {
		return nil, fmt.Errorf("%w: %d tiles do not form a square grid", ErrInvalidTileSet, len(canonical))
	}

	seen := make(map[Tile]bool, len(canonical))
	blanks := 0
	for _, t := range canonical {
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate tile %q", ErrInvalidTileSet, t)
		}
		seen[t] = true
		if t == Blank {
			blanks++
		}
	}
	if blanks != 1 {
		return nil, fmt.Errorf("%w: expected exactly one blank, got %d", ErrInvalidTileSet, blanks)
	}

	return newBoard(canonical), nil
}

// newBoard skips validation; callers pass a TilesForLevel result.
func newBoard(canonical []Tile) *Board {
	size := 0
	for size*size < len(canonical) {
		size++
	}
	b := &Board{
		size:      size,
		canonical: append([]Tile(nil), canonical...),
		tiles:     append([]Tile(nil), canonical...),
	}
	b.blank = indexOf(b.tiles, Blank)
	return b
}

// Initialize replaces the arrangement with a uniformly random permutation
// of the canonical order.
func (b *Board) Initialize(rng *rand.Rand) {
	b.tiles = Shuffle(b.canonical, rng)
	b.blank = indexOf(b.tiles, Blank)
}

// Shuffle returns a Fisher-Yates shuffled copy of tiles.
func Shuffle(tiles []Tile, rng *rand.Rand) []Tile {
	out := append([]Tile(nil), tiles...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// AttemptMove slides the tile at index into the blank slot. Indexes that are
// out of range or not orthogonally adjacent to the blank leave the board
// untouched and return false.
func (b *Board) AttemptMove(index int) bool {
	if !b.IsAdjacentToBlank(index) {
		return false
	}
	b.tiles[index], b.tiles[b.blank] = b.tiles[b.blank], b.tiles[index]
	b.blank = index
	return true
}

// IsAdjacentToBlank reports whether index shares a row or column with the
// blank at distance exactly one.
func (b *Board) IsAdjacentToBlank(index int) bool {
	if index < 0 || index >= len(b.tiles) {
		return false
	}
	row, col := index/b.size, index%b.size
	blankRow, blankCol := b.blank/b.size, b.blank%b.size
	return (row == blankRow && abs(col-blankCol) == 1) ||
		(col == blankCol && abs(row-blankRow) == 1)
}

// MovableIndexes lists the positions that AttemptMove would accept.
func (b *Board) MovableIndexes() []int {
	movable := make([]int, 0, 4)
	for _, idx := range []int{b.blank - b.size, b.blank - 1, b.blank + 1, b.blank + b.size} {
		if b.IsAdjacentToBlank(idx) {
			movable = append(movable, idx)
		}
	}
	return movable
}

// IsSolved reports whether the arrangement equals the canonical order.
func (b *Board) IsSolved() bool {
	for i := range b.tiles {
		if b.tiles[i] != b.canonical[i] {
			return false
		}
	}
	return true
}

// SetTiles replaces the arrangement wholesale.
func (b *Board) SetTiles(tiles []Tile) error {
	if !IsPermutation(b.canonical, tiles) {
		return ErrNotPermutation
	}
	b.tiles = append([]Tile(nil), tiles...)
	b.blank = indexOf(b.tiles, Blank)
	return nil
}

// BlankIndex is the cell holding the blank.
func (b *Board) BlankIndex() int { return b.blank }

// Size is the number of rows (and columns).
func (b *Board) Size() int { return b.size }

// Tiles returns a copy of the current arrangement.
func (b *Board) Tiles() []Tile {
	return append([]Tile(nil), b.tiles...)
}

// Canonical returns a copy of the solved order.
func (b *Board) Canonical() []Tile {
	return append([]Tile(nil), b.canonical...)
}

// IsPermutation reports whether tiles holds exactly the tiles of canonical.
func IsPermutation(canonical, tiles []Tile) bool {
	if len(canonical) != len(tiles) {
		return false
	}
	counts := make(map[Tile]int, len(canonical))
	for _, t := range canonical {
		counts[t]++
	}
	for _, t := range tiles {
		counts[t]--
		if counts[t] < 0 {
			return false
		}
	}
	return true
}

// IsSolvable reports whether tiles can reach canonical through blank moves.
// A configuration is reachable iff the parity of the permutation matches the
// parity of the blank's taxicab distance from its solved position.
func IsSolvable(canonical, tiles []Tile) bool {
	if !IsPermutation(canonical, tiles) {
		return false
	}
	size := 0
	for size*size < len(canonical) {
		size++
	}

	target := make(map[Tile]int, len(canonical))
	for i, t := range canonical {
		target[t] = i
	}
	perm := make([]int, len(tiles))
	for i, t := range tiles {
		perm[i] = target[t]
	}

	visited := make([]bool, len(perm))
	cycles := 0
	for i := range perm {
		if visited[i] {
			continue
		}
		cycles++
		for j := i; !visited[j]; j = perm[j] {
			visited[j] = true
		}
	}
	permParity := (len(perm) - cycles) % 2

	from, to := indexOf(tiles, Blank), target[Blank]
	distance := abs(from/size-to/size) + abs(from%size-to%size)
	return permParity == distance%2
}

func indexOf(tiles []Tile, t Tile) int {
	for i := range tiles {
		if tiles[i] == t {
			return i
		}
	}
	return -1
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
