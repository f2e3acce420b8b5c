package game

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Board は生成済みのマスを管理します。
// 存在しない座標は「まだ生成されていない」ことを意味します。
type Board struct {
	oracle        Oracle
	safeThreshold uint8
	cells         map[Coord]*Cell
	revealed      int
}

// NewBoard は空の盤面を作ります
func NewBoard(oracle Oracle, safeThreshold uint8) *Board {
	return &Board{
		oracle:        oracle,
		safeThreshold: safeThreshold,
		cells:         make(map[Coord]*Cell),
	}
}

// Oracle は盤面が使っている Oracle を返します
func (b *Board) Oracle() Oracle { return b.oracle }

// Contains は座標が生成済みかどうかを返します
func (b *Board) Contains(c Coord) bool {
	_, ok := b.cells[c]
	return ok
}

// Materialize はマスを生成します。すでに生成済みなら何も変更しません。
// safe は「地雷ではなく、周囲の地雷数がしきい値以下」を意味します。
func (b *Board) Materialize(c Coord, reveal bool) (existed, safe bool) {
	if cell, ok := b.cells[c]; ok {
		return true, b.isSafe(cell)
	}
	cell := &Cell{
		IsBomb:        b.oracle.IsBomb(c),
		NeighborCount: b.oracle.NeighborCount(c),
		Revealed:      reveal,
	}
	b.cells[c] = cell
	if reveal {
		b.revealed++
	}
	return false, b.isSafe(cell)
}

func (b *Board) isSafe(cell *Cell) bool {
	return !cell.IsBomb && cell.NeighborCount <= b.safeThreshold
}

// MarkRevealed は生成済みのマスを開けます。状態が変わったら true を返します。
// 未生成のマスやフラグ付きのマスには何もしません。
func (b *Board) MarkRevealed(c Coord) bool {
	cell, ok := b.cells[c]
	if !ok || cell.Revealed || cell.Flagged {
		return false
	}
	cell.Revealed = true
	b.revealed++
	return true
}

// ToggleFlag は未開封のマスのフラグを切り替えます。
// 未生成のマスは隠れた状態で生成してからフラグを立てます。
func (b *Board) ToggleFlag(c Coord) bool {
	b.Materialize(c, false)
	cell := b.cells[c]
	if cell.Revealed {
		return false
	}
	cell.Flagged = !cell.Flagged
	return true
}

// Query は生成済みのマスの状態を返します
func (b *Board) Query(c Coord) (CellState, bool) {
	cell, ok := b.cells[c]
	if !ok {
		return CellState{}, false
	}
	return stateOf(c, cell), true
}

// Len は生成済みのマスの数を返します
func (b *Board) Len() int { return len(b.cells) }

// RevealedCount は開いているマスの数を返します
func (b *Board) RevealedCount() int { return b.revealed }

// FlagCount はフラグの数を返します
func (b *Board) FlagCount() int {
	n := 0
	for _, cell := range b.cells {
		if cell.Flagged {
			n++
		}
	}
	return n
}

// Coords は生成済みの座標を行優先の順で返します
func (b *Board) Coords() []Coord {
	out := make([]Coord, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, compareCoords)
	return out
}

func compareCoords(a, b Coord) int {
	switch {
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	}
	return 0
}

// Window は矩形範囲内の生成済みマスを行優先の順で返します
func (b *Board) Window(r Rect) []CellState {
	var out []CellState
	dx, dy, ok := r.Span()
	if !ok {
		return out
	}
	// 範囲が盤面より広いときは全マスを走査したほうが速い。
	// dx, dy が最大値のときは +1 が 0 に戻るので先に弾きます。
	n := uint64(len(b.cells))
	if dx >= n || dy >= n || dx+1 > n/(dy+1) {
		for _, c := range b.Coords() {
			if r.Contains(c) {
				out = append(out, stateOf(c, b.cells[c]))
			}
		}
		return out
	}
	for j := uint64(0); j <= dy; j++ {
		for i := uint64(0); i <= dx; i++ {
			c := Coord{X: r.Min.X + int64(i), Y: r.Min.Y + int64(j)}
			if cell, ok := b.cells[c]; ok {
				out = append(out, stateOf(c, cell))
			}
		}
	}
	return out
}

// DebugPrint は範囲内の盤面をテキストで書き出します。
// 未生成・未開封は「-」、フラグは「F」、地雷は「*」、0は「.」です。
func (b *Board) DebugPrint(w io.Writer, r Rect) {
	fmt.Fprint(w, b.DebugString(r))
}

// DebugString は DebugPrint と同じ内容を文字列で返します
func (b *Board) DebugString(r Rect) string {
	var sb strings.Builder
	if _, _, ok := r.Span(); !ok {
		return ""
	}
	// 端が MaxInt64 でも止まるよう、比較ではなく一致で抜けます
	for y := r.Min.Y; ; y++ {
		for x := r.Min.X; ; x++ {
			sb.WriteByte(glyph(b.cells[Coord{X: x, Y: y}]))
			if x == r.Max.X {
				break
			}
		}
		sb.WriteByte('\n')
		if y == r.Max.Y {
			break
		}
	}
	return sb.String()
}

func glyph(cell *Cell) byte {
	switch {
	case cell == nil:
		return '-'
	case cell.Flagged:
		return 'F'
	case !cell.Revealed:
		return '-'
	case cell.IsBomb:
		return '*'
	case cell.NeighborCount == 0:
		return '.'
	}
	return '0' + cell.NeighborCount
}
