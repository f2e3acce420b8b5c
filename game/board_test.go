package game

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeIsIdempotent(t *testing.T) {
	o := NewOracle(5, 5)
	b := NewBoard(o, 0)
	c := Coord{X: 4, Y: -2}

	require.False(t, b.Contains(c))
	existed, safe := b.Materialize(c, false)
	assert.False(t, existed)
	first, ok := b.Query(c)
	require.True(t, ok)
	assert.Equal(t, o.IsBomb(c), first.IsBomb)
	assert.Equal(t, o.NeighborCount(c), first.NeighborCount)
	assert.Equal(t, !first.IsBomb && first.NeighborCount == 0, safe)
	assert.False(t, first.Revealed)

	existed, safe2 := b.Materialize(c, true)
	assert.True(t, existed)
	assert.Equal(t, safe, safe2)
	second, _ := b.Query(c)
	assert.Equal(t, first, second, "second materialize must not mutate")
	assert.Equal(t, 1, b.Len())
}

func TestMaterializeCountIndependentOfOrder(t *testing.T) {
	o := NewOracle(77, 4)
	forward := NewBoard(o, 0)
	backward := NewBoard(o, 0)

	var coords []Coord
	for y := int64(-6); y <= 6; y++ {
		for x := int64(-6); x <= 6; x++ {
			coords = append(coords, Coord{X: x, Y: y})
		}
	}
	for _, c := range coords {
		forward.Materialize(c, false)
	}
	for i := len(coords) - 1; i >= 0; i-- {
		backward.Materialize(coords[i], false)
	}
	for _, c := range coords {
		f, _ := forward.Query(c)
		bk, _ := backward.Query(c)
		assert.Equal(t, f, bk)
		assert.Equal(t, o.NeighborCount(c), f.NeighborCount)
	}
}

func TestMarkRevealedIsMonotonic(t *testing.T) {
	b := NewBoard(NewOracle(1, 8), 0)
	c := Coord{X: 1, Y: 1}

	assert.False(t, b.MarkRevealed(c), "unmaterialized cell")
	b.Materialize(c, false)
	assert.True(t, b.MarkRevealed(c))
	assert.False(t, b.MarkRevealed(c))
	b.Materialize(c, false)

	state, _ := b.Query(c)
	assert.True(t, state.Revealed)
	assert.Equal(t, 1, b.RevealedCount())
}

func TestToggleFlag(t *testing.T) {
	b := NewBoard(NewOracle(1, 8), 0)
	c := Coord{X: -3, Y: 9}

	require.True(t, b.ToggleFlag(c))
	state, ok := b.Query(c)
	require.True(t, ok, "flagging materializes the cell")
	assert.True(t, state.Flagged)
	assert.False(t, b.MarkRevealed(c), "flagged cells stay closed")
	assert.Equal(t, 1, b.FlagCount())

	require.True(t, b.ToggleFlag(c))
	require.True(t, b.MarkRevealed(c))
	assert.False(t, b.ToggleFlag(c), "revealed cells cannot be flagged")
	assert.Equal(t, 0, b.FlagCount())
}

func TestSafeThreshold(t *testing.T) {
	o := NewOracle(11, 5)
	c := find(t, 50, func(c Coord) bool {
		return !o.IsBomb(c) && o.NeighborCount(c) == 2
	})

	_, safe := NewBoard(o, 0).Materialize(c, false)
	assert.False(t, safe)
	_, safe = NewBoard(o, 2).Materialize(c, false)
	assert.True(t, safe)

	mine := find(t, 50, o.IsBomb)
	_, safe = NewBoard(o, 8).Materialize(mine, false)
	assert.False(t, safe, "a mine is never safe")
}

func TestWindowAndCoordsOrder(t *testing.T) {
	b := NewBoard(NewOracle(2, 8), 0)
	b.Materialize(Coord{X: 2, Y: 1}, false)
	b.Materialize(Coord{X: -1, Y: 1}, false)
	b.Materialize(Coord{X: 5, Y: -4}, false)
	b.Materialize(Coord{X: 50, Y: 50}, false)

	assert.Equal(t, []Coord{{5, -4}, {-1, 1}, {2, 1}, {50, 50}}, b.Coords())

	win := b.Window(Rect{Min: Coord{X: -2, Y: -5}, Max: Coord{X: 5, Y: 1}})
	require.Len(t, win, 3)
	assert.Equal(t, Coord{X: 5, Y: -4}, win[0].Coord)
	assert.Equal(t, Coord{X: -1, Y: 1}, win[1].Coord)
	assert.Equal(t, Coord{X: 2, Y: 1}, win[2].Coord)

	small := b.Window(Rect{Min: Coord{X: 2, Y: 1}, Max: Coord{X: 2, Y: 1}})
	require.Len(t, small, 1)
	assert.Empty(t, b.Window(Rect{Min: Coord{X: 3, Y: 0}, Max: Coord{X: 0, Y: 0}}))
}

func TestWindowAtInt64Edge(t *testing.T) {
	b := NewBoard(NewOracle(0, 1), 0)
	b.Materialize(Coord{X: math.MaxInt64 - 1, Y: 0}, false)
	b.Materialize(Coord{X: math.MaxInt64, Y: 0}, true)
	b.Materialize(Coord{X: math.MinInt64, Y: math.MinInt64}, false)

	edge := Rect{Min: Coord{X: math.MaxInt64 - 1, Y: 0}, Max: Coord{X: math.MaxInt64, Y: 0}}
	win := b.Window(edge)
	require.Len(t, win, 2)
	assert.Equal(t, Coord{X: math.MaxInt64 - 1, Y: 0}, win[0].Coord)
	assert.Equal(t, Coord{X: math.MaxInt64, Y: 0}, win[1].Coord)
	assert.Equal(t, "-*\n", b.DebugString(edge))

	corner := Rect{Min: Coord{X: math.MaxInt64 - 1, Y: math.MaxInt64 - 1}, Max: Coord{X: math.MaxInt64, Y: math.MaxInt64}}
	assert.Empty(t, b.Window(corner))
	assert.Equal(t, "--\n--\n", b.DebugString(corner))

	// 面積が 2^64 で桁あふれして 0 になる範囲
	wrapped := Rect{Max: Coord{X: 1<<32 - 1, Y: 1<<32 - 1}}
	assert.Empty(t, b.Window(wrapped))

	all := b.Window(Rect{
		Min: Coord{X: math.MinInt64, Y: math.MinInt64},
		Max: Coord{X: math.MaxInt64, Y: math.MaxInt64},
	})
	require.Len(t, all, 3)
	assert.Equal(t, Coord{X: math.MinInt64, Y: math.MinInt64}, all[0].Coord)
}

func TestNewRectSpan(t *testing.T) {
	r := NewRect(Coord{X: 3, Y: -1}, Coord{X: -2, Y: 4})
	assert.Equal(t, Rect{Min: Coord{X: -2, Y: -1}, Max: Coord{X: 3, Y: 4}}, r)
	dx, dy, ok := r.Span()
	require.True(t, ok)
	assert.Equal(t, uint64(5), dx)
	assert.Equal(t, uint64(5), dy)

	dx, _, ok = NewRect(Coord{X: math.MinInt64}, Coord{X: math.MaxInt64}).Span()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), dx)

	_, _, ok = Rect{Min: Coord{X: 1}}.Span()
	assert.False(t, ok)
}

func TestDebugPrint(t *testing.T) {
	o := NewOracle(0, 1)
	b := NewBoard(o, 0)
	b.Materialize(Origin, true)
	b.Materialize(Coord{X: 1, Y: 0}, true)
	b.ToggleFlag(Coord{X: -1, Y: 0})

	var buf bytes.Buffer
	b.DebugPrint(&buf, Rect{Min: Coord{X: -1, Y: 0}, Max: Coord{X: 2, Y: 0}})
	assert.Equal(t, "F8*-\n", buf.String())
}
