package game

import "github.com/sirupsen/logrus"

// Coord は無限盤面上のマスの座標です
type Coord struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Origin は初期化時に最初に開けるマスです
var Origin = Coord{}

// 周囲8マスへのオフセット
var neighborOffsets = [8]Coord{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors は周囲8マスの座標を返します
func (c Coord) Neighbors() [8]Coord {
	var out [8]Coord
	for i, d := range neighborOffsets {
		out[i] = Coord{X: c.X + d.X, Y: c.Y + d.Y}
	}
	return out
}

// Cell は生成済みの1マスの情報を持ちます
type Cell struct {
	IsBomb        bool  // 地雷かどうか（生成後は不変）
	NeighborCount uint8 // 周囲8マスにある地雷の数（生成後は不変）
	Revealed      bool  // すでに開けられたか（false→trueのみ）
	Flagged       bool  // フラグが立てられているか
}

// CellState は描画側に渡す1マス分の状態です
type CellState struct {
	Coord
	IsBomb        bool
	NeighborCount uint8
	Revealed      bool
	Flagged       bool
}

func stateOf(c Coord, cell *Cell) CellState {
	return CellState{
		Coord:         c,
		IsBomb:        cell.IsBomb,
		NeighborCount: cell.NeighborCount,
		Revealed:      cell.Revealed,
		Flagged:       cell.Flagged,
	}
}

// Rect は両端を含む矩形範囲です
type Rect struct {
	Min, Max Coord
}

// Contains は座標が範囲内かどうかを返します
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// NewRect は2点を対角とする矩形を返します
func NewRect(a, b Coord) Rect {
	return Rect{
		Min: Coord{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Coord{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// Span は Max-Min を桁あふれなしで返します。Min > Max の軸があれば ok=false です。
func (r Rect) Span() (dx, dy uint64, ok bool) {
	if r.Max.X < r.Min.X || r.Max.Y < r.Min.Y {
		return 0, 0, false
	}
	return uint64(r.Max.X - r.Min.X), uint64(r.Max.Y - r.Min.Y), true
}

const (
	DefaultDensity   = 8
	DefaultStepLimit = 100
	DefaultIdleLimit = 1000
)

// Options は盤面生成と連鎖オープンの設定です
type Options struct {
	Seed          uint64
	Density       int   // 地雷密度の除数 N（おおよそ 1/N が地雷）
	StepLimit     int   // 1回のRevealで展開できる回数
	IdleLimit     int   // 新しいマスを生まない展開が続いてよい回数
	SafeThreshold uint8 // 周囲の地雷数がこれ以下なら連鎖を続ける

	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Density < 1 {
		o.Density = DefaultDensity
	}
	if o.StepLimit <= 0 {
		o.StepLimit = DefaultStepLimit
	}
	if o.IdleLimit <= 0 {
		o.IdleLimit = DefaultIdleLimit
	}
	if o.SafeThreshold > 8 {
		o.SafeThreshold = 8
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
