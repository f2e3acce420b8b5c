package viewmodel

import (
	"encoding/json"

	"infinisweeper/game"
)

// CellView は描画側に渡す1マス分の情報です
type CellView struct {
	X      int64  `json:"x"`
	Y      int64  `json:"y"`
	State  string `json:"state"`
	Count  int    `json:"count"`
	IsMine bool   `json:"is_mine"`
}

// RevealView は1回の操作の結果です
type RevealView struct {
	Cells      []CellView `json:"cells"`
	Steps      int        `json:"steps"`
	Truncated  bool       `json:"truncated"`
	IsGameOver bool       `json:"is_game_over"`
}

// BoardView は矩形範囲の盤面です
type BoardView struct {
	Cells      []CellView `json:"cells"`
	Generated  int        `json:"generated"`
	Revealed   int        `json:"revealed"`
	Flags      int        `json:"flags"`
	IsGameOver bool       `json:"is_game_over"`
}

// NewCellView は未開封のマスの中身を隠した CellView を作ります
func NewCellView(s game.CellState, isGameOver bool) CellView {
	v := CellView{X: s.X, Y: s.Y}
	switch {
	case s.Revealed:
		v.State = "opened"
		v.IsMine = s.IsBomb
		v.Count = int(s.NeighborCount)
	case s.Flagged:
		v.State = "flagged"
	default:
		v.State = "hidden"
	}

	// ゲームオーバー後は地雷の位置を見せる
	if isGameOver && s.IsBomb {
		v.State = "opened"
		v.IsMine = true
	}
	return v
}

func cellViews(cells []game.CellState, isGameOver bool) []CellView {
	out := make([]CellView, 0, len(cells))
	for _, c := range cells {
		out = append(out, NewCellView(c, isGameOver))
	}
	return out
}

// NewRevealView は Reveal の結果をビューにします
func NewRevealView(res game.Result, isGameOver bool) RevealView {
	return RevealView{
		Cells:      cellViews(res.Cells, isGameOver),
		Steps:      res.Steps,
		Truncated:  res.Truncated,
		IsGameOver: isGameOver,
	}
}

// NewBoardView は盤面の矩形範囲をビューにします
func NewBoardView(b *game.Board, r game.Rect, isGameOver bool) BoardView {
	if b == nil {
		return BoardView{Cells: []CellView{}}
	}
	return BoardView{
		Cells:      cellViews(b.Window(r), isGameOver),
		Generated:  b.Len(),
		Revealed:   b.RevealedCount(),
		Flags:      b.FlagCount(),
		IsGameOver: isGameOver,
	}
}

// JSON はビューを安全にJSON文字列にします
func JSON(v any) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(bytes)
}
