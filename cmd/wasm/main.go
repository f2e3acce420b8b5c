//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/sirupsen/logrus"

	"infinisweeper/game"
	"infinisweeper/solver"
	"infinisweeper/viewmodel"
)

// GameSession はゲームの状態を保持・管理します
type GameSession struct {
	engine   *game.Engine
	gameOver bool
}

var session = &GameSession{}

// NewGame は新しいゲームを開始し、原点を開けた結果を返します
func (s *GameSession) NewGame(seed uint64, density int) string {
	s.engine = game.New(game.Options{Seed: seed, Density: density, Logger: logrus.StandardLogger()})
	s.gameOver = false
	return s.reveal(game.Origin)
}

// Open は指定されたセルを開きます
func (s *GameSession) Open(x, y int64) string {
	if s.engine == nil || s.gameOver {
		return ""
	}
	return s.reveal(game.Coord{X: x, Y: y})
}

func (s *GameSession) reveal(c game.Coord) string {
	res := s.engine.Reveal(c)
	if res.HitMine() {
		s.gameOver = true
	}
	return viewmodel.JSON(viewmodel.NewRevealView(res, s.gameOver))
}

// ToggleFlag はフラグを切り替えます
func (s *GameSession) ToggleFlag(x, y int64) string {
	if s.engine == nil || s.gameOver {
		return ""
	}
	state, _ := s.engine.ToggleFlag(game.Coord{X: x, Y: y})
	return viewmodel.JSON(viewmodel.NewCellView(state, false))
}

// 盤面取得で許す1辺のマス数
const maxWindow = 256

// Window は画面に見えている範囲の盤面を返します
func (s *GameSession) Window(x0, y0, x1, y1 int64) string {
	if s.engine == nil {
		return ""
	}
	r := game.NewRect(game.Coord{X: x0, Y: y0}, game.Coord{X: x1, Y: y1})
	if dx, dy, _ := r.Span(); dx >= maxWindow || dy >= maxWindow {
		return ""
	}
	return viewmodel.JSON(viewmodel.NewBoardView(s.engine.Board(), r, s.gameOver))
}

// BotStep はBotに1手進めさせます
func (s *GameSession) BotStep() string {
	if s.engine == nil || s.gameOver {
		return ""
	}

	move := solver.New(s.engine.Board()).NextMove()
	if move == nil {
		return viewmodel.JSON(viewmodel.NewRevealView(game.Result{}, false)) // 打つ手なし
	}
	res := solver.Apply(s.engine, move)
	if res.HitMine() {
		s.gameOver = true
	}
	return viewmodel.JSON(viewmodel.NewRevealView(res, s.gameOver))
}

func newGameWrapper(this js.Value, args []js.Value) interface{} {
	// デフォルト値
	seed, density := uint64(0), game.DefaultDensity

	// 引数があれば上書き (JS側から goNewGame(seed, density) と呼ばれる想定)
	if len(args) >= 2 {
		seed = uint64(args[0].Int())
		density = args[1].Int()
	}
	return session.NewGame(seed, density)
}

func openCellWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	return session.Open(int64(args[0].Int()), int64(args[1].Int()))
}

func toggleFlagWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	return session.ToggleFlag(int64(args[0].Int()), int64(args[1].Int()))
}

func windowWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	return session.Window(int64(args[0].Int()), int64(args[1].Int()), int64(args[2].Int()), int64(args[3].Int()))
}

func botStepWrapper(this js.Value, args []js.Value) interface{} {
	return session.BotStep()
}

func main() {
	c := make(chan struct{})

	js.Global().Set("goNewGame", js.FuncOf(newGameWrapper))
	js.Global().Set("goOpenCell", js.FuncOf(openCellWrapper))
	js.Global().Set("goToggleFlag", js.FuncOf(toggleFlagWrapper))
	js.Global().Set("goWindow", js.FuncOf(windowWrapper))
	js.Global().Set("goBotStep", js.FuncOf(botStepWrapper))

	logrus.Info("Go WebAssembly Initialized (infinite board)")
	<-c
}
