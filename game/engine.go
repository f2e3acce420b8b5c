package game

// Engine は Oracle・盤面・Revealer をまとめて所有します。
// 並行して呼び出すことはできません。呼び出し側で直列化してください。
type Engine struct {
	opts     Options
	board    *Board
	revealer *Revealer
}

// New は設定から新しいゲームを作ります
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	board := NewBoard(NewOracle(opts.Seed, opts.Density), opts.SafeThreshold)
	return &Engine{
		opts:     opts,
		board:    board,
		revealer: NewRevealer(board, opts.StepLimit, opts.IdleLimit, opts.Logger),
	}
}

// Options はデフォルトを補った設定を返します
func (e *Engine) Options() Options { return e.opts }

// Board は盤面を返します
func (e *Engine) Board() *Board { return e.board }

// Reveal は指定されたマスを開けます
func (e *Engine) Reveal(c Coord) Result {
	return e.revealer.Reveal(c)
}

// Query は生成済みのマスの状態を返します
func (e *Engine) Query(c Coord) (CellState, bool) {
	return e.board.Query(c)
}

// ToggleFlag はフラグを切り替え、切り替え後の状態を返します
func (e *Engine) ToggleFlag(c Coord) (CellState, bool) {
	ok := e.board.ToggleFlag(c)
	state, _ := e.board.Query(c)
	return state, ok
}
