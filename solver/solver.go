package solver

import (
	"math/rand"
	"time"

	"infinisweeper/game"
)

type MoveType int

const (
	MoveOpen MoveType = iota
	MoveFlag
)

func (t MoveType) String() string {
	if t == MoveFlag {
		return "flag"
	}
	return "open"
}

type Move struct {
	X, Y       int64
	Type       MoveType
	IsGuess    bool    // 運任せかどうか
	Strategy   string  // "Logic", "Random"
	Confidence float64 // 0.0 ~ 1.0 (安全確率)
}

// Coord は手の座標を返します
func (m *Move) Coord() game.Coord { return game.Coord{X: m.X, Y: m.Y} }

// Solver は生成済みの盤面から次の一手を探します。
// 盤面は無限なので、開いている数字マスの周りだけを見ます。
type Solver struct {
	Board *game.Board
	rng   *rand.Rand
}

func New(b *game.Board) *Solver {
	return NewWithRand(b, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand は乱数源を指定して Solver を作ります
func NewWithRand(b *game.Board, rng *rand.Rand) *Solver {
	return &Solver{Board: b, rng: rng}
}

func (s *Solver) NextMove() *Move {
	// 1. 論理的に「絶対に安全」
	if move := s.findSafeMove(); move != nil {
		move.Strategy = "Logic"
		move.Confidence = 1.0
		return move
	}

	// 2. 論理的に「絶対に地雷」
	if move := s.findFlagMove(); move != nil {
		move.Strategy = "Logic"
		move.Confidence = 1.0
		return move
	}

	// 3. ランダム
	move := s.findRandomMove()
	if move != nil {
		move.IsGuess = true
	}
	return move
}

// clues は開いている数字マスを行優先の順で返します
func (s *Solver) clues() []game.CellState {
	var out []game.CellState
	for _, c := range s.Board.Coords() {
		cell, _ := s.Board.Query(c)
		if cell.Revealed && !cell.IsBomb && cell.NeighborCount > 0 {
			out = append(out, cell)
		}
	}
	return out
}

func (s *Solver) findSafeMove() *Move {
	for _, cell := range s.clues() {
		_, mines, hidden := s.getNeighborsInfo(cell.Coord)
		if mines == int(cell.NeighborCount) && len(hidden) > 0 {
			target := hidden[0]
			return &Move{X: target.X, Y: target.Y, Type: MoveOpen}
		}
	}
	return nil
}

func (s *Solver) findFlagMove() *Move {
	for _, cell := range s.clues() {
		totalHidden, _, hidden := s.getNeighborsInfo(cell.Coord)
		if totalHidden == int(cell.NeighborCount) && len(hidden) > 0 {
			target := hidden[0]
			return &Move{X: target.X, Y: target.Y, Type: MoveFlag}
		}
	}
	return nil
}

// findRandomMove は数字マスに接している未開封マスから1つ選びます
func (s *Solver) findRandomMove() *Move {
	var border, rest []game.Coord
	for _, c := range s.Board.Coords() {
		cell, _ := s.Board.Query(c)
		if cell.Revealed || cell.Flagged {
			continue
		}
		if s.touchesRevealed(c) {
			border = append(border, c)
		} else {
			rest = append(rest, c)
		}
	}

	candidates := border
	if len(candidates) == 0 {
		candidates = rest
	}
	if len(candidates) == 0 {
		return nil
	}
	choice := candidates[s.rng.Intn(len(candidates))]
	return &Move{
		X: choice.X, Y: choice.Y,
		Type:       MoveOpen,
		Strategy:   "Random",
		Confidence: 0.0,
	}
}

func (s *Solver) touchesRevealed(c game.Coord) bool {
	for _, nb := range c.Neighbors() {
		if cell, ok := s.Board.Query(nb); ok && cell.Revealed {
			return true
		}
	}
	return false
}

// getNeighborsInfo は周囲の未開封マス数（旗・開いた地雷を含む）、
// 地雷と分かっているマス数、旗のない未開封マスを返します。
// 未生成のマスは未開封として数えます。
func (s *Solver) getNeighborsInfo(c game.Coord) (totalHidden int, mines int, hiddenList []game.Coord) {
	for _, nb := range c.Neighbors() {
		cell, ok := s.Board.Query(nb)
		switch {
		case !ok:
			totalHidden++
			hiddenList = append(hiddenList, nb)
		case cell.Revealed && cell.IsBomb:
			totalHidden++
			mines++
		case cell.Revealed:
		case cell.Flagged:
			totalHidden++
			mines++
		default:
			totalHidden++
			hiddenList = append(hiddenList, nb)
		}
	}
	return
}

// Apply は手を盤面に反映します
func Apply(e *game.Engine, m *Move) game.Result {
	if m.Type == MoveFlag {
		state, ok := e.ToggleFlag(m.Coord())
		if !ok {
			return game.Result{}
		}
		return game.Result{Cells: []game.CellState{state}}
	}
	return e.Reveal(m.Coord())
}
