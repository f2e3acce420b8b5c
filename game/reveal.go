package game

import (
	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

type workKind uint8

const (
	propagate    workKind = iota // 周囲を開けて連鎖を続ける
	frontierOnly                 // 周囲を隠れた状態で生成するだけ
)

type workItem struct {
	kind workKind
	at   Coord
}

// Result は1回の Reveal で変化したマスと、使った予算を持ちます
type Result struct {
	Cells     []CellState // 新しく生成された、または新しく開いたマス（最初に触れた順）
	Steps     int         // 展開した回数
	IdleSteps int         // 新しいマスを生まなかった展開の連続回数
	Truncated bool        // 予算切れで展開を打ち切ったか
}

// HitMine は地雷を開けてしまったかどうかを返します
func (r Result) HitMine() bool {
	for _, c := range r.Cells {
		if c.IsBomb && c.Revealed {
			return true
		}
	}
	return false
}

// Revealer は盤面に対して連鎖オープン（Flood Fill）を行います
type Revealer struct {
	board     *Board
	stepLimit int
	idleLimit int
	log       logrus.FieldLogger
}

// NewRevealer は予算付きの Revealer を作ります
func NewRevealer(board *Board, stepLimit, idleLimit int, log logrus.FieldLogger) *Revealer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Revealer{board: board, stepLimit: stepLimit, idleLimit: idleLimit, log: log}
}

// touched は変化したマスを最初に触れた順で覚えます
type touched struct {
	seen  mapset.Set[Coord]
	order []Coord
}

func (t *touched) add(c Coord) {
	if t.seen.Has(c) {
		return
	}
	t.seen.Put(c)
	t.order = append(t.order, c)
}

// Reveal は origin を開け、周囲の地雷数が0の領域へ連鎖させます。
// 地雷を開けた場合はそのマスだけを返し、連鎖はしません。
// フラグ付きのマスや、展開し終えた開いているマスでは何もしません。
func (r *Revealer) Reveal(origin Coord) Result {
	b := r.board
	t := &touched{seen: mapset.New[Coord]()}

	existed, safe := b.Materialize(origin, true)
	if existed && !b.MarkRevealed(origin) {
		// 予算切れで残った縁の0マスからは連鎖を続けます
		if !safe || !b.cells[origin].Revealed || !r.pending(origin) {
			return Result{}
		}
	} else {
		t.add(origin)
		if b.cells[origin].IsBomb {
			return r.result(t, 0, 0, false)
		}
	}

	var queue deque.Deque[workItem]
	queued := mapset.New[Coord]()
	queued.Put(origin)
	if safe {
		queue.PushBack(workItem{kind: propagate, at: origin})
	} else {
		queue.PushBack(workItem{kind: frontierOnly, at: origin})
	}

	steps, idle := 0, 0
	truncated := false
	for queue.Len() > 0 {
		item := queue.PopFront()
		if item.kind == propagate && steps < r.stepLimit && idle < r.idleLimit {
			if r.expand(item.at, &queue, queued, t) {
				idle = 0
			} else {
				idle++
			}
			steps++
			continue
		}
		if item.kind == propagate {
			truncated = true
		}
		r.fringe(item.at, t)
	}

	if truncated {
		r.log.WithFields(logrus.Fields{
			"x":     origin.X,
			"y":     origin.Y,
			"steps": steps,
			"idle":  idle,
		}).Debug("reveal budget exhausted")
	}
	return r.result(t, steps, idle, truncated)
}

// expand は周囲8マスを開け、変化したマスをキューに積みます。
// 地雷は隠れたまま生成します。何かが変化したら true を返します。
func (r *Revealer) expand(at Coord, queue *deque.Deque[workItem], queued mapset.Set[Coord], t *touched) bool {
	b := r.board
	productive := false
	for _, nb := range at.Neighbors() {
		existed, safe := b.Materialize(nb, false)
		changed := !existed
		if !b.cells[nb].IsBomb && b.MarkRevealed(nb) {
			changed = true
		}
		if !changed {
			// 以前の Reveal が打ち切った縁は通り抜けて広げます
			if safe && b.cells[nb].Revealed && !queued.Has(nb) && r.pending(nb) {
				queued.Put(nb)
				queue.PushBack(workItem{kind: propagate, at: nb})
			}
			continue
		}
		productive = true
		t.add(nb)

		if queued.Has(nb) {
			continue
		}
		queued.Put(nb)
		if safe && b.cells[nb].Revealed {
			queue.PushBack(workItem{kind: propagate, at: nb})
		} else {
			queue.PushBack(workItem{kind: frontierOnly, at: nb})
		}
	}
	return productive
}

// pending は expand で変化する近傍が残っているかどうかを返します
func (r *Revealer) pending(at Coord) bool {
	for _, nb := range at.Neighbors() {
		cell, ok := r.board.cells[nb]
		if !ok || (!cell.IsBomb && !cell.Revealed && !cell.Flagged) {
			return true
		}
	}
	return false
}

// fringe は周囲8マスを隠れた状態で生成します
func (r *Revealer) fringe(at Coord, t *touched) {
	for _, nb := range at.Neighbors() {
		if existed, _ := r.board.Materialize(nb, false); !existed {
			t.add(nb)
		}
	}
}

func (r *Revealer) result(t *touched, steps, idle int, truncated bool) Result {
	cells := make([]CellState, 0, len(t.order))
	for _, c := range t.order {
		cells = append(cells, stateOf(c, r.board.cells[c]))
	}
	return Result{Cells: cells, Steps: steps, IdleSteps: idle, Truncated: truncated}
}
