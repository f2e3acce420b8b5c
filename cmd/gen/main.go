package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"infinisweeper/game"
	"infinisweeper/solver"
)

var log = logrus.New()

type options struct {
	games    int
	moves    int
	density  int
	filename string
	print    bool
}

func main() {
	var opts options
	flag.IntVar(&opts.games, "games", 10000, "number of bot games to play")
	flag.IntVar(&opts.moves, "moves", 300, "max bot moves per game")
	flag.IntVar(&opts.density, "density", game.DefaultDensity, "mine density divisor")
	flag.StringVar(&opts.filename, "out", "dataset.csv", "output csv file")
	flag.BoolVar(&opts.print, "print", false, "print the area around the origin after each game")
	flag.Parse()

	if err := run(opts); err != nil {
		log.WithError(err).Fatal("generation failed")
	}
}

func run(opts options) error {
	file, err := os.Create(opts.filename)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// CSVヘッダー: 周囲5x5マスの情報(25個) + 正解ラベル
	header := []string{}
	for i := 0; i < 25; i++ {
		header = append(header, fmt.Sprintf("cell_%d", i))
	}
	header = append(header, "is_mine")
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	log.WithField("games", opts.games).Info("generating data")
	rows := 0
	for i := 0; i < opts.games; i++ {
		n, err := playGameAndRecord(writer, opts, rand.Uint64())
		if err != nil {
			return err
		}
		rows += n
		if i%1000 == 0 {
			log.WithFields(logrus.Fields{"game": i, "rows": rows}).Debug("progress")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	log.WithFields(logrus.Fields{"file": opts.filename, "rows": rows}).Info("done")
	return nil
}

func playGameAndRecord(writer *csv.Writer, opts options, seed uint64) (int, error) {
	e := game.New(game.Options{Seed: seed, Density: opts.density, Logger: log})
	e.Reveal(game.Origin)

	bot := solver.New(e.Board())
	rows := 0
	for i := 0; i < opts.moves; i++ {
		move := bot.NextMove()
		if move == nil {
			break
		}

		// ★重要: 「運任せ（Guess）」の場面だけを記録する
		// ロジックで解ける場面を学習させても意味がないため
		if move.IsGuess {
			if err := recordState(writer, e, move.Coord()); err != nil {
				return rows, err
			}
			rows++
		}

		if solver.Apply(e, move).HitMine() {
			break // Game Over
		}
	}

	if opts.print {
		e.Board().DebugPrint(os.Stdout, game.Rect{
			Min: game.Coord{X: -20, Y: -10},
			Max: game.Coord{X: 20, Y: 10},
		})
		fmt.Println()
	}
	return rows, nil
}

func recordState(writer *csv.Writer, e *game.Engine, target game.Coord) error {
	row := []string{}

	// 対象マスを中心に 5x5 の情報を取得
	for dy := int64(-2); dy <= 2; dy++ {
		for dx := int64(-2); dx <= 2; dx++ {
			val := -1 // 未開封・未生成
			if cell, ok := e.Query(game.Coord{X: target.X + dx, Y: target.Y + dy}); ok {
				switch {
				case cell.Revealed:
					val = int(cell.NeighborCount) // 0-8
				case cell.Flagged:
					val = -2 // 旗
				}
			}
			row = append(row, strconv.Itoa(val))
		}
	}

	// 正解ラベル（0:安全, 1:地雷）
	label := "0"
	if e.Board().Oracle().IsBomb(target) {
		label = "1"
	}
	row = append(row, label)

	return errors.Wrap(writer.Write(row), "write row")
}
