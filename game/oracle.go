package game

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Oracle は座標から地雷の有無を決める純粋関数です。
// 状態を持たないので、どの順番・どのゴルーチンから呼んでも同じ結果になります。
type Oracle struct {
	seed    uint64
	density uint64
}

// NewOracle はシードと密度の除数 N から Oracle を作ります
func NewOracle(seed uint64, density int) Oracle {
	if density < 1 {
		density = DefaultDensity
	}
	return Oracle{seed: seed, density: uint64(density)}
}

// Density は密度の除数 N を返します
func (o Oracle) Density() int { return int(o.density) }

// Seed はシードを返します
func (o Oracle) Seed() uint64 { return o.seed }

// IsBomb は座標に地雷があるかどうかを返します。原点は常に安全です。
func (o Oracle) IsBomb(c Coord) bool {
	if c == Origin {
		return false
	}
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], o.seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(c.X))
	binary.LittleEndian.PutUint64(buf[16:], uint64(c.Y))
	return xxhash.Sum64(buf[:])%o.density == 0
}

// NeighborCount は周囲8マスの地雷数を Oracle から直接数えます。
// 周囲のマスが生成済みかどうかには依存しません。
func (o Oracle) NeighborCount(c Coord) uint8 {
	var n uint8
	for _, nb := range c.Neighbors() {
		if o.IsBomb(nb) {
			n++
		}
	}
	return n
}
