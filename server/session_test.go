package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinisweeper/game"
)

func newEngine(string) *game.Engine {
	return game.New(game.Options{Seed: 1})
}

func TestSessionsCreateGetDelete(t *testing.T) {
	s := NewSessions(2)
	a, err := s.Create(newEngine)
	require.NoError(t, err)
	b, err := s.Create(newEngine)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = s.Create(newEngine)
	assert.ErrorIs(t, err, ErrTooManySessions)

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, s.Delete(a.ID))
	assert.False(t, s.Delete(a.ID))
	assert.Equal(t, 1, s.Len())
}

func TestSessionsConcurrentReveal(t *testing.T) {
	s := NewSessions(1)
	sess, err := s.Create(newEngine)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess.Mutex.Lock()
			defer sess.Mutex.Unlock()
			sess.Engine.Reveal(game.Coord{X: int64(i * 3), Y: int64(-i)})
		}(i)
	}
	wg.Wait()
	assert.Positive(t, sess.Engine.Board().Len())
}
