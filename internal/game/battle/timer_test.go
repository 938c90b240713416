package battle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cory-johannsen/evolution/internal/game/battle"
)

func TestSettleTimer_Fires(t *testing.T) {
	var called atomic.Int32
	st := battle.NewSettleTimer(20*time.Millisecond, func() {
		called.Add(1)
	})
	_ = st
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestSettleTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	st := battle.NewSettleTimer(50*time.Millisecond, func() {
		called.Add(1)
	})
	st.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestSettleTimer_StopAfterFireIsHarmless(t *testing.T) {
	var called atomic.Int32
	st := battle.NewSettleTimer(5*time.Millisecond, func() {
		called.Add(1)
	})
	time.Sleep(30 * time.Millisecond)
	st.Stop()
	st.Stop()
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}
