package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

type fakeExpirer struct {
	mu      sync.Mutex
	batches [][]model.Attempt
	calls   int
	err     error
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context, limit int) ([]model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.batches) == 0 {
		return nil, f.err
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	if len(b) > limit {
		b = b[:limit]
	}
	return b, nil
}

func attempts(ids ...int64) []model.Attempt {
	out := make([]model.Attempt, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Attempt{ID: id, TelegramID: id * 10, Status: model.StatusTimeout})
	}
	return out
}

func TestSweepDrainsFullBatches(t *testing.T) {
	exp := &fakeExpirer{batches: [][]model.Attempt{attempts(1, 2), attempts(3, 4), attempts(5)}}

	var notified []int64
	s := NewSweeper(exp, time.Second, 2, func(_ context.Context, a model.Attempt) {
		notified = append(notified, a.ID)
	})

	n, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 5 || len(notified) != 5 || exp.calls != 3 {
		t.Errorf("n=%d notified=%v calls=%d", n, notified, exp.calls)
	}
}

func TestSweepError(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("db is down")}
	s := NewSweeper(exp, time.Second, 10, nil)

	if _, err := s.Sweep(context.Background()); err == nil {
		t.Errorf("ожидалась ошибка")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	exp := &fakeExpirer{}
	s := NewSweeper(exp, 5*time.Millisecond, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}

	exp.mu.Lock()
	defer exp.mu.Unlock()
	if exp.calls == 0 {
		t.Errorf("за время работы не было ни одного прохода")
	}
}
