package service

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/sqlite"
)

// seed тест T20000 с одним вопросом и n завершенными попытками пользователя 7 плюс одна незавершенная
func seed(t *testing.T, n int) (*sqlite.Store, []int64) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.CreateUser(ctx, model.User{TelegramID: 7, FullName: "Solver One"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	test, err := store.CreateTest(ctx, model.Test{PublicID: "T20000", Title: "Report", DurationSec: 60, IsActive: true, CreatedBy: 1})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	start := time.Unix(1_700_000_000, 0)
	var finished []int64
	for i := 0; i < n; i++ {
		a, err := store.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 7, StartedAt: start, Total: 1, Status: model.StatusInProgress})
		if err != nil {
			t.Fatalf("CreateAttempt: %v", err)
		}
		if _, err := store.FinalizeAttempt(ctx, a.ID, model.StatusFinished, start.Add(time.Duration(i+1)*time.Second)); err != nil {
			t.Fatalf("FinalizeAttempt: %v", err)
		}
		finished = append(finished, a.ID)
	}
	if _, err := store.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 7, StartedAt: start, Total: 1, Status: model.StatusInProgress}); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	return store, finished
}

func TestListMyResults(t *testing.T) {
	store, ids := seed(t, 3)
	svc := NewReportService(store, store)

	got, err := svc.ListMyResults(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("ListMyResults: %v", err)
	}
	if len(got) != 2 || got[0].AttemptID != ids[2] || got[1].AttemptID != ids[1] {
		t.Fatalf("ожидались две последние завершенные попытки: %+v", got)
	}
	if got[0].TestPublicID != "T20000" || got[0].TimeSpentSec != 3 || got[0].Status != model.StatusFinished {
		t.Errorf("неожиданная строка %+v", got[0])
	}

	all, _ := svc.ListMyResults(context.Background(), 7, 0)
	if len(all) != 3 {
		t.Errorf("незавершенная попытка попала в отчет: %d", len(all))
	}
}

func TestWhoSolvedPaging(t *testing.T) {
	store, ids := seed(t, 5)
	svc := NewReportService(store, store)
	ctx := context.Background()

	first, err := svc.WhoSolvedPage(ctx, "t20000", 0, 2)
	if err != nil {
		t.Fatalf("WhoSolvedPage: %v", err)
	}
	if len(first.Results) != 2 || !first.HasNext || first.Results[0].AttemptID != ids[4] {
		t.Errorf("первая страница %+v", first)
	}
	last, _ := svc.WhoSolvedPage(ctx, "T20000", 2, 2)
	if len(last.Results) != 1 || last.HasNext || last.Results[0].AttemptID != ids[0] {
		t.Errorf("последняя страница %+v", last)
	}
	if last.Results[0].UserName != "Solver One" || last.Results[0].TelegramID != 7 {
		t.Errorf("нет данных пользователя: %+v", last.Results[0])
	}

	list, err := svc.ListWhoSolved(ctx, "T20000", 0)
	if err != nil || len(list) != 5 {
		t.Errorf("ListWhoSolved: %d, %v", len(list), err)
	}
	if _, err := svc.ListWhoSolved(ctx, "T99999", 10); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("неизвестный тест: %v", err)
	}
}

// Номер страницы, при котором смещение не помещается в int32, отклоняется
func TestWhoSolvedPageOutOfRange(t *testing.T) {
	store, _ := seed(t, 1)
	svc := NewReportService(store, store)
	ctx := context.Background()

	for _, page := range []int{math.MaxInt32, math.MaxInt / 2, math.MaxInt32/MaxLimit + 1} {
		if _, err := svc.WhoSolvedPage(ctx, "T20000", page, MaxLimit); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("page %d: ожидалась InvalidInput, получено %v", page, err)
		}
	}

	edge, err := svc.WhoSolvedPage(ctx, "T20000", math.MaxInt32/MaxLimit, MaxLimit)
	if err != nil {
		t.Fatalf("последняя допустимая страница: %v", err)
	}
	if len(edge.Results) != 0 || edge.HasNext {
		t.Errorf("далекая страница должна быть пустой: %+v", edge)
	}
}
