package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/sqlite"
)

const (
	owner    int64 = 100
	stranger int64 = 200
)

// clock ручные часы для сценариев с дедлайном
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = epoch.Add(offset)
}

var epoch = time.Unix(1_700_000_000, 0)

type fixture struct {
	store *sqlite.Store
	clock *clock
	svc   *AttemptService
	test  model.Test
}

// newFixture тест из двух вопросов на 60 секунд с ответами A и B
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for _, id := range []int64{owner, stranger} {
		if _, err := store.CreateUser(ctx, model.User{TelegramID: id, FullName: "User"}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	test, err := store.CreateTest(ctx, model.Test{PublicID: "T12345", Title: "Scenario", DurationSec: 60, IsActive: true, CreatedBy: owner})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	for i, correct := range []string{"A", "B"} {
		_, err := store.AddQuestion(ctx, model.Question{
			TestID: test.ID, OrderIndex: i + 1, Text: "Question", Options: [4]string{"w", "x", "y", "z"}, Correct: correct,
		})
		if err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
	}

	c := &clock{now: epoch}
	return &fixture{
		store: store,
		clock: c,
		svc:   NewAttemptService(store, store, store, WithClock(c.Now)),
		test:  test,
	}
}

func (f *fixture) start(t *testing.T) Started {
	t.Helper()
	started, err := f.svc.StartAttempt(context.Background(), "t12345", owner)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	return started
}

func TestScenarioFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	if started.First.OrderIndex != 1 || started.Attempt.Total != 2 || started.Attempt.Status != model.StatusInProgress {
		t.Fatalf("неожиданный старт %+v", started)
	}

	f.clock.Set(5 * time.Second)
	out, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "a", owner)
	if err != nil {
		t.Fatalf("SubmitAnswer Q1: %v", err)
	}
	if out.Kind != OutcomeNext || out.Next == nil || out.Next.OrderIndex != 2 {
		t.Fatalf("ожидался второй вопрос, получено %+v", out)
	}

	f.clock.Set(10 * time.Second)
	out, err = f.svc.SubmitAnswer(ctx, started.Attempt.ID, 2, "B", owner)
	if err != nil {
		t.Fatalf("SubmitAnswer Q2: %v", err)
	}
	a := out.Attempt
	if out.Kind != OutcomeFinished || a.Score != 2 || a.Total != 2 || a.Percent != 100 || a.TimeSpentSec != 10 {
		t.Fatalf("ожидалось Finished{2,2,100,10}, получено %s %+v", out.Kind, a)
	}
}

func TestScenarioTimeout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	f.clock.Set(61 * time.Second)
	out, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	a := out.Attempt
	if out.Kind != OutcomeTimeout || a.Score != 0 || a.Total != 2 || a.Percent != 0 || a.TimeSpentSec != 61 {
		t.Fatalf("ожидалось Timeout{0,2,0,61}, получено %s %+v", out.Kind, a)
	}

	// ответ после дедлайна не записан
	answers, err := f.store.CountAnswers(ctx, started.Attempt.ID)
	if err != nil {
		t.Fatalf("CountAnswers: %v", err)
	}
	if answers != 0 {
		t.Errorf("ответ после дедлайна записан: %d", answers)
	}
}

func TestDeadlineIsInclusive(t *testing.T) {
	f := newFixture(t)
	started := f.start(t)

	f.clock.Set(60 * time.Second)
	out, err := f.svc.SubmitAnswer(context.Background(), started.Attempt.ID, 1, "A", owner)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if out.Kind != OutcomeNext {
		t.Errorf("ровно на дедлайне ответ принимается, получено %s", out.Kind)
	}
}

func TestScenarioDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	_, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "C", owner)
	if !errors.Is(err, model.ErrAlreadyAnswered) {
		t.Fatalf("ожидалась ErrAlreadyAnswered, получено %v", err)
	}
	got, _ := f.store.GetAttempt(ctx, started.Attempt.ID)
	if got.Score != 1 {
		t.Errorf("score изменился: %d", got.Score)
	}
}

func TestConcurrentDuplicateSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		already int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, model.ErrAlreadyAnswered):
				already++
			default:
				t.Errorf("SubmitAnswer: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 || already != n-1 {
		t.Fatalf("успешных %d, AlreadyAnswered %d", success, already)
	}
	got, _ := f.store.GetAttempt(ctx, started.Attempt.ID)
	if got.Score != 1 {
		t.Errorf("score = %d, ожидалось 1", got.Score)
	}
}

func TestConcurrentLastAnswerFinalizesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)
	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	const n = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		finished int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 2, "B", owner)
			if err == nil && out.Kind == OutcomeFinished {
				mu.Lock()
				finished++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if finished != 1 {
		t.Fatalf("финализаций %d, ожидалась одна", finished)
	}
}

func TestForbiddenAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", stranger); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("чужая попытка: ожидалась Forbidden, получено %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, 9999, 1, "A", owner); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("несуществующая попытка: ожидалась NotFound, получено %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 7, "A", owner); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("индекс вне диапазона: ожидалась NotFound, получено %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "E", owner); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("буква E: ожидалась InvalidInput, получено %v", err)
	}

	got, _ := f.store.GetAttempt(ctx, started.Attempt.ID)
	if got.Score != 0 || got.Status != model.StatusInProgress {
		t.Errorf("ошибочные вызовы изменили попытку: %+v", got)
	}
}

func TestTerminalAttemptRejectsAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	f.clock.Set(61 * time.Second)
	first, _ := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner)

	f.clock.Set(120 * time.Second)
	out, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner)
	if !errors.Is(err, model.ErrAttemptClosed) {
		t.Fatalf("ожидалась ErrAttemptClosed, получено %v", err)
	}
	if out.Kind != OutcomeTimeout {
		t.Errorf("ожидался статус timeout, получено %s", out.Kind)
	}

	got, _ := f.store.GetAttempt(ctx, started.Attempt.ID)
	if got.TimeSpentSec != first.Attempt.TimeSpentSec || !got.FinishedAt.Equal(*first.Attempt.FinishedAt) {
		t.Errorf("терминальная попытка изменилась: %+v", got)
	}
}

func TestTotalIsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	_, err := f.store.AddQuestion(ctx, model.Question{
		TestID: f.test.ID, OrderIndex: 3, Text: "Late", Options: [4]string{"w", "x", "y", "z"}, Correct: "C",
	})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	_, _ = f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner)
	out, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 2, "A", owner)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if out.Kind != OutcomeFinished || out.Attempt.Total != 2 || out.Attempt.Percent != 50 {
		t.Fatalf("total должен остаться 2: %s %+v", out.Kind, out.Attempt)
	}

	// новая попытка видит три вопроса
	again := f.start(t)
	if again.Attempt.Total != 3 {
		t.Errorf("новая попытка total = %d", again.Attempt.Total)
	}
}

func TestStartAttemptErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartAttempt(ctx, "T00000", owner); !errors.Is(err, model.ErrTestNotFound) {
		t.Errorf("неизвестный тест: %v", err)
	}
	if _, err := f.svc.StartAttempt(ctx, "T12345", 555); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("незарегистрированный пользователь: %v", err)
	}

	if err := f.store.SetTestActive(ctx, f.test.ID, false); err != nil {
		t.Fatalf("SetTestActive: %v", err)
	}
	if _, err := f.svc.StartAttempt(ctx, "T12345", owner); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("неактивный тест: %v", err)
	}

	if _, err := f.store.CreateTest(ctx, model.Test{PublicID: "T55555", Title: "Empty", DurationSec: 60, IsActive: true, CreatedBy: owner}); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if _, err := f.svc.StartAttempt(ctx, "T55555", owner); !errors.Is(err, model.ErrEmptyTest) {
		t.Errorf("пустой тест: %v", err)
	}
}

// Тест с пропуском в нумерации (1, 2, 4) не стартует и не оставляет попытки
func TestStartAttemptRejectsNumberingGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddQuestion(ctx, model.Question{
		TestID: f.test.ID, OrderIndex: 4, Text: "Gap", Options: [4]string{"w", "x", "y", "z"}, Correct: "D",
	})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	if _, err := f.svc.StartAttempt(ctx, "T12345", owner); !errors.Is(err, model.ErrQuestionNotFound) {
		t.Fatalf("ожидалась ErrQuestionNotFound, получено %v", err)
	}
	if got, _ := f.store.GetAttempt(ctx, 1); got != nil {
		t.Errorf("попытка не должна создаваться: %+v", got)
	}

	// после заполнения пропуска тест проходится до конца
	_, err = f.store.AddQuestion(ctx, model.Question{
		TestID: f.test.ID, OrderIndex: 3, Text: "Filled", Options: [4]string{"w", "x", "y", "z"}, Correct: "C",
	})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	started := f.start(t)
	if started.Attempt.Total != 4 {
		t.Fatalf("total = %d", started.Attempt.Total)
	}
	var out Outcome
	for i, letter := range []string{"A", "B", "C", "D"} {
		out, err = f.svc.SubmitAnswer(ctx, started.Attempt.ID, i+1, letter, owner)
		if err != nil {
			t.Fatalf("SubmitAnswer(%d): %v", i+1, err)
		}
	}
	if out.Kind != OutcomeFinished || out.Attempt.Score != 4 {
		t.Errorf("ожидалось завершение 4/4: %s %+v", out.Kind, out.Attempt)
	}
}

func TestGetCurrentQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	q, err := f.svc.GetCurrentQuestion(ctx, started.Attempt.ID, 2)
	if err != nil || q.OrderIndex != 2 || q.Correct != "B" {
		t.Fatalf("GetCurrentQuestion: %+v, %v", q, err)
	}
	if _, err := f.svc.GetCurrentQuestion(ctx, started.Attempt.ID, 3); !errors.Is(err, model.ErrQuestionNotFound) {
		t.Errorf("ожидалась ErrQuestionNotFound, получено %v", err)
	}
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	f.clock.Set(30 * time.Second)
	expired, err := f.svc.ExpireOverdue(ctx, 10)
	if err != nil || len(expired) != 0 {
		t.Fatalf("до дедлайна ничего не истекает: %v, %v", expired, err)
	}

	f.clock.Set(90 * time.Second)
	expired, err = f.svc.ExpireOverdue(ctx, 10)
	if err != nil {
		t.Fatalf("ExpireOverdue: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != started.Attempt.ID || expired[0].Status != model.StatusTimeout {
		t.Fatalf("ожидалась одна попытка timeout: %+v", expired)
	}

	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 1, "A", owner); !errors.Is(err, model.ErrAttemptClosed) {
		t.Errorf("после истечения ответ должен отклоняться: %v", err)
	}
}

func TestJumpAheadIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)

	if _, err := f.svc.SubmitAnswer(ctx, started.Attempt.ID, 2, "B", owner); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("прыжок через вопрос: ожидалась NotFound, получено %v", err)
	}
	answers, _ := f.store.CountAnswers(ctx, started.Attempt.ID)
	if answers != 0 {
		t.Errorf("прыжок записал ответ")
	}
}
