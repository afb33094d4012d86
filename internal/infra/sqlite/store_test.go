package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
	})
	return store
}

// seedTest создает пользователя-автора и тест с n вопросами, правильный ответ всегда A
func seedTest(t *testing.T, s *Store, publicID string, n int) model.Test {
	t.Helper()
	ctx := context.Background()

	test, err := s.CreateTest(ctx, model.Test{PublicID: publicID, Title: "Go basics", DurationSec: 60, IsActive: true, CreatedBy: 1})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	for i := 1; i <= n; i++ {
		_, err := s.AddQuestion(ctx, model.Question{
			TestID: test.ID, OrderIndex: i, Text: "Q", Options: [4]string{"a", "b", "c", "d"}, Correct: "A",
		})
		if err != nil {
			t.Fatalf("AddQuestion %d: %v", i, err)
		}
	}
	return test
}

func seedUser(t *testing.T, s *Store, telegramID int64, name string) {
	t.Helper()
	if _, err := s.CreateUser(context.Background(), model.User{TelegramID: telegramID, FullName: name}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestCreateUserTwice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	phone := "+100"

	u, err := s.CreateUser(ctx, model.User{TelegramID: 42, FullName: "Ann Lee", Phone: &phone})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Errorf("id не выставлен")
	}
	if _, err := s.CreateUser(ctx, model.User{TelegramID: 42, FullName: "Other"}); !errors.Is(err, model.ErrAlreadyRegistered) {
		t.Fatalf("ожидалась ErrAlreadyRegistered, получено %v", err)
	}

	got, err := s.GetUserByTelegramID(ctx, 42)
	if err != nil || got == nil {
		t.Fatalf("GetUserByTelegramID: %v, %v", got, err)
	}
	if got.FullName != "Ann Lee" || got.Phone == nil || *got.Phone != phone {
		t.Errorf("неожиданный пользователь %+v", got)
	}

	ok, err := s.UpdateUserRoles(ctx, 42, true, false)
	if err != nil || !ok {
		t.Fatalf("UpdateUserRoles: %v, %v", ok, err)
	}
	got, _ = s.GetUserByTelegramID(ctx, 42)
	if !got.IsAdmin || got.IsSuperAdmin {
		t.Errorf("флаги не обновились: %+v", got)
	}
	if ok, _ := s.UpdateUserRoles(ctx, 7, true, true); ok {
		t.Errorf("для отсутствующего пользователя ожидался false")
	}
}

func TestDuplicateKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	test := seedTest(t, s, "T10001", 1)

	if _, err := s.CreateTest(ctx, model.Test{PublicID: "T10001", Title: "dup", DurationSec: 60, CreatedBy: 1}); !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("ожидался ErrDuplicate для public_id, получено %v", err)
	}
	_, err := s.AddQuestion(ctx, model.Question{TestID: test.ID, OrderIndex: 1, Text: "x", Correct: "B"})
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("ожидался ErrDuplicate для order_index, получено %v", err)
	}
}

func TestRecordAnswerOncePerQuestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 5, "Bob Stone")
	test := seedTest(t, s, "T10002", 2)
	q, _ := s.GetQuestionByIndex(ctx, test.ID, 1)

	a, err := s.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 5, StartedAt: time.Now(), Total: 2, Status: model.StatusInProgress})
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordAnswer(ctx, model.Answer{AttemptID: a.ID, QuestionID: q.ID, Chosen: "A", IsCorrect: true})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, model.ErrAlreadyAnswered):
				dups++
			default:
				t.Errorf("RecordAnswer: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || dups != n-1 {
		t.Fatalf("успешных %d, повторов %d", ok, dups)
	}
	got, _ := s.GetAttempt(ctx, a.ID)
	if got.Score != 1 {
		t.Errorf("score = %d, ожидалось 1", got.Score)
	}
}

func TestFinalizeOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 5, "Bob Stone")
	test := seedTest(t, s, "T10003", 1)
	start := time.Unix(1_700_000_000, 0)

	a, _ := s.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 5, StartedAt: start, Total: 1, Status: model.StatusInProgress})

	done, err := s.FinalizeAttempt(ctx, a.ID, model.StatusTimeout, start.Add(61*time.Second))
	if err != nil {
		t.Fatalf("FinalizeAttempt: %v", err)
	}
	if done.Status != model.StatusTimeout || done.TimeSpentSec != 61 {
		t.Errorf("неожиданная попытка %+v", done)
	}

	again, err := s.FinalizeAttempt(ctx, a.ID, model.StatusFinished, start.Add(90*time.Second))
	if !errors.Is(err, model.ErrAttemptClosed) {
		t.Fatalf("ожидалась ErrAttemptClosed, получено %v", err)
	}
	if again.Status != model.StatusTimeout || again.TimeSpentSec != 61 {
		t.Errorf("терминальная попытка изменилась: %+v", again)
	}

	if _, err := s.RecordAnswer(ctx, model.Answer{AttemptID: a.ID, QuestionID: 1, Chosen: "A"}); !errors.Is(err, model.ErrAttemptClosed) {
		t.Errorf("ответ в закрытую попытку: %v", err)
	}
	if _, err := s.FinalizeAttempt(ctx, 999, model.StatusFinished, start); !errors.Is(err, model.ErrAttemptNotFound) {
		t.Errorf("ожидалась ErrAttemptNotFound, получено %v", err)
	}
}

func TestDeleteTestCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 5, "Bob Stone")
	test := seedTest(t, s, "T10004", 3)
	q, _ := s.GetQuestionByIndex(ctx, test.ID, 1)

	for i := 0; i < 2; i++ {
		a, err := s.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 5, StartedAt: time.Now(), Total: 3, Status: model.StatusInProgress})
		if err != nil {
			t.Fatalf("CreateAttempt: %v", err)
		}
		if _, err := s.RecordAnswer(ctx, model.Answer{AttemptID: a.ID, QuestionID: q.ID, Chosen: "B"}); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}

	res, err := s.DeleteTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	if res.QuestionsDeleted != 3 || res.AttemptsDeleted != 2 {
		t.Errorf("результат удаления %+v", res)
	}

	var answers int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM answers").Scan(&answers); err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answers != 0 {
		t.Errorf("ответы не удалились каскадом: %d", answers)
	}
	if got, _ := s.GetTestByPublicID(ctx, "T10004"); got != nil {
		t.Errorf("тест не удален")
	}
}

func TestResultsExcludeInProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 5, "Bob Stone")
	test := seedTest(t, s, "T10005", 1)
	start := time.Unix(1_700_000_000, 0)

	var ids []int64
	for i := 0; i < 3; i++ {
		a, _ := s.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 5, StartedAt: start, Total: 1, Status: model.StatusInProgress})
		ids = append(ids, a.ID)
	}
	_, _ = s.FinalizeAttempt(ctx, ids[0], model.StatusFinished, start.Add(time.Second))
	_, _ = s.FinalizeAttempt(ctx, ids[2], model.StatusTimeout, start.Add(2*time.Second))

	mine, err := s.ListUserResults(ctx, 5, 10)
	if err != nil {
		t.Fatalf("ListUserResults: %v", err)
	}
	if len(mine) != 2 || mine[0].AttemptID != ids[2] || mine[1].AttemptID != ids[0] {
		t.Fatalf("ожидались две завершенные попытки, новые первыми: %+v", mine)
	}
	if mine[0].TestPublicID != "T10005" || mine[0].Status != model.StatusTimeout {
		t.Errorf("неожиданная строка %+v", mine[0])
	}

	solvers, err := s.ListTestResults(ctx, test.ID, 1, 1)
	if err != nil {
		t.Fatalf("ListTestResults: %v", err)
	}
	if len(solvers) != 1 || solvers[0].AttemptID != ids[0] || solvers[0].UserName != "Bob Stone" {
		t.Errorf("вторая страница по одному: %+v", solvers)
	}
}

func TestListOverdueAttempts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 5, "Bob Stone")
	test := seedTest(t, s, "T10006", 1)
	start := time.Unix(1_700_000_000, 0)

	a, _ := s.CreateAttempt(ctx, model.Attempt{TestID: test.ID, TelegramID: 5, StartedAt: start, Total: 1, Status: model.StatusInProgress})

	overdue, err := s.ListOverdueAttempts(ctx, start.Add(60*time.Second), 10)
	if err != nil {
		t.Fatalf("ListOverdueAttempts: %v", err)
	}
	if len(overdue) != 0 {
		t.Errorf("на дедлайне попытка еще не просрочена")
	}
	overdue, _ = s.ListOverdueAttempts(ctx, start.Add(61*time.Second), 10)
	if len(overdue) != 1 || overdue[0].ID != a.ID {
		t.Errorf("ожидалась одна просроченная попытка: %+v", overdue)
	}
}
