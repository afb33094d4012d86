package service

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	attemptsService "github.com/IT-Nick/quizbot/internal/domain/attempts/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/sqlite"
)

const admin int64 = 1

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "tests.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var options = [4]string{"one", "two", "three", "four"}

func TestGeneratePublicIDFormat(t *testing.T) {
	re := regexp.MustCompile(`^T[1-9][0-9]{4}$`)
	for i := 0; i < 200; i++ {
		id, err := GeneratePublicID()
		if err != nil {
			t.Fatalf("GeneratePublicID: %v", err)
		}
		if !re.MatchString(id) {
			t.Fatalf("неверный формат %q", id)
		}
	}
}

func TestCreateTestValidation(t *testing.T) {
	svc := NewTestService(newTestStore(t))
	ctx := context.Background()

	cases := []struct {
		name     string
		title    string
		minutes  int
		count    int
		wantKind error
	}{
		{"короткое название", "ab", 10, 5, model.ErrInvalidInput},
		{"ноль минут", "Go basics", 0, 5, model.ErrInvalidInput},
		{"больше 300 минут", "Go basics", 301, 5, model.ErrInvalidInput},
		{"ноль вопросов", "Go basics", 10, 0, model.ErrInvalidInput},
		{"больше 200 вопросов", "Go basics", 10, 201, model.ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.CreateTest(ctx, admin, true, c.title, c.minutes, c.count); !errors.Is(err, c.wantKind) {
				t.Errorf("ожидалась %v, получено %v", c.wantKind, err)
			}
		})
	}

	if _, err := svc.CreateTest(ctx, 7, false, "Go basics", 10, 5); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("без прав: ожидалась Forbidden, получено %v", err)
	}

	test, err := svc.CreateTest(ctx, admin, true, "  Go basics  ", 300, 200)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if test.Title != "Go basics" || test.DurationSec != 18000 || !test.IsActive || !strings.HasPrefix(test.PublicID, "T") {
		t.Errorf("неожиданный тест %+v", test)
	}
}

func TestCreateTestRetriesOnCollision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.CreateTest(ctx, model.Test{PublicID: "T11111", Title: "taken", DurationSec: 60, CreatedBy: admin}); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	ids := []string{"T11111", "T11111", "T22222"}
	calls := 0
	svc := NewTestService(store, WithPublicIDGenerator(func() (string, error) {
		id := ids[calls]
		calls++
		return id, nil
	}))

	test, err := svc.CreateTest(ctx, admin, true, "Second", 5, 1)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if test.PublicID != "T22222" || calls != 3 {
		t.Errorf("public_id %q после %d попыток", test.PublicID, calls)
	}

	always := NewTestService(store, WithPublicIDGenerator(func() (string, error) { return "T11111", nil }))
	if _, err := always.CreateTest(ctx, admin, true, "Third", 5, 1); err == nil {
		t.Errorf("ожидалась ошибка после исчерпания попыток")
	}
}

func TestAddQuestion(t *testing.T) {
	svc := NewTestService(newTestStore(t))
	ctx := context.Background()
	test, err := svc.CreateTest(ctx, admin, true, "Go basics", 10, 2)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	q, err := svc.AddQuestion(ctx, strings.ToLower(test.PublicID), 1, "What is Go?", options, "b")
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if q.Correct != "B" || q.OrderIndex != 1 || q.TestID != test.ID {
		t.Errorf("неожиданный вопрос %+v", q)
	}

	if _, err := svc.AddQuestion(ctx, test.PublicID, 1, "Again", options, "A"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("повтор номера: ожидалась InvalidInput, получено %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 2, "x", options, "A"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("короткий текст: %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 2, "Fine text", options, "E"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("буква E: %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 2, "Fine text", [4]string{"a", " ", "c", "d"}, "A"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("пустой вариант: %v", err)
	}
	if _, err := svc.AddQuestion(ctx, "T00000", 2, "Fine text", options, "A"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("неизвестный тест: %v", err)
	}
}

// Номер вопроса принимается только следующим за последним, пропуски запрещены
func TestAddQuestionRequiresNextIndex(t *testing.T) {
	store := newTestStore(t)
	svc := NewTestService(store)
	ctx := context.Background()
	test, err := svc.CreateTest(ctx, admin, true, "Numbering", 10, 3)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	if _, err := svc.AddQuestion(ctx, test.PublicID, 2, "Second first", options, "A"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("первым должен идти номер 1: %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 1, "Question one", options, "A"); err != nil {
		t.Fatalf("AddQuestion(1): %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 3, "Question three", options, "A"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("пропуск номера 2: ожидалась InvalidInput, получено %v", err)
	}
	if _, err := svc.AddQuestion(ctx, test.PublicID, 2, "Question two", options, "B"); err != nil {
		t.Fatalf("AddQuestion(2): %v", err)
	}

	count, err := store.CountQuestions(ctx, test.ID)
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	last, err := store.MaxQuestionIndex(ctx, test.ID)
	if err != nil {
		t.Fatalf("MaxQuestionIndex: %v", err)
	}
	if count != 2 || last != 2 {
		t.Errorf("ожидались вопросы 1..2, count=%d max=%d", count, last)
	}
}

// Удаление теста с тремя вопросами и двумя попытками
func TestDeleteTestScenario(t *testing.T) {
	store := newTestStore(t)
	svc := NewTestService(store)
	engine := attemptsService.NewAttemptService(store, store, store)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, model.User{TelegramID: 10, FullName: "Taker"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	test, err := svc.CreateTest(ctx, admin, true, "Deletable", 10, 3)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := svc.AddQuestion(ctx, test.PublicID, i, "Question text", options, "A"); err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := engine.StartAttempt(ctx, test.PublicID, 10); err != nil {
			t.Fatalf("StartAttempt: %v", err)
		}
	}

	if _, err := svc.DeleteTest(ctx, test.PublicID, 10, false); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("без прав: ожидалась Forbidden, получено %v", err)
	}

	res, err := svc.DeleteTest(ctx, test.PublicID, admin, true)
	if err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	if res.QuestionsDeleted != 3 || res.AttemptsDeleted != 2 {
		t.Errorf("ожидалось {3, 2}, получено %+v", res)
	}

	if _, err := engine.StartAttempt(ctx, test.PublicID, 10); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("после удаления: ожидалась NotFound, получено %v", err)
	}
	if _, err := svc.DeleteTest(ctx, test.PublicID, admin, true); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("повторное удаление: ожидалась NotFound, получено %v", err)
	}
}

func TestSetActiveAndList(t *testing.T) {
	svc := NewTestService(newTestStore(t))
	ctx := context.Background()

	first, _ := svc.CreateTest(ctx, admin, true, "First", 10, 1)
	second, _ := svc.CreateTest(ctx, admin, true, "Second", 10, 1)
	if _, err := svc.AddQuestion(ctx, second.PublicID, 1, "Question", options, "C"); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	got, err := svc.SetActive(ctx, first.PublicID, true, false)
	if err != nil || got.IsActive {
		t.Fatalf("SetActive: %+v, %v", got, err)
	}

	list, err := svc.ListTests(ctx, 10)
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(list) != 2 || list[0].PublicID != second.PublicID || list[0].QuestionCount != 1 || list[1].IsActive {
		t.Errorf("неожиданный список %+v", list)
	}
}
