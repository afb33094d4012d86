package session

import (
	"context"
	"fmt"
	"time"
)

// Step шаг диалога, на котором находится пользователь
type Step string

const (
	StepIdle Step = ""

	StepRegisterName  Step = "register_name"
	StepRegisterPhone Step = "register_phone"

	StepTakeTestID Step = "take_test_id"

	StepCreateTitle    Step = "create_title"
	StepCreateDuration Step = "create_duration"
	StepCreateCount    Step = "create_count"
	StepCreateQuestion Step = "create_question"
	StepCreateOption   Step = "create_option"
	StepCreateCorrect  Step = "create_correct"

	StepWhoSolvedID  Step = "who_solved_id"
	StepDeleteTestID Step = "delete_test_id"
	StepExportTestID Step = "export_test_id"

	StepGrantAdminID  Step = "grant_admin_id"
	StepRevokeAdminID Step = "revoke_admin_id"
)

// State состояние многошагового диалога одного пользователя.
// Хранит только черновые данные, результаты попыток живут в базе.
type State struct {
	Step Step `json:"step"`

	FullName string `json:"full_name,omitempty"`

	Title         string `json:"title,omitempty"`
	DurationMin   int    `json:"duration_min,omitempty"`
	QuestionTotal int    `json:"question_total,omitempty"`
	TestPublicID  string `json:"test_public_id,omitempty"`

	QuestionIndex int       `json:"question_index,omitempty"`
	QuestionText  string    `json:"question_text,omitempty"`
	Options       [4]string `json:"options"`
	OptionIndex   int       `json:"option_index,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store хранилище состояний диалога по telegram id
type Store interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Set(ctx context.Context, userID int64, state State) error
	Delete(ctx context.Context, userID int64) error
}

// Backend тип хранилища из конфигурации
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendRedis  = "redis"
)

// Options параметры для NewStore
type Options struct {
	Backend   string
	Path      string
	RedisAddr string
	TTL       time.Duration
}

// NewStore возвращает реализацию Store в зависимости от типа хранения
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendJSON:
		return NewJSONStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown session backend %q", opts.Backend)
	}
}
