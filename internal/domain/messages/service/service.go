package service

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Ключи сообщений из messages.yaml
const (
	Welcome       = "welcome"
	WelcomeAdmin  = "welcome_admin"
	Cancelled     = "cancelled"
	Unknown       = "unknown"
	Forbidden     = "forbidden"
	InternalError = "internal_error"

	NeedRegister     = "need_register"
	RegisterAlready  = "register_already"
	RegisterAskName  = "register_ask_name"
	RegisterBadName  = "register_bad_name"
	RegisterAskPhone = "register_ask_phone"
	RegisterDone     = "register_done"

	TakeAskID        = "take_ask_id"
	TakeNotFound     = "take_not_found"
	TakeEmpty        = "take_empty"
	TakeStarted      = "take_started"
	Question         = "question"
	AnswerAccepted   = "answer_accepted"
	AnswerLate       = "answer_late"
	AlreadyAnswered  = "already_answered"
	AttemptClosed    = "attempt_closed"
	AttemptForbidden = "attempt_forbidden"
	QuestionNotFound = "question_not_found"
	InvalidLetter    = "invalid_letter"
	Finished         = "finished"
	Timeout          = "timeout"
	TimerExpired     = "timer_expired"

	MyResultsEmpty  = "my_results_empty"
	MyResultsHeader = "my_results_header"
	MyResultsRow    = "my_results_row"
	StatusFinished  = "status_finished"
	StatusTimeout   = "status_timeout"

	CreateAskTitle    = "create_ask_title"
	CreateBadTitle    = "create_bad_title"
	CreateAskDuration = "create_ask_duration"
	CreateBadDuration = "create_bad_duration"
	CreateAskCount    = "create_ask_count"
	CreateBadCount    = "create_bad_count"
	CreateCreated     = "create_created"
	CreateAskQuestion = "create_ask_question"
	CreateBadQuestion = "create_bad_question"
	CreateAskOption   = "create_ask_option"
	CreateBadOption   = "create_bad_option"
	CreateAskCorrect  = "create_ask_correct"
	CreateBadCorrect  = "create_bad_correct"
	CreateDone        = "create_done"

	WhoAskID     = "who_ask_id"
	WhoEmpty     = "who_empty"
	WhoHeader    = "who_header"
	WhoRow       = "who_row"
	TestNotFound = "test_not_found"

	TestsEmpty    = "tests_empty"
	TestsHeader   = "tests_header"
	TestsRow      = "tests_row"
	TestActive    = "test_active"
	TestInactive  = "test_inactive"
	DeleteAskID   = "delete_ask_id"
	DeleteDone    = "delete_done"
	ExportAskID   = "export_ask_id"
	ExportCaption = "export_caption"

	AdminAskGrant     = "admin_ask_grant"
	AdminAskRevoke    = "admin_ask_revoke"
	AdminBadID        = "admin_bad_id"
	AdminGranted      = "admin_granted"
	AdminRevoked      = "admin_revoked"
	AdminUserNotFound = "admin_user_not_found"
	AdminConfigured   = "admin_configured"
)

// MessageService тексты ответов бота по ключу
type MessageService struct {
	messages map[string]string
}

// NewMessageService загружает встроенные тексты и, если задан overridePath,
// поверх них тексты из файла
func NewMessageService(overridePath string) (*MessageService, error) {
	messages := make(map[string]string)
	if err := yaml.Unmarshal(defaultMessages, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse embedded messages: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages file: %w", err)
		}
		overrides := make(map[string]string)
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse messages file: %w", err)
		}
		for k, v := range overrides {
			messages[k] = v
		}
	}

	return &MessageService{messages: messages}, nil
}

// Text возвращает сообщение по ключу, подставляя args. Для неизвестного ключа возвращает сам ключ.
func (s *MessageService) Text(key string, args ...any) string {
	text, ok := s.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
