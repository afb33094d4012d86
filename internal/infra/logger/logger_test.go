package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	if err := InitWriter(&buf, "warn", false); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}

	log.Info().Msg("skipped")
	log.Warn().Int64("telegram_id", 7).Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("ожидалась одна JSON-строка, получено %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" || entry["level"] != "warn" || entry["telegram_id"] != float64(7) {
		t.Errorf("запись лога: %v", entry)
	}

	if err := InitWriter(&buf, "loud", false); err == nil {
		t.Errorf("ожидалась ошибка для неизвестного уровня")
	}
}
