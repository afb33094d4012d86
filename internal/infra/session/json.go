package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

const defaultJSONPath = "sessions.json"

// JSONStore сохраняет состояния в JSON-файл, переживает перезапуск бота
type JSONStore struct {
	filename string
	mu       sync.Mutex
}

// NewJSONStore создаёт JSONStore. Если файла нет, он создается пустым.
func NewJSONStore(filename string) (*JSONStore, error) {
	if filename == "" {
		filename = defaultJSONPath
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(filename, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create session file %s: %w", filename, err)
		}
	}
	return &JSONStore{filename: filename}, nil
}

// load и save вызываются под j.mu
func (j *JSONStore) load() (map[int64]State, error) {
	data, err := os.ReadFile(j.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", j.filename, err)
	}
	m := make(map[int64]State)
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return m, nil
}

func (j *JSONStore) save(m map[int64]State) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	tmp := j.filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, j.filename); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", j.filename, err)
	}
	return nil
}

func (j *JSONStore) Get(_ context.Context, userID int64) (State, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return State{}, false, err
	}
	state, ok := m[userID]
	return state, ok, nil
}

func (j *JSONStore) Set(_ context.Context, userID int64, state State) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return err
	}
	m[userID] = state
	return j.save(m)
}

func (j *JSONStore) Delete(_ context.Context, userID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return err
	}
	delete(m, userID)
	return j.save(m)
}
