// Package questionbank загружает банк вопросов из файла и собирает из него случайный набор для нового теста.
package questionbank

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Item один вопрос банка. Файл может быть в YAML или JSON.
type Item struct {
	Text    string   `yaml:"text"`
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
}

// Bank набор вопросов, из которого берутся вопросы теста
type Bank struct {
	items []Item
}

// New создает банк из готовых вопросов, проверяя каждый
func New(items []Item) (*Bank, error) {
	if len(items) == 0 {
		return nil, errors.New("question bank is empty")
	}
	for i := range items {
		if err := items[i].validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return &Bank{items: items}, nil
}

// Load читает банк из файла
func Load(filename string) (*Bank, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse question bank %s: %w", filename, err)
	}
	return New(items)
}

func (it *Item) validate() error {
	if strings.TrimSpace(it.Text) == "" {
		return errors.New("text is empty")
	}
	if len(it.Options) != len(model.Letters) {
		return fmt.Errorf("want %d options, got %d", len(model.Letters), len(it.Options))
	}
	letter, ok := model.NormalizeLetter(it.Answer)
	if !ok {
		return fmt.Errorf("answer %q must be one of A, B, C, D", it.Answer)
	}
	it.Answer = letter
	return nil
}

// Len количество вопросов в банке
func (b *Bank) Len() int {
	return len(b.items)
}

// Pick n случайных разных вопросов. Если в банке меньше n, вернет все в случайном порядке.
func (b *Bank) Pick(n int, rng *rand.Rand) []Item {
	idx := rng.Perm(len(b.items))
	if n > len(idx) {
		n = len(idx)
	}

	out := make([]Item, 0, n)
	for _, i := range idx[:n] {
		out = append(out, b.items[i])
	}
	return out
}

// OptionsArray варианты ответа в виде массива A-D
func (it Item) OptionsArray() [4]string {
	var opts [4]string
	copy(opts[:], it.Options)
	return opts
}
