package questionbank

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func sampleItems(n int) []Item {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Item{
			Text:    "Вопрос " + string(rune('А'+i)),
			Options: []string{"Да", "Нет", "Не знаю", "Иногда"},
			Answer:  "a",
		})
	}
	return items
}

// TestPickUnique набор без повторов и нужного размера
func TestPickUnique(t *testing.T) {
	bank, err := New(sampleItems(10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	picked := bank.Pick(5, rand.New(rand.NewPCG(1, 2)))
	if len(picked) != 5 {
		t.Fatalf("Ожидалось 5 вопросов, получено %d", len(picked))
	}
	seen := make(map[string]bool)
	for _, it := range picked {
		if seen[it.Text] {
			t.Errorf("Вопрос %q повторяется в наборе", it.Text)
		}
		seen[it.Text] = true
		if it.Answer != "A" {
			t.Errorf("Буква ответа не нормализована: %q", it.Answer)
		}
	}
}

// TestPickMoreThanBank просим больше, чем есть
func TestPickMoreThanBank(t *testing.T) {
	bank, err := New(sampleItems(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := len(bank.Pick(10, rand.New(rand.NewPCG(3, 4)))); got != 3 {
		t.Errorf("Ожидалось 3 вопроса, получено %d", got)
	}
}

func TestNewRejectsBadItems(t *testing.T) {
	tests := map[string]Item{
		"пустой текст": {Text: " ", Options: []string{"1", "2", "3", "4"}, Answer: "A"},
		"три варианта": {Text: "Q", Options: []string{"1", "2", "3"}, Answer: "A"},
		"чужая буква":  {Text: "Q", Options: []string{"1", "2", "3", "4"}, Answer: "E"},
		"пустой ответ": {Text: "Q", Options: []string{"1", "2", "3", "4"}},
	}
	for name, item := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := New([]Item{item}); err == nil {
				t.Error("Ожидалась ошибка")
			}
		})
	}
	if _, err := New(nil); err == nil {
		t.Error("Пустой банк должен быть ошибкой")
	}
}

// TestLoadJSONAndYAML файл банка читается в обоих форматах
func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"bank.json": `[{"text": "2+2?", "options": ["3", "4", "5", "22"], "answer": "B"}]`,
		"bank.yaml": "- text: 2+2?\n  options: [\"3\", \"4\", \"5\", \"22\"]\n  answer: b\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		bank, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if bank.Len() != 1 {
			t.Fatalf("%s: Len = %d", name, bank.Len())
		}
		it := bank.Pick(1, rand.New(rand.NewPCG(5, 6)))[0]
		if it.Answer != "B" || it.OptionsArray() != [4]string{"3", "4", "5", "22"} {
			t.Errorf("%s: вопрос = %+v", name, it)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Ожидалась ошибка для отсутствующего файла")
	}
}
