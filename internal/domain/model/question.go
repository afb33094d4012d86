package model

// Question вопрос теста с четырьмя вариантами ответа
type Question struct {
	ID         int64     `json:"id"`
	TestID     int64     `json:"-"`
	OrderIndex int       `json:"order_index"`
	Text       string    `json:"text"`
	Options    [4]string `json:"options"`
	Correct    string    `json:"-"`
}

// Option текст варианта по букве, пустая строка для неизвестной буквы
func (q Question) Option(letter string) string {
	for i, l := range Letters {
		if l == letter {
			return q.Options[i]
		}
	}
	return ""
}

// IsCorrect сравнивает нормализованную букву с правильной
func (q Question) IsCorrect(letter string) bool {
	return letter == q.Correct
}
