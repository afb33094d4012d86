package model

import "strings"

// Letters допустимые буквы вариантов в порядке вариантов
var Letters = [4]string{"A", "B", "C", "D"}

// NormalizeLetter приводит букву к верхнему регистру. ok=false для всего, кроме A-D.
func NormalizeLetter(s string) (string, bool) {
	l := strings.ToUpper(strings.TrimSpace(s))
	for _, allowed := range Letters {
		if l == allowed {
			return l, true
		}
	}
	return "", false
}

// NormalizePublicID приводит публичный id теста к каноничному виду
func NormalizePublicID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
