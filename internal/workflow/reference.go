package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxSequence ограничивает наибольший номер разработки в пределах одного префикса.
const MaxSequence = 9999

// DevelopmentPrefix возвращает префикс кода разработки: две последние цифры года и аббревиатура клиента.
func DevelopmentPrefix(year int, acronym string) string {
	return fmt.Sprintf("%02d%s", year%100, strings.ToUpper(strings.TrimSpace(acronym)))
}

// DevelopmentReference собирает код разработки вида 25ABC0001.
func DevelopmentReference(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// NextSequence возвращает номер, следующий за максимальным существующим кодом с данным префиксом.
// Пустой last означает, что кодов с этим префиксом ещё нет.
func NextSequence(last, prefix string) (int, error) {
	if last == "" {
		return 1, nil
	}
	if !strings.HasPrefix(last, prefix) {
		return 0, fmt.Errorf("reference %q does not start with %q", last, prefix)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil {
		return 0, fmt.Errorf("parse reference sequence %q: %w", last, err)
	}
	if n >= MaxSequence {
		return 0, fmt.Errorf("reference sequence for %q exhausted", prefix)
	}
	return n + 1, nil
}
