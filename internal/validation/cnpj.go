package validation

import (
	"strings"
	"unicode"
)

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// NormalizeTaxID убирает из CNPJ символы форматирования: точки, косую черту, дефис и пробелы.
func NormalizeTaxID(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '/', '-', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// IsValidCNPJ проверяет 14-значный CNPJ по контрольным цифрам.
// Допускается запись как с форматированием, так и без него.
func IsValidCNPJ(s string) bool {
	number := NormalizeTaxID(s)
	if len(number) != 14 {
		return false
	}

	digits := make([]int, 0, 14)
	same := true
	for i, ch := range number {
		if !unicode.IsDigit(ch) {
			return false
		}
		digits = append(digits, int(ch-'0'))
		if i > 0 && digits[i] != digits[0] {
			same = false
		}
	}
	if same {
		return false
	}

	return checkDigit(digits, cnpjFirstWeights) == digits[12] &&
		checkDigit(digits, cnpjSecondWeights) == digits[13]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}
