package apperror

import (
	"errors"
	"strings"
)

// keywords проверяются по порядку: первое совпадение определяет код.
var keywords = []struct {
	substr string
	err    *Error
}{
	{"not found", ErrNotFound},
	{"already exists", ErrReferenceConflict},
	{"duplicate", ErrReferenceConflict},
	{"expired", ErrTokenExpired},
	{"token", ErrTokenInvalid},
	{"unauthorized", ErrTokenInvalid},
	{"forbidden", ErrAccessDenied},
	{"access denied", ErrAccessDenied},
	{"required", ErrValidation},
	{"invalid", ErrValidation},
}

// Classify приводит произвольную ошибку к ошибке каталога.
//
// Порядок: ошибка каталога в цепочке, точное совпадение сообщения со статической таблицей,
// поиск ключевых слов в сообщении, и в конце внутренняя ошибка 6001.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := strings.ToLower(err.Error())
	if e, ok := byMessage[msg]; ok {
		return e
	}

	for _, k := range keywords {
		if strings.Contains(msg, k.substr) {
			return k.err.Wrap(err)
		}
	}

	return ErrInternal.Wrap(err)
}
