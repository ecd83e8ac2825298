package occurrences

import (
	"errors"
	"fmt"
)

// ErrNotFound — серия или вхождение с таким идентификатором не существует.
var ErrNotFound = errors.New("запись не найдена")

// ValidationError — ошибка входных данных вызывающей стороны: перевёрнутое
// окно, отсутствующее обязательное поле, неизвестный тип повторения.
// Повторять такой запрос без исправления данных бессмысленно.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PreconditionError — попытка изменить или удалить вхождение, которое уже
// началось. Вызывающая сторона должна перечитать состояние и решить заново.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
