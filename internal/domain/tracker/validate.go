package tracker

import (
	"fmt"
	"strings"
	"time"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func requiredDate(field string, t time.Time) error {
	if t.IsZero() {
		return invalid("%s is required", field)
	}
	return nil
}

// dayBefore compara por día calendario (campos de reloj, sin convertir zona).
func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func indexOf[T any](list []T, id string, idOf func(T) string) int {
	for i, item := range list {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func ptrTo[T any](v T) *T { return &v }
