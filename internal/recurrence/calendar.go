package recurrence

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseWeekdaySet разбирает строку дней недели вида "0,4" в отсортированный
// по возрастанию список без дубликатов. 0=понедельник ... 6=воскресенье.
// Нечисловые токены, пустые токены и значения вне диапазона молча
// отбрасываются; пустая строка даёт пустой список — подстановка дня по
// умолчанию остаётся на вызывающей стороне.
func ParseWeekdaySet(raw string) []int {
	days := []int{}
	var seen [7]bool
	for _, token := range strings.Split(raw, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || d < 0 || d > 6 {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// TruncateToMinute обнуляет секунды и доли секунды, сохраняя дату, часы,
// минуты и зону. Все сравнения с "сейчас" идут после такого усечения, чтобы
// секундный дребезг не переключал статус.
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// MondayIndex переводит день недели Go (воскресенье=0) в индекс 0=Пн..6=Вс.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StepOneMonth сдвигает дату на один календарный месяц вперёд с тем же
// числом. Если в целевом месяце меньше дней (например, шаг с 31 января),
// число прижимается к последнему дню месяца. Время суток и зона сохраняются.
func StepOneMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	month++ // time.Date нормализует месяц 13 в январь следующего года
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// День 0 следующего месяца — последний день нужного
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateOnly обнуляет время суток, сохраняя зону.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
