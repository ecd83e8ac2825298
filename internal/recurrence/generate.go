package recurrence

import "time"

const (
	TypeNone    = "none"
	TypeDaily   = "daily"
	TypeWeekly  = "weekly"
	TypeMonthly = "monthly"
)

// ValidType сообщает, допустим ли тип повторения.
func ValidType(recurrenceType string) bool {
	switch recurrenceType {
	case TypeNone, TypeDaily, TypeWeekly, TypeMonthly:
		return true
	}
	return false
}

// Label возвращает человекочитаемую метку типа повторения.
// Для none и неизвестных типов — пустая строка.
func Label(recurrenceType string) string {
	switch recurrenceType {
	case TypeDaily:
		return "Ежедневно"
	case TypeWeekly:
		return "Еженедельно"
	case TypeMonthly:
		return "Ежемесячно"
	}
	return ""
}

// Window — окно одного вхождения.
type Window struct {
	Start time.Time
	End   time.Time
}

// Rule — правило повторения серии.
type Rule struct {
	Type    string     // none, daily, weekly, monthly
	Days    string     // Для weekly: дни через запятую, "0,4" (0=Пн, 6=Вс)
	EndDate *time.Time // Необязательная дата окончания (граница по дню)
	Count   *int       // Необязательный лимит количества вхождений; 0 — без лимита
}

// Generate разворачивает якорное окно серии в ограниченный список окон.
// Горизонт — maxMonths месяцев (по 30 дней) от даты якоря; действует самая
// строгая из границ: горизонт, rule.EndDate или rule.Count.
//
// Длительность якоря сохраняется в каждом окне: конец всегда считается как
// начало плюс длительность, поэтому многодневные окна (23:00-01:00)
// обрабатываются единообразно. Все начала несут зону якоря.
//
// Count — жёсткий лимит на число порождённых окон: проверяется
// непосредственно перед каждым добавлением, в том числе внутри недельного
// перебора дней.
func Generate(anchor Window, rule Rule, maxMonths int) []Window {
	duration := anchor.End.Sub(anchor.Start)
	loc := anchor.Start.Location()

	actualEnd := dateOnly(anchor.Start).AddDate(0, 0, maxMonths*30)
	if rule.EndDate != nil {
		// Дату окончания переносим в зону якоря, чтобы сравнивать календарные дни
		end := *rule.EndDate
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		if end.Before(actualEnd) {
			actualEnd = end
		}
	}

	// Нулевой или отрицательный лимит равносилен его отсутствию
	countReached := func(count int) bool {
		return rule.Count != nil && *rule.Count > 0 && count >= *rule.Count
	}

	var windows []Window

	switch rule.Type {
	case TypeNone:
		windows = append(windows, anchor)

	case TypeDaily:
		cur := anchor.Start
		count := 0
		for !dateOnly(cur).After(actualEnd) {
			if countReached(count) {
				break
			}
			windows = append(windows, Window{Start: cur, End: cur.Add(duration)})
			count++
			cur = cur.AddDate(0, 0, 1)
		}

	case TypeWeekly:
		days := ParseWeekdaySet(rule.Days)
		if len(days) == 0 {
			// По умолчанию — день недели самого якоря
			days = []int{MondayIndex(anchor.Start)}
		}

		anchorDate := dateOnly(anchor.Start)
		weekCursor := anchorDate
		count := 0
		for !weekCursor.After(actualEnd) {
			if countReached(count) {
				break
			}
			weekStart := weekCursor.AddDate(0, 0, -MondayIndex(weekCursor))
			for _, day := range days {
				occurrenceDate := weekStart.AddDate(0, 0, day)
				if occurrenceDate.Before(anchorDate) {
					continue
				}
				if occurrenceDate.After(actualEnd) {
					break
				}
				if countReached(count) {
					break
				}
				start := time.Date(
					occurrenceDate.Year(), occurrenceDate.Month(), occurrenceDate.Day(),
					anchor.Start.Hour(), anchor.Start.Minute(), anchor.Start.Second(),
					anchor.Start.Nanosecond(), loc,
				)
				windows = append(windows, Window{Start: start, End: start.Add(duration)})
				count++
			}
			weekCursor = weekCursor.AddDate(0, 0, 7)
		}

	case TypeMonthly:
		cur := anchor.Start
		count := 0
		for !dateOnly(cur).After(actualEnd) {
			if countReached(count) {
				break
			}
			windows = append(windows, Window{Start: cur, End: cur.Add(duration)})
			count++
			// Прижатие к концу месяца сохраняется на следующих шагах:
			// 31 января -> 28 февраля -> 28 марта
			cur = StepOneMonth(cur)
		}
	}

	return windows
}
