package recurrence

import "time"

// Status — статус вхождения относительно текущего времени.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// Classify определяет статус окна [start, end) относительно момента now.
// Все три момента усекаются до минут. time.Time в Go всегда несёт зону,
// поэтому нормализация сводится к сравнению абсолютных моментов.
//
// Функция чистая и детерминированная: сохранённый в базе статус — только
// кэш, при каждом чтении статус пересчитывается заново.
func Classify(start, end, now time.Time) Status {
	start = TruncateToMinute(start)
	end = TruncateToMinute(end)
	now = TruncateToMinute(now)

	if now.Before(start) {
		return StatusUpcoming
	}
	if now.Before(end) {
		return StatusOngoing
	}
	return StatusCompleted
}
