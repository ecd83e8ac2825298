package models

import (
	"time"

	"gorm.io/gorm"
)

// Occurrence — конкретное вхождение серии, которое видят все участники.
// Поля-снимки копируются из серии при генерации: правки вхождения не
// возвращаются в серию, а правки серии не меняют уже созданные вхождения.
// Поддерживает многодневные окна (например, ночная молитва 23:00-01:00).
type Occurrence struct {
	gorm.Model
	SeriesID        uint      `gorm:"index;not null"`
	Domain          string    `gorm:"index;not null"` // prayer или event
	Title           string    `gorm:"not null"`       // Снимок из серии
	Description     string    // Снимок из серии
	MeetingType     string    `gorm:"not null"` // Снимок из серии
	Location        string    // Снимок из серии
	JoinInfo        string    // Снимок из серии
	StartDatetime   time.Time `gorm:"index;not null"`
	EndDatetime     time.Time `gorm:"index;not null"`
	Status          string    `gorm:"index;not null;default:upcoming"` // upcoming, ongoing, completed — кэш, пересчитывается при чтении
	RecurrenceType  string    // Только для метки в ответах: daily/weekly/monthly, пусто для разовых; в генерации не участвует
}
