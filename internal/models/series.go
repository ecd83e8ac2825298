package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DomainPrayer = "prayer"
	DomainEvent  = "event"
)

// Series — шаблон повторяющейся молитвы или события.
// Участники никогда не видят серию напрямую — только её вхождения.
type Series struct {
	gorm.Model
	Domain            string     `gorm:"index;not null"`        // prayer или event
	Title             string     `gorm:"not null"`
	Description       string
	MeetingType       string     `gorm:"not null"`              // online или offline
	Location          string     // Обязательно для offline
	JoinInfo          string     // Ссылка/инструкция для подключения, обязательно для online
	RecurrenceType    string     `gorm:"not null;default:none"` // none, daily, weekly, monthly
	RecurrenceDays    string     // Для weekly: дни через запятую, "0,4" (0=Пн, 6=Вс)
	RecurrenceEndDate *time.Time // Необязательная дата окончания повторения
	RecurrenceCount   *int       // Необязательный лимит количества вхождений
	StartDatetime     time.Time  `gorm:"not null"` // Начало первого вхождения (якорное окно)
	EndDatetime       time.Time  `gorm:"not null"` // Окончание первого вхождения
	CreatedBy         uint       `gorm:"index;not null"`
	Creator           User       `gorm:"foreignKey:CreatedBy"`
	IsActive          bool       `gorm:"index;not null;default:true"`

	Occurrences []Occurrence `gorm:"constraint:OnDelete:CASCADE"`
}
