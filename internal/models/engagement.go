package models

import (
	"time"

	"gorm.io/gorm"
)

// Attendance — пассивный учёт участия: запись создаётся, когда участник
// нажимает "JOIN NOW". Никакой подтверждающей логики нет.
type Attendance struct {
	gorm.Model
	UserID       uint      `gorm:"index:idx_attendance_user_occurrence,unique;not null"`
	OccurrenceID uint      `gorm:"index:idx_attendance_user_occurrence,unique;not null"`
	Occurrence   Occurrence `gorm:"foreignKey:OccurrenceID;constraint:OnDelete:CASCADE"`
	JoinedAt     time.Time `gorm:"index;not null"`
}

// Favorite — избранные серии участника для быстрого доступа.
type Favorite struct {
	gorm.Model
	UserID   uint   `gorm:"index:idx_favorites_user_series,unique;not null"`
	SeriesID uint   `gorm:"index:idx_favorites_user_series,unique;not null"`
	Series   Series `gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE"`
}

// ReminderSetting — настройка напоминания по серии (за 15 или 5 минут).
// Доставка выполняется на клиенте, бэкенд только хранит переключатели.
type ReminderSetting struct {
	gorm.Model
	UserID              uint   `gorm:"index:idx_reminder_user_series_minutes,unique;not null"`
	SeriesID            uint   `gorm:"index:idx_reminder_user_series_minutes,unique;not null"`
	Series              Series `gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE"`
	RemindBeforeMinutes int    `gorm:"index:idx_reminder_user_series_minutes,unique;not null"` // 15 или 5
	IsEnabled           bool   `gorm:"not null;default:true"`
}
