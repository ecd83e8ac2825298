package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RequestTypePublic  = "public"
	RequestTypePrivate = "private"

	RequestStatusSubmitted = "submitted"
	RequestStatusPrayed    = "prayed"
	RequestStatusArchived  = "archived"
)

// PrayerRequest — молитвенная просьба участника пастору.
// Пастор всегда видит автора; в публичном списке приватные просьбы
// показываются без имени. Имя и username фиксируются на момент отправки.
type PrayerRequest struct {
	gorm.Model
	UserID         uint   `gorm:"index;not null"`
	MemberName     string `gorm:"not null"` // Снимок имени на момент отправки
	MemberUsername string `gorm:"not null"` // Снимок username на момент отправки
	RequestText    string `gorm:"not null"`
	RequestType    string `gorm:"index;not null;default:public"`    // public или private
	Status         string `gorm:"index;not null;default:submitted"` // submitted, prayed, archived
	PrayedAt       *time.Time
	ArchivedAt     *time.Time
}
