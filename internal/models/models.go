package models

import (
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RolePastor = "pastor"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Role         string `gorm:"not null;default:member"` // member или pastor
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string // Пустой для пользователей, входящих только по OTP
	Phone        string `gorm:"index"`
	Email        string `gorm:"index"`
	IsActive     bool   `gorm:"not null;default:true"`
}
