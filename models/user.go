package models

import "time"

type User struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Username   string  `gorm:"type:varchar(255);unique;not null" json:"username"`
	Password   string  `gorm:"type:varchar(255);not null" json:"-"`
	TempleName string  `gorm:"type:varchar(255);not null" json:"temple_name"`
	Email      *string `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone      string  `gorm:"type:varchar(32)" json:"phone"`
	Role       string  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
