package models

import (
	"time"
)

// User is created on first successful login with the identity provider.
// MainWorkoutID points at the plan the user pinned as their main workout;
// cleared when that plan row goes away (SET NULL).
type User struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	GoogleID      string `gorm:"uniqueIndex;size:255;not null"`
	Name          string `gorm:"size:255;not null"`
	Email         string `gorm:"size:255"`
	Picture       string `gorm:"size:1024"`
	Username      string `gorm:"size:255"`
	MainWorkoutID *uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
