package models

import (
	"time"
)

// WorkoutPlan is a saved assistant-generated plan. Rows are soft-deleted
// (IsDeleted) rather than removed because adopted_plans rows keep
// referencing them. UsersAdopted counts distinct adopters.
type WorkoutPlan struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedBy    uint64 `gorm:"not null;index"`
	WorkoutName  string `gorm:"size:255"`
	PlanText     string `gorm:"type:text;not null"`
	IsDeleted    bool   `gorm:"not null;default:false"`
	UsersAdopted int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

// TableName overrides the table name for WorkoutPlan
func (WorkoutPlan) TableName() string {
	return "workout_plans"
}

// AdoptedPlan links a user to a plan they did not create. At most one link
// per (user, plan) pair.
type AdoptedPlan struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	UserID        uint64 `gorm:"not null;uniqueIndex:idx_user_workout_plan"`
	WorkoutPlanID uint64 `gorm:"not null;uniqueIndex:idx_user_workout_plan"`
	AdoptedAt     time.Time
}

// TableName overrides the table name for AdoptedPlan
func (AdoptedPlan) TableName() string {
	return "adopted_plans"
}
