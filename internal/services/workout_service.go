package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/fitassist/fitassist/internal/models"
	"gorm.io/gorm"
)

// ErrOwnPlan rejects adopting a plan the user created themselves.
var ErrOwnPlan = errors.New("cannot adopt own plan")

// WorkoutRow is one entry in a user's merged plan listing.
type WorkoutRow struct {
	ID           uint64    `json:"id"`
	WorkoutName  string    `json:"workoutName"`
	PlanText     string    `json:"planText"`
	CreatedBy    uint64    `json:"createdBy"`
	UsersAdopted int       `json:"usersAdopted"`
	Adopted      bool      `json:"adopted"`
	ActivityAt   time.Time `json:"activityAt"`
}

// workoutScan is the raw union-query row; origin distinguishes the two
// branches portably across dialects.
type workoutScan struct {
	ID           uint64
	WorkoutName  string
	PlanText     string
	CreatedBy    uint64
	UsersAdopted int
	Origin       string
	ActivityAt   time.Time
}

// SaveWorkoutPlan creates a plan owned by userID: not deleted, zero
// adoption count.
func SaveWorkoutPlan(db *gorm.DB, userID uint64, name, planText string) (uint64, error) {
	plan := models.WorkoutPlan{
		CreatedBy:   userID,
		WorkoutName: name,
		PlanText:    planText,
	}
	if err := db.Create(&plan).Error; err != nil {
		return 0, err
	}
	return plan.ID, nil
}

// ListWorkoutsForUser returns the union of plans the user created
// (excluding soft-deleted) and plans the user adopted (adoption survives
// the source plan's soft delete), plus the user's main workout id. The
// main workout sorts first, then rows by activity timestamp descending:
// creation time for owned rows, adoption time for adopted ones. Queries
// limit+1 rows so hasMore needs no count query.
//
// The rank is selected as a column in both branches: a compound SELECT
// can only ORDER BY result columns on the sqlite dialect.
func ListWorkoutsForUser(db *gorm.DB, userID uint64, offset, limit int) ([]WorkoutRow, *uint64, bool, error) {
	if limit <= 0 {
		return nil, nil, false, fmt.Errorf("limit must be positive: %w", ErrValidation)
	}

	var mainID uint64
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, nil, false, err
	}
	if user.MainWorkoutID != nil {
		mainID = *user.MainWorkoutID
	}

	var rows []workoutScan
	err := db.Raw(`
SELECT wp.id, wp.workout_name, wp.plan_text, wp.created_by, wp.users_adopted,
       'owned' AS origin, wp.created_at AS activity_at,
       CASE WHEN wp.id = ? THEN 0 ELSE 1 END AS main_rank
  FROM workout_plans wp
 WHERE wp.created_by = ? AND wp.is_deleted = ?
UNION ALL
SELECT wp.id, wp.workout_name, wp.plan_text, wp.created_by, wp.users_adopted,
       'adopted' AS origin, ap.adopted_at AS activity_at,
       CASE WHEN wp.id = ? THEN 0 ELSE 1 END AS main_rank
  FROM adopted_plans ap
  JOIN workout_plans wp ON wp.id = ap.workout_plan_id
 WHERE ap.user_id = ?
 ORDER BY main_rank, activity_at DESC
 LIMIT ? OFFSET ?`,
		mainID, userID, false, mainID, userID, limit+1, offset).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	workouts := make([]WorkoutRow, 0, len(rows))
	for _, r := range rows {
		workouts = append(workouts, WorkoutRow{
			ID:           r.ID,
			WorkoutName:  r.WorkoutName,
			PlanText:     r.PlanText,
			CreatedBy:    r.CreatedBy,
			UsersAdopted: r.UsersAdopted,
			Adopted:      r.Origin == "adopted",
			ActivityAt:   r.ActivityAt,
		})
	}
	return workouts, user.MainWorkoutID, hasMore, nil
}

// AdoptWorkoutPlan links the adopter to the plan and bumps the plan's
// adoption counter. Adoption is per-user idempotent: a repeat adoption
// returns the existing link without error. Multiple distinct users may
// adopt the same plan; users_adopted counts them.
func AdoptWorkoutPlan(db *gorm.DB, userID, planID uint64) (uint64, error) {
	var linkID uint64
	err := db.Transaction(func(tx *gorm.DB) error {
		var plan models.WorkoutPlan
		if err := tx.Where("id = ? AND is_deleted = ?", planID, false).
			First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("workout plan %d: %w", planID, ErrNotFound)
			}
			return err
		}
		if plan.CreatedBy == userID {
			return fmt.Errorf("workout plan %d: %w", planID, ErrOwnPlan)
		}

		var existing models.AdoptedPlan
		err := tx.Where("user_id = ? AND workout_plan_id = ?", userID, planID).
			First(&existing).Error
		if err == nil {
			linkID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link := models.AdoptedPlan{
			UserID:        userID,
			WorkoutPlanID: planID,
			AdoptedAt:     time.Now().UTC(),
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		linkID = link.ID

		return tx.Model(&models.WorkoutPlan{}).
			Where("id = ?", planID).
			UpdateColumn("users_adopted", gorm.Expr("users_adopted + ?", 1)).Error
	})
	return linkID, err
}

// UnadoptWorkoutPlan removes the adoption link and decrements the source
// plan's adoption counter. Reports not-found when no link exists.
func UnadoptWorkoutPlan(db *gorm.DB, userID, planID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND workout_plan_id = ?", userID, planID).
			Delete(&models.AdoptedPlan{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("adopted plan %d: %w", planID, ErrNotFound)
		}
		return tx.Model(&models.WorkoutPlan{}).
			Where("id = ?", planID).
			UpdateColumn("users_adopted", gorm.Expr("users_adopted - ?", 1)).Error
	})
}

// SoftDeleteWorkoutPlan flags the plan deleted; the row stays because
// adopted_plans rows reference it. Not-found when missing or already
// deleted.
func SoftDeleteWorkoutPlan(db *gorm.DB, planID uint64) error {
	result := db.Model(&models.WorkoutPlan{}).
		Where("id = ? AND is_deleted = ?", planID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("workout plan %d: %w", planID, ErrNotFound)
	}
	return nil
}

// IsAdoptedByUser reports whether the user holds an adoption link to the plan.
func IsAdoptedByUser(db *gorm.DB, userID, planID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.AdoptedPlan{}).
		Where("user_id = ? AND workout_plan_id = ?", userID, planID).
		Count(&count).Error
	return count > 0, err
}

// OwnsOrAdopted reports whether the user created the (non-deleted) plan or
// adopted it. This is the authorization gate before delete and main-toggle.
func OwnsOrAdopted(db *gorm.DB, userID, planID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.WorkoutPlan{}).
		Where("id = ? AND created_by = ? AND is_deleted = ?", planID, userID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	return IsAdoptedByUser(db, userID, planID)
}

// DeleteWorkoutForUser removes the plan from the user's listing: the
// unadopt path for adopters, the soft-delete path for creators. The two
// paths are mutually exclusive per (user, plan).
func DeleteWorkoutForUser(db *gorm.DB, userID, planID uint64) error {
	ok, err := OwnsOrAdopted(db, userID, planID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("workout plan %d: %w", planID, ErrNotOwner)
	}

	adopted, err := IsAdoptedByUser(db, userID, planID)
	if err != nil {
		return err
	}
	if adopted {
		return UnadoptWorkoutPlan(db, userID, planID)
	}
	return SoftDeleteWorkoutPlan(db, planID)
}

// SetMainWorkout toggles the user's main workout reference: set to planID,
// or cleared when planID is already main. The caller must own or have
// adopted the plan.
func SetMainWorkout(db *gorm.DB, userID, planID uint64) (bool, error) {
	ok, err := OwnsOrAdopted(db, userID, planID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("workout plan %d: %w", planID, ErrNotOwner)
	}

	var set bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", userID, ErrNotFound)
			}
			return err
		}

		if user.MainWorkoutID != nil && *user.MainWorkoutID == planID {
			set = false
			return tx.Model(&user).Update("main_workout_id", nil).Error
		}
		set = true
		return tx.Model(&user).Update("main_workout_id", planID).Error
	})
	return set, err
}
