package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitassist/fitassist/internal/models"
	"gorm.io/gorm"
)

// MainWorkoutView is the profile's pinned workout, when set.
type MainWorkoutView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	PlanText  string    `json:"planText"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileView is the public user profile.
type ProfileView struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Picture     string           `json:"picture,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	MainWorkout *MainWorkoutView `json:"mainWorkout"`
}

// GetUserProfile returns the user joined with their main workout, nil
// MainWorkout when none is pinned.
func GetUserProfile(db *gorm.DB, userID uint64) (*ProfileView, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	profile := &ProfileView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Picture:   user.Picture,
		CreatedAt: user.CreatedAt,
	}

	if user.MainWorkoutID != nil {
		var plan models.WorkoutPlan
		err := db.First(&plan, *user.MainWorkoutID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			profile.MainWorkout = &MainWorkoutView{
				ID:        plan.ID,
				Name:      plan.WorkoutName,
				PlanText:  plan.PlanText,
				CreatedAt: plan.CreatedAt,
			}
		}
	}
	return profile, nil
}

// EnsureLocalUser gets or creates the local user row for an identity
// profile. Created on first successful login; subsequent logins return
// the existing row untouched.
func EnsureLocalUser(db *gorm.DB, profile *AuthProfile) (*models.User, error) {
	if profile == nil || profile.ID == "" {
		return nil, fmt.Errorf("missing identity profile: %w", ErrValidation)
	}

	var user models.User
	err := db.Where("google_id = ?", profile.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(profile.GivenName + " " + profile.FamilyName)
	if name == "" {
		name = profile.Nickname
	}
	if name == "" {
		name = profile.Email
	}

	username := profile.PreferredUsername
	if username == "" {
		username = strings.ToLower(strings.ReplaceAll(name, " ", ""))
	}

	user = models.User{
		GoogleID: profile.ID,
		Name:     name,
		Email:    profile.Email,
		Picture:  profile.Picture,
		Username: username,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
