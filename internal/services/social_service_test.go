package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fitassist/fitassist/internal/models"
	"github.com/fitassist/fitassist/internal/services"
)

// recordingStore captures object deletions issued by the service
type recordingStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingStore) DeleteObject(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return r.err
}

func TestCreateAndListPosts(t *testing.T) {
	db := setupTestDB(t)
	aliceID := createTestUser(t, db, "g-1", "alice")
	bobID := createTestUser(t, db, "g-2", "bob")

	older, err := services.CreatePost(db, aliceID, "leg day done", "")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	newer, err := services.CreatePost(db, bobID, "new PR today", "")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	base := time.Now().UTC()
	db.Model(&models.Post{}).Where("id = ?", older.ID).
		UpdateColumn("created_at", base.Add(-time.Hour))
	db.Model(&models.Post{}).Where("id = ?", newer.ID).
		UpdateColumn("created_at", base)

	if err := services.LikePost(db, older.ID, bobID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}

	posts, err := services.ListPosts(db, bobID)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != newer.ID {
		t.Errorf("Expected newest first, got post %d", posts[0].ID)
	}
	if posts[0].LikedByUser {
		t.Error("Bob has not liked the newest post")
	}
	if !posts[1].LikedByUser {
		t.Error("Expected likedByUser on the post Bob liked")
	}

	// The flag is per viewer
	posts, err = services.ListPosts(db, aliceID)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if posts[1].LikedByUser {
		t.Error("Alice has liked nothing")
	}
}

func TestCreatePostEmpty(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "g-1", "alice")

	if _, err := services.CreatePost(db, userID, "   ", ""); !errors.Is(err, services.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	// An image-only post is fine
	if _, err := services.CreatePost(db, userID, "", "https://cdn.example.com/img/abc.jpg"); err != nil {
		t.Errorf("Image-only post should be allowed: %v", err)
	}
}

func TestDeletePostRemovesImageObject(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "g-1", "alice")
	store := &recordingStore{}

	post, err := services.CreatePost(db, userID, "with image", "https://cdn.example.com/img/abc.jpg")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	otherID := createTestUser(t, db, "g-2", "bob")
	if err := services.DeletePost(context.Background(), db, store, post.ID, otherID); !errors.Is(err, services.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner for a non-author delete, got %v", err)
	}

	if err := services.DeletePost(context.Background(), db, store, post.ID, userID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	var count int64
	db.Model(&models.Post{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected the post row removed, got %d rows", count)
	}
	if len(store.keys) != 1 || store.keys[0] != "abc.jpg" {
		t.Errorf("Expected the image key deleted, got %v", store.keys)
	}

	if err := services.DeletePost(context.Background(), db, store, post.ID, userID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing post, got %v", err)
	}
}

func TestDeletePostSurvivesStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "g-1", "alice")
	store := &recordingStore{err: errors.New("bucket unavailable")}

	post, err := services.CreatePost(db, userID, "with image", "https://cdn.example.com/img/abc.jpg")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	// Object deletion is best-effort, the row delete still lands
	if err := services.DeletePost(context.Background(), db, store, post.ID, userID); err != nil {
		t.Fatalf("DeletePost should not surface store errors: %v", err)
	}
	var count int64
	db.Model(&models.Post{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected the post row removed, got %d rows", count)
	}
}

func TestLikePostDuplicate(t *testing.T) {
	db := setupTestDB(t)
	aliceID := createTestUser(t, db, "g-1", "alice")
	bobID := createTestUser(t, db, "g-2", "bob")

	post, _ := services.CreatePost(db, aliceID, "hello", "")

	if err := services.LikePost(db, post.ID, bobID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}
	if err := services.LikePost(db, post.ID, bobID); !errors.Is(err, services.ErrConflict) {
		t.Errorf("Expected ErrConflict for a repeat like, got %v", err)
	}
	if err := services.LikePost(db, 9999, bobID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing post, got %v", err)
	}
}

// A like row written by a concurrent request must still surface as a
// conflict, not a raw unique-index error.
func TestLikePostRowAlreadyPresent(t *testing.T) {
	db := setupTestDB(t)
	aliceID := createTestUser(t, db, "g-1", "alice")
	bobID := createTestUser(t, db, "g-2", "bob")

	post, _ := services.CreatePost(db, aliceID, "hello", "")

	if err := db.Create(&models.Like{PostID: post.ID, UserID: bobID}).Error; err != nil {
		t.Fatalf("seeding like failed: %v", err)
	}
	if err := services.LikePost(db, post.ID, bobID); !errors.Is(err, services.ErrConflict) {
		t.Errorf("Expected ErrConflict when the like row already exists, got %v", err)
	}
}

func TestUnlikePost(t *testing.T) {
	db := setupTestDB(t)
	aliceID := createTestUser(t, db, "g-1", "alice")
	bobID := createTestUser(t, db, "g-2", "bob")

	post, _ := services.CreatePost(db, aliceID, "hello", "")

	if err := services.UnlikePost(db, post.ID, bobID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound without a like, got %v", err)
	}

	if err := services.LikePost(db, post.ID, bobID); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}
	if err := services.UnlikePost(db, post.ID, bobID); err != nil {
		t.Fatalf("UnlikePost failed: %v", err)
	}
	// Like again after unlike is allowed
	if err := services.LikePost(db, post.ID, bobID); err != nil {
		t.Errorf("Re-like after unlike should succeed: %v", err)
	}
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	aliceID := createTestUser(t, db, "g-1", "alice")
	bobID := createTestUser(t, db, "g-2", "bob")

	post, _ := services.CreatePost(db, aliceID, "hello", "")

	first, err := services.CreateComment(db, bobID, post.ID, "nice work")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if first.UserName != "bob" {
		t.Errorf("Expected the author's name joined in, got %q", first.UserName)
	}

	if _, err := services.CreateComment(db, bobID, post.ID, "  "); !errors.Is(err, services.ErrValidation) {
		t.Errorf("Expected ErrValidation for an empty comment, got %v", err)
	}
	if _, err := services.CreateComment(db, bobID, 9999, "hi"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing post, got %v", err)
	}

	second, err := services.CreateComment(db, aliceID, post.ID, "thanks!")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	base := time.Now().UTC()
	db.Model(&models.Comment{}).Where("id = ?", first.ID).
		UpdateColumn("created_at", base.Add(-time.Minute))
	db.Model(&models.Comment{}).Where("id = ?", second.ID).
		UpdateColumn("created_at", base)

	comments, err := services.ListComments(db, post.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != first.ID {
		t.Error("Expected oldest comment first")
	}

	// Only the author may delete a comment
	if err := services.DeleteComment(db, first.ID, aliceID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a non-author delete, got %v", err)
	}
	if err := services.DeleteComment(db, first.ID, bobID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
}
