package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fitassist/fitassist/internal/models"
	"github.com/fitassist/fitassist/internal/storage"
	"gorm.io/gorm"
)

// PostView is a feed entry as seen by one viewer.
type PostView struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LikedByUser bool      `json:"likedByUser"`
}

type postScan struct {
	ID        uint64
	UserID    uint64
	Content   string
	ImageURL  string
	CreatedAt time.Time
	Liked     int
}

// CommentView carries a comment with its author's display data.
type CommentView struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	PostID    uint64    `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UserName  string    `json:"userName"`
	UserPic   string    `json:"userPicture,omitempty"`
}

// ListPosts returns all posts newest first, with likedByUser computed for
// the viewer.
func ListPosts(db *gorm.DB, viewerID uint64) ([]PostView, error) {
	var rows []postScan
	err := db.Table("posts").
		Select("posts.id, posts.user_id, posts.content, posts.image_url, posts.created_at, " +
			"CASE WHEN likes.user_id IS NULL THEN 0 ELSE 1 END AS liked").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id AND likes.user_id = ?", viewerID).
		Order("posts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	posts := make([]PostView, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, PostView{
			ID:          r.ID,
			UserID:      r.UserID,
			Content:     r.Content,
			ImageURL:    r.ImageURL,
			CreatedAt:   r.CreatedAt,
			LikedByUser: r.Liked != 0,
		})
	}
	return posts, nil
}

// CreatePost inserts a feed post.
func CreatePost(db *gorm.DB, userID uint64, content, imageURL string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" && imageURL == "" {
		return nil, fmt.Errorf("empty post: %w", ErrValidation)
	}
	post := models.Post{
		UserID:   userID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the post row and, when the post carried an image,
// its stored object. Only the author may delete. Object deletion is
// best-effort: the row is gone regardless.
func DeletePost(ctx context.Context, db *gorm.DB, store storage.ObjectStore, postID, userID uint64) error {
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return err
	}
	if post.UserID != userID {
		return fmt.Errorf("post %d: %w", postID, ErrNotOwner)
	}

	if err := db.Delete(&post).Error; err != nil {
		return err
	}

	if post.ImageURL != "" {
		parts := strings.Split(post.ImageURL, "/")
		key := parts[len(parts)-1]
		if err := store.DeleteObject(ctx, key); err != nil {
			log.Printf("Failed to delete image object for post %d: %v", postID, err)
		}
	}
	return nil
}

// LikePost records a like; a repeat like is a conflict. Duplicates are
// resolved by the unique index on (post_id, user_id) rather than a
// check-then-insert, so two concurrent likes cannot both land.
func LikePost(db *gorm.DB, postID, userID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("post %d: %w", postID, ErrNotFound)
			}
			return err
		}

		if err := tx.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("already liked: %w", ErrConflict)
			}
			return err
		}
		return nil
	})
}

// isDuplicateKey reports whether err is a unique-index violation. Not
// every dialector translates these to gorm.ErrDuplicatedKey, so fall
// back to matching the driver message.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE KEY constraint")
}

// UnlikePost removes a like; not-found when none exists.
func UnlikePost(db *gorm.DB, postID, userID uint64) error {
	result := db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("like on post %d: %w", postID, ErrNotFound)
	}
	return nil
}

// ListComments returns a post's comments oldest first, joined with author
// display data.
func ListComments(db *gorm.DB, postID uint64) ([]CommentView, error) {
	var rows []struct {
		ID        uint64
		UserID    uint64
		PostID    uint64
		Content   string
		CreatedAt time.Time
		UserName  string
		UserPic   string
	}
	err := db.Table("comments").
		Select("comments.id, comments.user_id, comments.post_id, comments.content, comments.created_at, "+
			"users.name AS user_name, users.picture AS user_pic").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	comments := make([]CommentView, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, CommentView(r))
	}
	return comments, nil
}

// CreateComment inserts a comment and returns it with author data.
func CreateComment(db *gorm.DB, userID, postID uint64, content string) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty comment: %w", ErrValidation)
	}

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return nil, err
	}

	comment := models.Comment{UserID: userID, PostID: postID, Content: content}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	return &CommentView{
		ID:        comment.ID,
		UserID:    comment.UserID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserName:  user.Name,
		UserPic:   user.Picture,
	}, nil
}

// DeleteComment removes a comment, but only for its author.
func DeleteComment(db *gorm.DB, commentID, userID uint64) error {
	result := db.Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
	}
	return nil
}
