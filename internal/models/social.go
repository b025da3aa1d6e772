package models

import (
	"time"
)

// Post is a feed entry, optionally carrying an uploaded image URL.
type Post struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index"`
	Content   string `gorm:"type:text"`
	ImageURL  string `gorm:"size:1024"`
	CreatedAt time.Time
}

// TableName overrides the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Like marks a post as liked by a user, at most once per pair.
type Like struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;uniqueIndex:idx_post_user_like"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time
}

// TableName overrides the table name for Like
func (Like) TableName() string {
	return "likes"
}

// Comment is a user comment on a post.
type Comment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index"`
	PostID    uint64 `gorm:"not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
