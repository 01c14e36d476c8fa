package model

import (
	"time"

	"gorm.io/gorm"
)

/*

PostLike is a "many-to-many" relation of a user liking a post

PostID: post id
UserID: user id, indexed for liked posts lookups
CreatedAt: time when relation is created

A (user, post) pair is either liked or not, no history is kept.
*/
type PostLike struct {
	PostID    string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (PostLike) BeforeCreate(db *gorm.DB) error {
	return nil
}
