package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserFollow is a directed "many-to-many" self relation of users

FollowerID: the user who follows
FollowedID: the user being followed, indexed for follower lookups
CreatedAt: time when relation is created

A user's followers are never stored, they are the rows whose FollowedID is
the user.
*/
type UserFollow struct {
	FollowerID string `gorm:"primaryKey"`
	FollowedID string `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}

func (UserFollow) BeforeCreate(db *gorm.DB) error {
	return nil
}
