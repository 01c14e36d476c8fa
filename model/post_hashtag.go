package model

import (
	"gorm.io/gorm"
)

/*

PostHashtag is a "many-to-many" relation of a post tagged with a hashtag

PostID: post id
HashtagID: hashtag id, indexed for hashtag filtered listing

*/
type PostHashtag struct {
	PostID    string `gorm:"primaryKey"`
	HashtagID string `gorm:"primaryKey;index"`
}

func (PostHashtag) BeforeCreate(db *gorm.DB) error {
	return nil
}
