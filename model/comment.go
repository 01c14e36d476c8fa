package model

import "time"

/*

Comment is a flat comment on a post

Id: primary key
CreatedAt: time when entity is created
UserID: owner
PostID: parent post, immutable
Content: comment body
*/
type Comment struct {
	Id        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"<-:create"`
	UserID    string    `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PostID    string    `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Content   string
}
