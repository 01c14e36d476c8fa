package model

import (
	"time"
)

/*

Post is a piece of content published by a user

Id: primary key
CreatedAt: time when entity is created, never updated afterwards
UpdatedAt: time when content, hashtags or image were changed

Title: globally unique title, not unique per user
Content: post body in plain text
UserID: owner, set at creation and never reassigned
Hashtags: hashtags the post is tagged with, "many-to-many" relation
Image: blob store key of the attached image, empty when there is none

Users who liked the post live in PostLike, comments in Comment.
*/
type Post struct {
	Id        string     `gorm:"primaryKey"`
	CreatedAt time.Time  `gorm:"<-:create;index"`
	UpdatedAt time.Time
	Title     string     `gorm:"uniqueIndex"`
	Content   string
	UserID    string     `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User      *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Hashtags  []*Hashtag `gorm:"many2many:post_hashtags;constraint:OnDelete:CASCADE;"`
	Image     string
}

// HashtagIDs returns ids of the hashtags loaded on the post.
func (p *Post) HashtagIDs() []string {
	ids := make([]string, 0, len(p.Hashtags))
	for _, h := range p.Hashtags {
		ids = append(ids, h.Id)
	}
	return ids
}

// HashtagNames returns names of the hashtags loaded on the post.
func (p *Post) HashtagNames() []string {
	names := make([]string, 0, len(p.Hashtags))
	for _, h := range p.Hashtags {
		names = append(names, h.Name)
	}
	return names
}
