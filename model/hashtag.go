package model

import "time"

// MaxNameLength bounds post titles and hashtag names.
const MaxNameLength = 65

/*

Hashtag is a label posts can be tagged with

Id: primary key
CreatedAt: time when entity is created
Name: unique, case-sensitive as stored
*/
type Hashtag struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-" gorm:"<-:create"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
}
