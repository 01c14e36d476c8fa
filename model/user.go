package model

import "time"

/*

User is a registered account of the social network

Id: primary key, the subject handed over by the auth provider on registration
CreatedAt: time when entity is created
UpdatedAt: time when profile is updated
Email: unique login email, compared case-sensitively, searched by case-insensitive substring
Username: display name
Bio: free text profile description
IsStaff: elevated privilege, allows hashtag administration

Following edges are not stored on the user row, see UserFollow.
*/
type User struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-" gorm:"<-:create"`
	UpdatedAt time.Time `json:"-"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	IsStaff   bool      `json:"is_staff"`
}
