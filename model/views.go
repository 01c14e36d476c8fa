package model

import "time"

// UserView is the profile projection of a user. Following holds the ids of
// the users this user follows.
type UserView struct {
	Id        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	Bio       string   `json:"bio"`
	IsStaff   bool     `json:"is_staff"`
	Following []string `json:"following"`
}

type HashtagView struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CommentView struct {
	Id      string `json:"id"`
	UserID  string `json:"user"`
	PostID  string `json:"post"`
	Content string `json:"content"`
}

// PostListView is returned by every post listing. Hashtags are rendered by
// name.
type PostListView struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UserID       string    `json:"user"`
	HashtagNames []string  `json:"hashtags"`
	ImageUrl     string    `json:"image,omitempty"`
	LikedBy      []string  `json:"liked_by"`
}

// PostDetailView is returned when a single post is fetched.
type PostDetailView struct {
	Id          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	UserID      string         `json:"user"`
	HashtagList []*HashtagView `json:"hashtags"`
	ImageUrl    string         `json:"image,omitempty"`
	LikedBy     []string       `json:"liked_by"`
	Comments    []*CommentView `json:"comments"`
}
