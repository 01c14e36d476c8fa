// Package store holds the identity and content stores of the social graph.
//
// Every relation (follow, like, post-hashtag) is an explicit adjacency set
// mutated with insert-if-absent and remove-if-present operations, so
// concurrent callers never produce duplicate edges.
package store

import (
	"context"

	"github.com/Luismorlan/socialmux/model"
)

// PostQuery selects posts. Empty fields don't restrict the result; a non-nil
// but empty slice matches nothing. Results are ordered by creation time and
// each post appears once.
type PostQuery struct {
	// Posts owned by any of these users.
	OwnerIDs []string
	// Posts whose hashtag set intersects this set.
	HashtagIDs []string
	// Posts with these ids.
	IDs []string
}

// UserUpdate lists the mutable profile fields, nil means unchanged.
type UserUpdate struct {
	Email    *string
	Username *string
	Bio      *string
}

// PostUpdate lists the mutable post fields, nil means unchanged. HashtagIDs
// replaces the whole hashtag set. NewHashtags are inserted together with the
// update and may be referenced by HashtagIDs.
type PostUpdate struct {
	Title       *string
	Content     *string
	Image       *string
	HashtagIDs  *[]string
	NewHashtags []*model.Hashtag
}

type IdentityStore interface {
	// CreateUser inserts u. Duplicate email is a validation error, emails
	// compare case-sensitively.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUsers returns the known users among ids in creation order.
	GetUsers(ctx context.Context, ids []string) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*model.User, error)
	// SearchUsersByEmail matches a case-insensitive email substring, all users
	// for an empty substring.
	SearchUsersByEmail(ctx context.Context, substr string) ([]*model.User, error)

	AddFollowing(ctx context.Context, followerID, followedID string) error
	RemoveFollowing(ctx context.Context, followerID, followedID string) error
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	// FollowingIDsOf batch loads the following sets of many users.
	FollowingIDsOf(ctx context.Context, userIDs []string) (map[string][]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

type ContentStore interface {
	CreateHashtag(ctx context.Context, h *model.Hashtag) error
	GetHashtag(ctx context.Context, id string) (*model.Hashtag, error)
	GetHashtags(ctx context.Context, ids []string) ([]*model.Hashtag, error)
	GetHashtagsByName(ctx context.Context, names []string) ([]*model.Hashtag, error)
	ListHashtags(ctx context.Context) ([]*model.Hashtag, error)
	RenameHashtag(ctx context.Context, id string, name string) (*model.Hashtag, error)
	DeleteHashtag(ctx context.Context, id string) error

	// CreatePost inserts p with its hashtag set. newHashtags are inserted in
	// the same transaction, so a failed post leaves none of them behind.
	// Duplicate title is a validation error.
	CreatePost(ctx context.Context, p *model.Post, newHashtags []*model.Hashtag) error
	// GetPost returns the post with its hashtags loaded.
	GetPost(ctx context.Context, id string) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, update PostUpdate) (*model.Post, error)
	// DeletePost removes the post together with its likes, hashtag joins and
	// comments.
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, q PostQuery) ([]*model.Post, error)
	// PostTitleTaken reports whether a post other than excludeID uses title.
	PostTitleTaken(ctx context.Context, title string, excludeID string) (bool, error)

	AddLike(ctx context.Context, userID, postID string) error
	RemoveLike(ctx context.Context, userID, postID string) error
	LikedPostIDs(ctx context.Context, userID string) ([]string, error)
	// LikerIDsOf batch loads the liked-by sets of many posts.
	LikerIDsOf(ctx context.Context, postIDs []string) (map[string][]string, error)

	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	UpdateComment(ctx context.Context, id string, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListCommentsByOwner(ctx context.Context, userID string) ([]*model.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error)
}

// Store is the storage every service runs against.
type Store interface {
	IdentityStore
	ContentStore
}
