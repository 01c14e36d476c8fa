// Package service implements the operations of the social graph on top of a
// store.Store. Every operation takes the acting user explicitly, a nil actor
// being an unauthenticated caller, and evaluates the access rules before any
// write is issued.
package service

import (
	"context"

	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	Logger "github.com/Luismorlan/socialmux/utils/log"
)

// HashtagCache caches the open hashtag listing, *utils.RedisClient in
// production.
type HashtagCache interface {
	GetHashtags(ctx context.Context) ([]*model.Hashtag, bool)
	SetHashtags(ctx context.Context, hashtags []*model.Hashtag) error
	InvalidateHashtags(ctx context.Context) error
}

// invalidateHashtagCache drops the cached listing after any hashtag write,
// staff managed or created along with a post.
func invalidateHashtagCache(ctx context.Context, cache HashtagCache) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateHashtags(ctx); err != nil {
		Logger.Log.Warn("fail to invalidate hashtag cache: ", err)
	}
}

// Services bundles every service sharing the same dependencies.
type Services struct {
	Users    *UserService
	Graph    *GraphService
	Feed     *FeedService
	Likes    *LikeEngine
	Posts    *PostService
	Comments *CommentService
	Hashtags *HashtagService
}

// New wires all services. cache may be nil, publisher may be nil.
func New(s store.Store, mediaStore media.MediaStore, cache HashtagCache, publisher events.Publisher) *Services {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	p := &projector{store: s, media: mediaStore}
	return &Services{
		Users:    &UserService{store: s, projector: p},
		Graph:    &GraphService{store: s, projector: p, publisher: publisher},
		Feed:     &FeedService{store: s, projector: p},
		Likes:    &LikeEngine{store: s, projector: p, publisher: publisher},
		Posts:    &PostService{store: s, media: mediaStore, cache: cache, projector: p, publisher: publisher},
		Comments: &CommentService{store: s, publisher: publisher},
		Hashtags: &HashtagService{store: s, cache: cache},
	}
}
