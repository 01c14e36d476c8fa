package service

import (
	"context"
	"strings"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/google/uuid"
)

// FeedService computes feeds from the graph at request time. Nothing is
// materialized, two consecutive reads may observe different graph states.
type FeedService struct {
	store     store.Store
	projector *projector
}

// ParseHashtagFilter parses a comma separated list of hashtag ids. An empty
// list means no filter and yields nil.
func ParseHashtagFilter(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := uuid.Parse(part); err != nil {
			return nil, utils.Validation("invalid hashtag id %q", part)
		}
		ids = append(ids, part)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return utils.UniqueStrings(ids), nil
}

// MyPosts returns every post owned by the actor.
func (s *FeedService) MyPosts(ctx context.Context, actor *model.User) ([]*model.PostListView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, store.PostQuery{OwnerIDs: []string{actor.Id}})
}

// FollowingFeed returns the posts of every user the actor follows.
func (s *FeedService) FollowingFeed(ctx context.Context, actor *model.User) ([]*model.PostListView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	following, err := s.store.FollowingIDs(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.PostQuery{OwnerIDs: nonNil(following)})
}

// LikedPosts returns the posts in the actor's liked set.
func (s *FeedService) LikedPosts(ctx context.Context, actor *model.User) ([]*model.PostListView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	liked, err := s.store.LikedPostIDs(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.PostQuery{IDs: nonNil(liked)})
}

// ListPosts returns all posts, or with hashtagIDs set the posts tagged with
// at least one of them.
func (s *FeedService) ListPosts(ctx context.Context, actor *model.User, hashtagIDs []string) ([]*model.PostListView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, store.PostQuery{HashtagIDs: hashtagIDs})
}

func (s *FeedService) list(ctx context.Context, q store.PostQuery) ([]*model.PostListView, error) {
	posts, err := s.store.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.projector.postListViews(ctx, posts)
}
