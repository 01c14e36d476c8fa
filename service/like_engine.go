package service

import (
	"context"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
)

// LikeEngine moves a (user, post) pair between Liked and NotLiked. Both
// transitions are idempotent and no history is kept.
type LikeEngine struct {
	store     store.Store
	projector *projector
	publisher events.Publisher
}

// Like adds the actor to the post's liked-by set and returns the post.
func (e *LikeEngine) Like(ctx context.Context, actor *model.User, postID string) (view *model.PostDetailView, err error) {
	defer func() { utils.CountOp("post.like", err) }()

	post, err := e.checkedPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if err := e.store.AddLike(ctx, actor.Id, postID); err != nil {
		return nil, err
	}

	Logger.Log.WithField("user", actor.Id).WithField("post", postID).Info("post liked")
	e.publisher.Publish(ctx, events.TopicPostLiked, actor.Id, postID)
	return e.projector.postDetailView(ctx, post)
}

// Unlike removes the actor from the post's liked-by set and returns the post.
func (e *LikeEngine) Unlike(ctx context.Context, actor *model.User, postID string) (view *model.PostDetailView, err error) {
	defer func() { utils.CountOp("post.unlike", err) }()

	post, err := e.checkedPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if err := e.store.RemoveLike(ctx, actor.Id, postID); err != nil {
		return nil, err
	}

	Logger.Log.WithField("user", actor.Id).WithField("post", postID).Info("post unliked")
	e.publisher.Publish(ctx, events.TopicPostUnliked, actor.Id, postID)
	return e.projector.postDetailView(ctx, post)
}

func (e *LikeEngine) checkedPost(ctx context.Context, actor *model.User, postID string) (*model.Post, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	return e.store.GetPost(ctx, postID)
}
