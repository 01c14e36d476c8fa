package service

import (
	"context"
	"strings"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/google/uuid"
)

// CommentService exposes comments as a collection scoped to their owner:
// another user's comment doesn't exist from the caller's point of view.
type CommentService struct {
	store     store.Store
	publisher events.Publisher
}

// Create comments on an existing post as the actor.
func (s *CommentService) Create(ctx context.Context, actor *model.User, postID string, content string) (view *model.CommentView, err error) {
	defer func() { utils.CountOp("comment.create", err) }()

	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, utils.Validation("content is required")
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Id:      uuid.New().String(),
		UserID:  actor.Id,
		PostID:  postID,
		Content: content,
	}
	if err := access.AuthorizeWrite(actor, comment); err != nil {
		return nil, err
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	Logger.Log.WithField("comment", comment.Id).WithField("post", postID).Info("comment created")
	s.publisher.Publish(ctx, events.TopicCommentCreated, actor.Id, comment.Id)
	return commentView(comment), nil
}

// List returns the actor's own comments.
func (s *CommentService) List(ctx context.Context, actor *model.User) ([]*model.CommentView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	comments, err := s.store.ListCommentsByOwner(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return commentViews(comments), nil
}

// scoped loads a comment of the actor. Comments of other users are reported
// as not found.
func (s *CommentService) scoped(ctx context.Context, actor *model.User, id string) (*model.Comment, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(actor, comment) || !access.CanWrite(actor, comment) {
		return nil, utils.NotFound("comment %s not found", id)
	}
	return comment, nil
}

func (s *CommentService) Get(ctx context.Context, actor *model.User, id string) (*model.CommentView, error) {
	comment, err := s.scoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return commentView(comment), nil
}

func (s *CommentService) Update(ctx context.Context, actor *model.User, id string, content string) (*model.CommentView, error) {
	if _, err := s.scoped(ctx, actor, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, utils.Validation("content is required")
	}
	comment, err := s.store.UpdateComment(ctx, id, content)
	if err != nil {
		return nil, err
	}
	return commentView(comment), nil
}

func (s *CommentService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.scoped(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}
	Logger.Log.WithField("comment", id).WithField("user", actor.Id).Info("comment deleted")
	return nil
}
