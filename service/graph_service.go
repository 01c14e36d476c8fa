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

// GraphService maintains the following adjacency. Followers are never stored,
// they are the reverse lookup of the same edges.
type GraphService struct {
	store     store.Store
	projector *projector
	publisher events.Publisher
}

// Follow adds target to the actor's following set. Following an already
// followed user, or oneself, changes nothing.
func (s *GraphService) Follow(ctx context.Context, actor *model.User, targetID string) (err error) {
	defer func() { utils.CountOp("graph.follow", err) }()

	if err := access.RequireActor(actor); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return err
	}
	if targetID == actor.Id {
		return nil
	}
	if err := s.store.AddFollowing(ctx, actor.Id, targetID); err != nil {
		return err
	}

	Logger.Log.WithField("follower", actor.Id).WithField("followed", targetID).Info("user followed")
	s.publisher.Publish(ctx, events.TopicUserFollowed, actor.Id, targetID)
	return nil
}

// Unfollow removes target from the actor's following set if present.
func (s *GraphService) Unfollow(ctx context.Context, actor *model.User, targetID string) (err error) {
	defer func() { utils.CountOp("graph.unfollow", err) }()

	if err := access.RequireActor(actor); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.store.RemoveFollowing(ctx, actor.Id, targetID); err != nil {
		return err
	}

	Logger.Log.WithField("follower", actor.Id).WithField("followed", targetID).Info("user unfollowed")
	s.publisher.Publish(ctx, events.TopicUserUnfollowed, actor.Id, targetID)
	return nil
}

// ListFollowing returns the users the actor follows, each annotated with its
// own following set.
func (s *GraphService) ListFollowing(ctx context.Context, actor *model.User) ([]*model.UserView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	ids, err := s.store.FollowingIDs(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return s.usersByIDs(ctx, ids)
}

// ListFollowers returns the users whose following set contains the actor.
func (s *GraphService) ListFollowers(ctx context.Context, actor *model.User) ([]*model.UserView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	ids, err := s.store.FollowerIDs(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	return s.usersByIDs(ctx, ids)
}

func (s *GraphService) usersByIDs(ctx context.Context, ids []string) ([]*model.UserView, error) {
	if len(ids) == 0 {
		return []*model.UserView{}, nil
	}
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.projector.userViews(ctx, users)
}
