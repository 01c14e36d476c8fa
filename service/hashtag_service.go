package service

import (
	"context"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/google/uuid"
)

// HashtagService serves hashtags to anyone and lets staff curate them.
type HashtagService struct {
	store store.Store
	cache HashtagCache
}

// List returns every hashtag, from cache when possible.
func (s *HashtagService) List(ctx context.Context, actor *model.User) ([]*model.HashtagView, error) {
	if s.cache != nil {
		if hashtags, ok := s.cache.GetHashtags(ctx); ok {
			return hashtagViews(hashtags), nil
		}
	}
	hashtags, err := s.store.ListHashtags(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetHashtags(ctx, hashtags); err != nil {
			Logger.Log.Warn("fail to cache hashtags: ", err)
		}
	}
	return hashtagViews(hashtags), nil
}

func (s *HashtagService) Get(ctx context.Context, actor *model.User, id string) (*model.HashtagView, error) {
	h, err := s.store.GetHashtag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeRead(actor, h); err != nil {
		return nil, err
	}
	return &model.HashtagView{Id: h.Id, Name: h.Name}, nil
}

func (s *HashtagService) Create(ctx context.Context, actor *model.User, name string) (*model.HashtagView, error) {
	h := &model.Hashtag{Id: uuid.New().String(), Name: name}
	if err := access.AuthorizeWrite(actor, h); err != nil {
		return nil, err
	}
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	if err := s.store.CreateHashtag(ctx, h); err != nil {
		return nil, err
	}
	invalidateHashtagCache(ctx, s.cache)
	Logger.Log.WithField("hashtag", name).WithField("user", actor.Id).Info("hashtag created")
	return &model.HashtagView{Id: h.Id, Name: h.Name}, nil
}

func (s *HashtagService) Update(ctx context.Context, actor *model.User, id string, name string) (*model.HashtagView, error) {
	if err := access.AuthorizeWrite(actor, &model.Hashtag{Id: id}); err != nil {
		return nil, err
	}
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	h, err := s.store.RenameHashtag(ctx, id, name)
	if err != nil {
		return nil, err
	}
	invalidateHashtagCache(ctx, s.cache)
	Logger.Log.WithField("hashtag", id).WithField("user", actor.Id).Info("hashtag renamed to ", name)
	return &model.HashtagView{Id: h.Id, Name: h.Name}, nil
}

// Delete removes the hashtag from every post tagged with it.
func (s *HashtagService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := access.AuthorizeWrite(actor, &model.Hashtag{Id: id}); err != nil {
		return err
	}
	if err := s.store.DeleteHashtag(ctx, id); err != nil {
		return err
	}
	invalidateHashtagCache(ctx, s.cache)
	Logger.Log.WithField("hashtag", id).WithField("user", actor.Id).Info("hashtag deleted")
	return nil
}
