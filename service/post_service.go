package service

import (
	"context"
	"io"
	"strings"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PostInput creates a post. HashtagIDs must reference existing hashtags,
// HashtagNames are created when missing.
type PostInput struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	HashtagIDs   []string `json:"hashtag_ids"`
	HashtagNames []string `json:"hashtags"`
}

// PostPatch partially updates a post, nil fields are left unchanged. A non
// nil hashtag list replaces the whole hashtag set.
type PostPatch struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	HashtagIDs   *[]string `json:"hashtag_ids"`
	HashtagNames *[]string `json:"hashtags"`
}

type PostService struct {
	store     store.Store
	media     media.MediaStore
	cache     HashtagCache
	projector *projector
	publisher events.Publisher
}

func validateName(field string, name string) error {
	if strings.TrimSpace(name) == "" {
		return utils.Validation("%s is required", field)
	}
	if len([]rune(name)) > model.MaxNameLength {
		return utils.Validation("%s must be at most %d characters", field, model.MaxNameLength)
	}
	return nil
}

func (s *PostService) checkTitle(ctx context.Context, title string, excludeID string) error {
	if err := validateName("title", title); err != nil {
		return err
	}
	taken, err := s.store.PostTitleTaken(ctx, title, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return utils.Validation("post with this title already exists")
	}
	return nil
}

// resolveHashtags returns the hashtag set named by ids and names. Unknown ids
// are a validation error. Unknown names come back in created as well, unsaved,
// for the store to insert together with the post.
func (s *PostService) resolveHashtags(ctx context.Context, ids []string, names []string) (hashtags []*model.Hashtag, created []*model.Hashtag, err error) {
	ids = utils.UniqueStrings(ids)
	names = utils.UniqueStrings(names)
	for _, name := range names {
		if err := validateName("hashtag name", name); err != nil {
			return nil, nil, err
		}
	}

	var res []*model.Hashtag
	if len(ids) > 0 {
		found, err := s.store.GetHashtags(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(ids) {
			return nil, nil, utils.Validation("invalid hashtag id in %v", ids)
		}
		res = append(res, found...)
	}

	if len(names) > 0 {
		existing, err := s.store.GetHashtagsByName(ctx, names)
		if err != nil {
			return nil, nil, err
		}
		byName := make(map[string]*model.Hashtag, len(existing))
		for _, h := range existing {
			byName[h.Name] = h
		}
		for _, name := range names {
			h, ok := byName[name]
			if !ok {
				h = &model.Hashtag{Id: uuid.New().String(), Name: name}
				created = append(created, h)
			}
			res = append(res, h)
		}
	}

	// Dedupe ids reached both by id and by name.
	seen := make(map[string]bool, len(res))
	hashtags = []*model.Hashtag{}
	for _, h := range res {
		if !seen[h.Id] {
			seen[h.Id] = true
			hashtags = append(hashtags, h)
		}
	}
	return hashtags, created, nil
}

func (s *PostService) hashtagsCreated(ctx context.Context, created []*model.Hashtag) {
	if len(created) == 0 {
		return
	}
	for _, h := range created {
		Logger.Log.WithField("hashtag", h.Name).Info("hashtag created with post")
	}
	invalidateHashtagCache(ctx, s.cache)
}

// Create publishes a new post owned by the actor.
func (s *PostService) Create(ctx context.Context, actor *model.User, input PostInput) (view *model.PostDetailView, err error) {
	defer func() { utils.CountOp("post.create", err) }()

	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	if err := s.checkTitle(ctx, input.Title, ""); err != nil {
		return nil, err
	}
	hashtags, created, err := s.resolveHashtags(ctx, input.HashtagIDs, input.HashtagNames)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Id:       uuid.New().String(),
		Title:    input.Title,
		Content:  input.Content,
		UserID:   actor.Id,
		Hashtags: hashtags,
	}
	if err := access.AuthorizeWrite(actor, post); err != nil {
		return nil, err
	}
	if err := s.store.CreatePost(ctx, post, created); err != nil {
		return nil, err
	}
	s.hashtagsCreated(ctx, created)

	Logger.Log.WithField("post", post.Id).WithField("user", actor.Id).Info("post created")
	s.publisher.Publish(ctx, events.TopicPostCreated, actor.Id, post.Id)
	return s.Get(ctx, actor, post.Id)
}

// Get returns the post with its hashtags, likes and comments.
func (s *PostService) Get(ctx context.Context, actor *model.User, id string) (*model.PostDetailView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeRead(actor, post); err != nil {
		return nil, err
	}
	return s.projector.postDetailView(ctx, post)
}

// writablePost loads the post and checks that the actor owns it.
func (s *PostService) writablePost(ctx context.Context, actor *model.User, id string) (*model.Post, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeWrite(actor, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial update. Only the owner may update a post.
func (s *PostService) Update(ctx context.Context, actor *model.User, id string, patch PostPatch) (view *model.PostDetailView, err error) {
	defer func() { utils.CountOp("post.update", err) }()

	if _, err := s.writablePost(ctx, actor, id); err != nil {
		return nil, err
	}

	update := store.PostUpdate{Content: patch.Content}
	if patch.Title != nil {
		if err := s.checkTitle(ctx, *patch.Title, id); err != nil {
			return nil, err
		}
		update.Title = patch.Title
	}
	if patch.HashtagIDs != nil || patch.HashtagNames != nil {
		var ids, names []string
		if patch.HashtagIDs != nil {
			ids = *patch.HashtagIDs
		}
		if patch.HashtagNames != nil {
			names = *patch.HashtagNames
		}
		hashtags, created, err := s.resolveHashtags(ctx, ids, names)
		if err != nil {
			return nil, err
		}
		hashtagIDs := make([]string, 0, len(hashtags))
		for _, h := range hashtags {
			hashtagIDs = append(hashtagIDs, h.Id)
		}
		update.HashtagIDs = &hashtagIDs
		update.NewHashtags = created
	}

	updated, err := s.store.UpdatePost(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.hashtagsCreated(ctx, update.NewHashtags)

	Logger.Log.WithField("post", id).WithField("user", actor.Id).Info("post updated")
	s.publisher.Publish(ctx, events.TopicPostUpdated, actor.Id, id)
	return s.projector.postDetailView(ctx, updated)
}

// Delete removes the post with its likes and comments. Only the owner may
// delete a post.
func (s *PostService) Delete(ctx context.Context, actor *model.User, id string) (err error) {
	defer func() { utils.CountOp("post.delete", err) }()

	post, err := s.writablePost(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	if post.Image != "" && s.media != nil {
		if err := s.media.Delete(ctx, post.Image); err != nil {
			Logger.Log.WithField("post", id).Warn("fail to delete post image: ", err)
		}
	}

	Logger.Log.WithField("post", id).WithField("user", actor.Id).Info("post deleted")
	s.publisher.Publish(ctx, events.TopicPostDeleted, actor.Id, id)
	return nil
}

// UploadImage stores body in the media store and attaches it to the post,
// replacing any previous image. Only the owner may upload.
func (s *PostService) UploadImage(ctx context.Context, actor *model.User, id string, fileName string, body io.Reader, contentType string) (view *model.PostDetailView, err error) {
	defer func() { utils.CountOp("post.upload_image", err) }()

	post, err := s.writablePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, errors.New("media store is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, utils.Validation("upload a valid image, got content type %q", contentType)
	}

	key := media.PostImageKey(post.Title, fileName)
	if err := s.media.Put(ctx, key, body, contentType); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdatePost(ctx, id, store.PostUpdate{Image: &key})
	if err != nil {
		return nil, err
	}
	if post.Image != "" {
		if err := s.media.Delete(ctx, post.Image); err != nil {
			Logger.Log.WithField("post", id).Warn("fail to delete replaced image: ", err)
		}
	}

	Logger.Log.WithField("post", id).WithField("image", key).Info("post image uploaded")
	s.publisher.Publish(ctx, events.TopicPostUpdated, actor.Id, id)
	return s.projector.postDetailView(ctx, updated)
}
