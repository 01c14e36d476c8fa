package service

import (
	"context"

	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// projector turns stored entities into the views returned to callers. Every
// relation a view carries is batch loaded once per call, never per record.
type projector struct {
	store store.Store
	media media.MediaStore
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (p *projector) userViews(ctx context.Context, users []*model.User) ([]*model.UserView, error) {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.Id)
	}
	following, err := p.store.FollowingIDsOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*model.UserView, 0, len(users))
	for _, u := range users {
		var view model.UserView
		if err := copier.Copy(&view, u); err != nil {
			return nil, errors.Wrap(err, "fail to project user")
		}
		view.Following = nonNil(following[u.Id])
		views = append(views, &view)
	}
	return views, nil
}

func (p *projector) userView(ctx context.Context, u *model.User) (*model.UserView, error) {
	views, err := p.userViews(ctx, []*model.User{u})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (p *projector) imageUrl(key string) string {
	if key == "" || p.media == nil {
		return ""
	}
	return p.media.GetUrlFromKey(key)
}

func (p *projector) postListViews(ctx context.Context, posts []*model.Post) ([]*model.PostListView, error) {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.Id)
	}
	likers, err := p.store.LikerIDsOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*model.PostListView, 0, len(posts))
	for _, post := range posts {
		var view model.PostListView
		if err := copier.Copy(&view, post); err != nil {
			return nil, errors.Wrap(err, "fail to project post")
		}
		view.HashtagNames = post.HashtagNames()
		view.ImageUrl = p.imageUrl(post.Image)
		view.LikedBy = nonNil(likers[post.Id])
		views = append(views, &view)
	}
	return views, nil
}

func (p *projector) postDetailView(ctx context.Context, post *model.Post) (*model.PostDetailView, error) {
	likers, err := p.store.LikerIDsOf(ctx, []string{post.Id})
	if err != nil {
		return nil, err
	}
	comments, err := p.store.ListCommentsByPost(ctx, post.Id)
	if err != nil {
		return nil, err
	}

	var view model.PostDetailView
	if err := copier.Copy(&view, post); err != nil {
		return nil, errors.Wrap(err, "fail to project post")
	}
	view.HashtagList = hashtagViews(post.Hashtags)
	view.ImageUrl = p.imageUrl(post.Image)
	view.LikedBy = nonNil(likers[post.Id])
	view.Comments = commentViews(comments)
	return &view, nil
}

func hashtagViews(hashtags []*model.Hashtag) []*model.HashtagView {
	views := make([]*model.HashtagView, 0, len(hashtags))
	for _, h := range hashtags {
		views = append(views, &model.HashtagView{Id: h.Id, Name: h.Name})
	}
	return views
}

func commentViews(comments []*model.Comment) []*model.CommentView {
	views := make([]*model.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView(c))
	}
	return views
}

func commentView(c *model.Comment) *model.CommentView {
	return &model.CommentView{Id: c.Id, UserID: c.UserID, PostID: c.PostID, Content: c.Content}
}
