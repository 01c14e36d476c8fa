package service

import (
	"testing"

	"github.com/Luismorlan/socialmux/events"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeUnlikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice, "Hello")

	view, err := f.svc.Likes.Like(f.ctx, bob, post.Id)
	require.Nil(t, err)
	assert.Equal(t, []string{bob.Id}, view.LikedBy)

	view, err = f.svc.Likes.Like(f.ctx, bob, post.Id)
	require.Nil(t, err)
	assert.Equal(t, []string{bob.Id}, view.LikedBy)

	liked, err := f.svc.Feed.LikedPosts(f.ctx, bob)
	require.Nil(t, err)
	assert.Equal(t, []string{"Hello"}, listTitles(liked))

	view, err = f.svc.Likes.Unlike(f.ctx, bob, post.Id)
	require.Nil(t, err)
	assert.Empty(t, view.LikedBy)

	_, err = f.svc.Likes.Unlike(f.ctx, bob, post.Id)
	require.Nil(t, err)

	liked, err = f.svc.Feed.LikedPosts(f.ctx, bob)
	require.Nil(t, err)
	assert.Empty(t, liked)

	assert.Contains(t, f.publisher.topics(), events.TopicPostLiked)
	assert.Contains(t, f.publisher.topics(), events.TopicPostUnliked)
}

func TestLikeErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.post(t, alice, "Hello")

	_, err := f.svc.Likes.Like(f.ctx, nil, post.Id)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
	_, err = f.svc.Likes.Unlike(f.ctx, nil, post.Id)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = f.svc.Likes.Like(f.ctx, alice, uuid.New().String())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = f.svc.Likes.Unlike(f.ctx, alice, uuid.New().String())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}
