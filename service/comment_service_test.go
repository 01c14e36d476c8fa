package service

import (
	"testing"

	"github.com/Luismorlan/socialmux/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice, "Hello")

	bobs, err := f.svc.Comments.Create(f.ctx, bob, post.Id, "from bob")
	require.Nil(t, err)
	_, err = f.svc.Comments.Create(f.ctx, alice, post.Id, "from alice")
	require.Nil(t, err)

	own, err := f.svc.Comments.List(f.ctx, bob)
	require.Nil(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, bobs, own[0])

	_, err = f.svc.Comments.Get(f.ctx, alice, bobs.Id)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = f.svc.Comments.Update(f.ctx, alice, bobs.Id, "edited by alice")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	err = f.svc.Comments.Delete(f.ctx, alice, bobs.Id)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	got, err := f.svc.Comments.Get(f.ctx, bob, bobs.Id)
	require.Nil(t, err)
	assert.Equal(t, "from bob", got.Content)

	updated, err := f.svc.Comments.Update(f.ctx, bob, bobs.Id, "edited")
	require.Nil(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.Nil(t, f.svc.Comments.Delete(f.ctx, bob, bobs.Id))
	own, err = f.svc.Comments.List(f.ctx, bob)
	require.Nil(t, err)
	assert.Empty(t, own)
}

func TestCreateCommentErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.post(t, alice, "Hello")

	_, err := f.svc.Comments.Create(f.ctx, nil, post.Id, "anon")
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = f.svc.Comments.Create(f.ctx, alice, uuid.New().String(), "orphan")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.svc.Comments.Create(f.ctx, alice, post.Id, "")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.Comments.List(f.ctx, nil)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}
