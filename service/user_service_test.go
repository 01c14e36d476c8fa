package service

import (
	"testing"

	"github.com/Luismorlan/socialmux/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	f := newFixture(t)
	identity := &Identity{Subject: "sub-1", Email: "alice@example.com"}

	first, err := f.svc.Users.Register(f.ctx, identity, UserInput{Username: "alice", Bio: "hi"})
	require.Nil(t, err)
	assert.Equal(t, "sub-1", first.Id)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, []string{}, first.Following)

	second, err := f.svc.Users.Register(f.ctx, identity, UserInput{Username: "other"})
	require.Nil(t, err)
	assert.Equal(t, first, second)

	_, err = f.svc.Users.Register(f.ctx, nil, UserInput{})
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = f.svc.Users.Register(f.ctx, &Identity{Subject: "sub-2"}, UserInput{})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.svc.Users.Register(f.ctx, &Identity{Subject: "sub-3", Email: "alice@example.com"}, UserInput{})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	defaulted, err := f.svc.Users.Register(f.ctx, &Identity{Subject: "sub-4"}, UserInput{Email: "bob@example.com"})
	require.Nil(t, err)
	assert.Equal(t, "bob", defaulted.Username)
}

func TestMeAndUpdateMe(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	require.Nil(t, f.svc.Graph.Follow(f.ctx, alice, bob.Id))

	me, err := f.svc.Users.Me(f.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, []string{bob.Id}, me.Following)

	_, err = f.svc.Users.Me(f.ctx, nil)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	bio := "hello there"
	updated, err := f.svc.Users.UpdateMe(f.ctx, alice, UserPatch{Bio: &bio})
	require.Nil(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, "alice@example.com", updated.Email)

	taken := "bob@example.com"
	_, err = f.svc.Users.UpdateMe(f.ctx, alice, UserPatch{Email: &taken})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	invalid := "not-an-email"
	_, err = f.svc.Users.UpdateMe(f.ctx, alice, UserPatch{Email: &invalid})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestGetAndSearchUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	got, err := f.svc.Users.Get(f.ctx, alice, bob.Id)
	require.Nil(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	_, err = f.svc.Users.Get(f.ctx, alice, "nobody")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = f.svc.Users.Get(f.ctx, nil, bob.Id)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	found, err := f.svc.Users.Search(f.ctx, alice, "BOB")
	require.Nil(t, err)
	assert.Equal(t, []string{bob.Id}, userIDs(found))

	all, err := f.svc.Users.Search(f.ctx, alice, "")
	require.Nil(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Users.Search(f.ctx, nil, "bob")
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	actor, err := f.svc.Users.Actor(f.ctx, "nobody")
	require.Nil(t, err)
	assert.Nil(t, actor)
}
