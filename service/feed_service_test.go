package service

import (
	"testing"

	"github.com/Luismorlan/socialmux/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHashtagFilter(t *testing.T) {
	id1 := uuid.New().String()
	id2 := uuid.New().String()

	ids, err := ParseHashtagFilter("")
	require.Nil(t, err)
	assert.Nil(t, ids)

	ids, err = ParseHashtagFilter(" , ")
	require.Nil(t, err)
	assert.Nil(t, ids)

	ids, err = ParseHashtagFilter(id1 + ", " + id2 + "," + id1)
	require.Nil(t, err)
	assert.Equal(t, []string{id1, id2}, ids)

	_, err = ParseHashtagFilter(id1 + ",1")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestListPostsFilterIsASetJoin(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	both := f.post(t, alice, "both", "go", "rust")
	f.post(t, alice, "rust only", "rust")
	f.post(t, alice, "zig only", "zig")
	f.post(t, alice, "untagged")

	var goID, rustID string
	for _, h := range both.HashtagList {
		switch h.Name {
		case "go":
			goID = h.Id
		case "rust":
			rustID = h.Id
		}
	}

	posts, err := f.svc.Feed.ListPosts(f.ctx, alice, []string{goID, rustID})
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"both", "rust only"}, listTitles(posts))

	all, err := f.svc.Feed.ListPosts(f.ctx, alice, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"both", "rust only", "zig only", "untagged"}, listTitles(all))
	assert.ElementsMatch(t, []string{"go", "rust"}, all[0].HashtagNames)
	assert.Equal(t, []string{}, all[3].HashtagNames)

	_, err = f.svc.Feed.ListPosts(f.ctx, nil, nil)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestFollowingFeedIsUnionOfFollowedPosts(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	dave := f.register(t, "dave")

	f.post(t, alice, "a1")
	f.post(t, bob, "b1")
	f.post(t, alice, "a2")
	f.post(t, carol, "c1")
	f.post(t, dave, "d1")

	feed, err := f.svc.Feed.FollowingFeed(f.ctx, dave)
	require.Nil(t, err)
	assert.Empty(t, feed)

	require.Nil(t, f.svc.Graph.Follow(f.ctx, dave, alice.Id))
	require.Nil(t, f.svc.Graph.Follow(f.ctx, dave, carol.Id))

	feed, err = f.svc.Feed.FollowingFeed(f.ctx, dave)
	require.Nil(t, err)

	following, err := f.svc.Graph.ListFollowing(f.ctx, dave)
	require.Nil(t, err)
	union := []string{}
	for _, u := range following {
		owner, err := f.svc.Users.Actor(f.ctx, u.Id)
		require.Nil(t, err)
		posts, err := f.svc.Feed.MyPosts(f.ctx, owner)
		require.Nil(t, err)
		union = append(union, listTitles(posts)...)
	}
	assert.ElementsMatch(t, union, listTitles(feed))
	assert.Equal(t, []string{"a1", "a2", "c1"}, listTitles(feed))
}

func TestMyPostsProjection(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	created := f.post(t, alice, "Hello", "go")
	f.post(t, bob, "other")
	_, err := f.svc.Likes.Like(f.ctx, bob, created.Id)
	require.Nil(t, err)

	posts, err := f.svc.Feed.MyPosts(f.ctx, alice)
	require.Nil(t, err)
	require.Len(t, posts, 1)

	got := *posts[0]
	want := got
	want.Id = created.Id
	want.Title = "Hello"
	want.Content = "Hello content"
	want.UserID = alice.Id
	want.HashtagNames = []string{"go"}
	want.LikedBy = []string{bob.Id}
	want.ImageUrl = ""
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("post projection mismatch (-want +got):\n%s", diff)
	}
}
