package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	topic   string
	actor   string
	subject string
}

type recordingPublisher struct {
	m      sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, actorID string, subjectID string) {
	p.m.Lock()
	defer p.m.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, actor: actorID, subject: subjectID})
}

func (p *recordingPublisher) topics() []string {
	p.m.Lock()
	defer p.m.Unlock()
	res := []string{}
	for _, e := range p.events {
		res = append(res, e.topic)
	}
	return res
}

type fixture struct {
	ctx       context.Context
	store     *store.MemoryStore
	media     *media.FakeMediaStore
	publisher *recordingPublisher
	svc       *Services
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		ctx:       context.Background(),
		store:     store.NewMemoryStore(),
		media:     media.NewFakeMediaStore(),
		publisher: &recordingPublisher{},
	}
	f.svc = New(f.store, f.media, nil, f.publisher)
	return f
}

// register creates a user named name and returns it as an actor.
func (f *fixture) register(t *testing.T, name string) *model.User {
	_, err := f.svc.Users.Register(f.ctx, &Identity{Subject: name, Email: name + "@example.com"}, UserInput{})
	require.Nil(t, err)
	actor, err := f.svc.Users.Actor(f.ctx, name)
	require.Nil(t, err)
	require.NotNil(t, actor)
	return actor
}

func (f *fixture) staff(t *testing.T, name string) *model.User {
	u := &model.User{Id: name, Email: name + "@example.com", Username: name, IsStaff: true}
	require.Nil(t, f.store.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) post(t *testing.T, owner *model.User, title string, hashtags ...string) *model.PostDetailView {
	view, err := f.svc.Posts.Create(f.ctx, owner, PostInput{Title: title, Content: title + " content", HashtagNames: hashtags})
	require.Nil(t, err)
	return view
}

func userIDs(views []*model.UserView) []string {
	ids := []string{}
	for _, v := range views {
		ids = append(ids, v.Id)
	}
	return ids
}

func listTitles(views []*model.PostListView) []string {
	titles := []string{}
	for _, v := range views {
		titles = append(titles, v.Title)
	}
	return titles
}
