package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/utils"
)

type memPost struct {
	post     model.Post
	hashtags map[string]bool
	seq      int64
}

// MemoryStore keeps the whole graph in process memory. Each mutation is one
// critical section, which gives the same atomic set semantics as the SQL
// store. Used by dev mode and tests.
type MemoryStore struct {
	m   sync.RWMutex
	seq int64

	users    map[string]*model.User
	userSeq  map[string]int64
	follows  map[string]map[string]int64
	hashtags map[string]*model.Hashtag
	tagSeq   map[string]int64
	posts    map[string]*memPost
	likes    map[string]map[string]int64
	comments map[string]*model.Comment
	cmtSeq   map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*model.User),
		userSeq:  make(map[string]int64),
		follows:  make(map[string]map[string]int64),
		hashtags: make(map[string]*model.Hashtag),
		tagSeq:   make(map[string]int64),
		posts:    make(map[string]*memPost),
		likes:    make(map[string]map[string]int64),
		comments: make(map[string]*model.Comment),
		cmtSeq:   make(map[string]int64),
	}
}

func (s *MemoryStore) next() int64 {
	s.seq++
	return s.seq
}

// orderedKeys returns keys of m sorted by their sequence value.
func orderedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return m[keys[i]] < m[keys[j]] })
	return keys
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.users[u.Id]; ok {
		return utils.Validation("user %s already exists", u.Id)
	}
	for _, existing := range s.users {
		if u.Email != "" && existing.Email == u.Email {
			return utils.Validation("user with email %s already exists", u.Email)
		}
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.Id] = copyUser(u)
	s.userSeq[u.Id] = s.next()
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, utils.NotFound("user %s not found", id)
	}
	return copyUser(u), nil
}

func (s *MemoryStore) GetUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []*model.User{}
	for _, id := range utils.UniqueStrings(ids) {
		if u, ok := s.users[id]; ok {
			res = append(res, copyUser(u))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return s.userSeq[res[i].Id] < s.userSeq[res[j].Id]
	})
	return res, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*model.User, error) {
	s.m.Lock()
	defer s.m.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, utils.NotFound("user %s not found", id)
	}
	if update.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *update.Email {
				return nil, utils.Validation("user with email %s already exists", *update.Email)
			}
		}
		u.Email = *update.Email
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (s *MemoryStore) SearchUsersByEmail(ctx context.Context, substr string) ([]*model.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	needle := strings.ToLower(substr)
	res := []*model.User{}
	for _, id := range orderedKeys(s.userSeq) {
		u := s.users[id]
		if strings.Contains(strings.ToLower(u.Email), needle) {
			res = append(res, copyUser(u))
		}
	}
	return res, nil
}

func (s *MemoryStore) AddFollowing(ctx context.Context, followerID, followedID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	set, ok := s.follows[followerID]
	if !ok {
		set = make(map[string]int64)
		s.follows[followerID] = set
	}
	if _, exists := set[followedID]; !exists {
		set[followedID] = s.next()
	}
	return nil
}

func (s *MemoryStore) RemoveFollowing(ctx context.Context, followerID, followedID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.follows[followerID], followedID)
	return nil
}

func (s *MemoryStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return orderedKeys(s.follows[userID]), nil
}

func (s *MemoryStore) FollowingIDsOf(ctx context.Context, userIDs []string) (map[string][]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := make(map[string][]string, len(userIDs))
	for _, id := range userIDs {
		res[id] = orderedKeys(s.follows[id])
	}
	return res, nil
}

func (s *MemoryStore) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	followers := make(map[string]int64)
	for followerID, set := range s.follows {
		if seq, ok := set[userID]; ok {
			followers[followerID] = seq
		}
	}
	return orderedKeys(followers), nil
}

func (s *MemoryStore) CreateHashtag(ctx context.Context, h *model.Hashtag) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.checkNewHashtagsLocked([]*model.Hashtag{h}); err != nil {
		return err
	}
	s.insertHashtagsLocked([]*model.Hashtag{h})
	return nil
}

// checkNewHashtagsLocked rejects hashtags whose id or name is already used,
// including within hs itself.
func (s *MemoryStore) checkNewHashtagsLocked(hs []*model.Hashtag) error {
	names := make(map[string]bool, len(s.hashtags)+len(hs))
	for _, existing := range s.hashtags {
		names[existing.Name] = true
	}
	for _, h := range hs {
		if _, ok := s.hashtags[h.Id]; ok || names[h.Name] {
			return utils.Validation("hashtag %s already exists", h.Name)
		}
		names[h.Name] = true
	}
	return nil
}

func (s *MemoryStore) insertHashtagsLocked(hs []*model.Hashtag) {
	for _, h := range hs {
		if h.CreatedAt.IsZero() {
			h.CreatedAt = time.Now()
		}
		c := *h
		s.hashtags[h.Id] = &c
		s.tagSeq[h.Id] = s.next()
	}
}

// hashtagKnownLocked reports whether id is stored or about to be inserted.
func (s *MemoryStore) hashtagKnownLocked(id string, pending []*model.Hashtag) bool {
	if _, ok := s.hashtags[id]; ok {
		return true
	}
	for _, h := range pending {
		if h.Id == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) GetHashtag(ctx context.Context, id string) (*model.Hashtag, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	h, ok := s.hashtags[id]
	if !ok {
		return nil, utils.NotFound("hashtag %s not found", id)
	}
	c := *h
	return &c, nil
}

func (s *MemoryStore) GetHashtags(ctx context.Context, ids []string) ([]*model.Hashtag, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []*model.Hashtag{}
	for _, id := range utils.UniqueStrings(ids) {
		if h, ok := s.hashtags[id]; ok {
			c := *h
			res = append(res, &c)
		}
	}
	return res, nil
}

func (s *MemoryStore) GetHashtagsByName(ctx context.Context, names []string) ([]*model.Hashtag, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []*model.Hashtag{}
	for _, id := range orderedKeys(s.tagSeq) {
		h := s.hashtags[id]
		if utils.ContainsString(names, h.Name) {
			c := *h
			res = append(res, &c)
		}
	}
	return res, nil
}

func (s *MemoryStore) ListHashtags(ctx context.Context) ([]*model.Hashtag, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := []*model.Hashtag{}
	for _, id := range orderedKeys(s.tagSeq) {
		c := *s.hashtags[id]
		res = append(res, &c)
	}
	return res, nil
}

func (s *MemoryStore) RenameHashtag(ctx context.Context, id string, name string) (*model.Hashtag, error) {
	s.m.Lock()
	defer s.m.Unlock()

	h, ok := s.hashtags[id]
	if !ok {
		return nil, utils.NotFound("hashtag %s not found", id)
	}
	for otherID, other := range s.hashtags {
		if otherID != id && other.Name == name {
			return nil, utils.Validation("hashtag %s already exists", name)
		}
	}
	h.Name = name
	c := *h
	return &c, nil
}

func (s *MemoryStore) DeleteHashtag(ctx context.Context, id string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.hashtags[id]; !ok {
		return utils.NotFound("hashtag %s not found", id)
	}
	delete(s.hashtags, id)
	delete(s.tagSeq, id)
	for _, p := range s.posts {
		delete(p.hashtags, id)
	}
	return nil
}

// postLocked materializes a stored post with its hashtags, caller holds the
// lock.
func (s *MemoryStore) postLocked(p *memPost) *model.Post {
	c := p.post
	c.Hashtags = []*model.Hashtag{}
	for _, id := range orderedKeys(s.tagSeq) {
		if p.hashtags[id] {
			h := *s.hashtags[id]
			c.Hashtags = append(c.Hashtags, &h)
		}
	}
	return &c
}

func (s *MemoryStore) titleTakenLocked(title, excludeID string) bool {
	for id, p := range s.posts {
		if id != excludeID && p.post.Title == title {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreatePost(ctx context.Context, p *model.Post, newHashtags []*model.Hashtag) error {
	s.m.Lock()
	defer s.m.Unlock()

	// Validate everything before the first write, nothing is rolled back.
	if s.titleTakenLocked(p.Title, "") {
		return utils.Validation("post with title %q already exists", p.Title)
	}
	if err := s.checkNewHashtagsLocked(newHashtags); err != nil {
		return err
	}
	for _, h := range p.Hashtags {
		if !s.hashtagKnownLocked(h.Id, newHashtags) {
			return utils.Validation("hashtag %s not found", h.Id)
		}
	}

	s.insertHashtagsLocked(newHashtags)
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	stored := &memPost{post: *p, hashtags: make(map[string]bool), seq: s.next()}
	stored.post.Hashtags = nil
	stored.post.User = nil
	for _, h := range p.Hashtags {
		stored.hashtags[h.Id] = true
	}
	s.posts[p.Id] = stored
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, utils.NotFound("post %s not found", id)
	}
	return s.postLocked(p), nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, update PostUpdate) (*model.Post, error) {
	s.m.Lock()
	defer s.m.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, utils.NotFound("post %s not found", id)
	}
	if update.Title != nil && s.titleTakenLocked(*update.Title, id) {
		return nil, utils.Validation("post with title %q already exists", *update.Title)
	}
	if err := s.checkNewHashtagsLocked(update.NewHashtags); err != nil {
		return nil, err
	}
	if update.HashtagIDs != nil {
		for _, hid := range *update.HashtagIDs {
			if !s.hashtagKnownLocked(hid, update.NewHashtags) {
				return nil, utils.Validation("hashtag %s not found", hid)
			}
		}
	}

	s.insertHashtagsLocked(update.NewHashtags)
	if update.Title != nil {
		p.post.Title = *update.Title
	}
	if update.Content != nil {
		p.post.Content = *update.Content
	}
	if update.Image != nil {
		p.post.Image = *update.Image
	}
	if update.HashtagIDs != nil {
		p.hashtags = make(map[string]bool)
		for _, hid := range *update.HashtagIDs {
			p.hashtags[hid] = true
		}
	}
	p.post.UpdatedAt = time.Now()
	return s.postLocked(p), nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.posts[id]; !ok {
		return utils.NotFound("post %s not found", id)
	}
	delete(s.posts, id)
	delete(s.likes, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
			delete(s.cmtSeq, cid)
		}
	}
	return nil
}

func (s *MemoryStore) ListPosts(ctx context.Context, q PostQuery) ([]*model.Post, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	matched := []*memPost{}
	for _, p := range s.posts {
		if q.OwnerIDs != nil && !utils.ContainsString(q.OwnerIDs, p.post.UserID) {
			continue
		}
		if q.IDs != nil && !utils.ContainsString(q.IDs, p.post.Id) {
			continue
		}
		if q.HashtagIDs != nil && !intersects(p.hashtags, q.HashtagIDs) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].post.CreatedAt.Equal(matched[j].post.CreatedAt) {
			return matched[i].post.CreatedAt.Before(matched[j].post.CreatedAt)
		}
		return matched[i].seq < matched[j].seq
	})

	res := make([]*model.Post, 0, len(matched))
	for _, p := range matched {
		res = append(res, s.postLocked(p))
	}
	return res, nil
}

func intersects(set map[string]bool, ids []string) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}

func (s *MemoryStore) PostTitleTaken(ctx context.Context, title string, excludeID string) (bool, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.titleTakenLocked(title, excludeID), nil
}

func (s *MemoryStore) AddLike(ctx context.Context, userID, postID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return utils.NotFound("post %s not found", postID)
	}
	set, ok := s.likes[postID]
	if !ok {
		set = make(map[string]int64)
		s.likes[postID] = set
	}
	if _, exists := set[userID]; !exists {
		set[userID] = s.next()
	}
	return nil
}

func (s *MemoryStore) RemoveLike(ctx context.Context, userID, postID string) error {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.likes[postID], userID)
	return nil
}

func (s *MemoryStore) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	liked := make(map[string]int64)
	for postID, set := range s.likes {
		if seq, ok := set[userID]; ok {
			liked[postID] = seq
		}
	}
	return orderedKeys(liked), nil
}

func (s *MemoryStore) LikerIDsOf(ctx context.Context, postIDs []string) (map[string][]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	res := make(map[string][]string, len(postIDs))
	for _, id := range postIDs {
		res[id] = orderedKeys(s.likes[id])
	}
	return res, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, c *model.Comment) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.posts[c.PostID]; !ok {
		return utils.NotFound("post %s not found", c.PostID)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	stored := *c
	stored.User = nil
	stored.Post = nil
	s.comments[c.Id] = &stored
	s.cmtSeq[c.Id] = s.next()
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, utils.NotFound("comment %s not found", id)
	}
	res := *c
	return &res, nil
}

func (s *MemoryStore) UpdateComment(ctx context.Context, id string, content string) (*model.Comment, error) {
	s.m.Lock()
	defer s.m.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, utils.NotFound("comment %s not found", id)
	}
	c.Content = content
	res := *c
	return &res, nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.comments[id]; !ok {
		return utils.NotFound("comment %s not found", id)
	}
	delete(s.comments, id)
	delete(s.cmtSeq, id)
	return nil
}

func (s *MemoryStore) listComments(match func(c *model.Comment) bool) []*model.Comment {
	res := []*model.Comment{}
	for _, id := range orderedKeys(s.cmtSeq) {
		c := s.comments[id]
		if match(c) {
			cc := *c
			res = append(res, &cc)
		}
	}
	return res
}

func (s *MemoryStore) ListCommentsByOwner(ctx context.Context, userID string) ([]*model.Comment, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.listComments(func(c *model.Comment) bool { return c.UserID == userID }), nil
}

func (s *MemoryStore) ListCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.listComments(func(c *model.Comment) bool { return c.PostID == postID }), nil
}
