package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/Luismorlan/socialmux/media"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/Luismorlan/socialmux/service"
	"github.com/Luismorlan/socialmux/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	store  *store.MemoryStore
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	s := store.NewMemoryStore()
	router := gin.New()
	NewHandler(service.New(s, media.NewFakeMediaStore(), nil, nil), 1<<20).
		Register(router, middlewares.BypassProvider{})
	return &testServer{t: t, store: s, router: router}
}

// do sends a JSON request as token, an empty token being anonymous.
func (s *testServer) do(method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.Nil(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(name string) {
	w := s.do(http.MethodPost, "/users/register", name+":"+name+"@example.com", nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) createPost(token string, title string, hashtags ...string) *model.PostDetailView {
	w := s.do(http.MethodPost, "/posts", token, gin.H{"title": title, "content": title + "!", "hashtags": hashtags})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var view model.PostDetailView
	require.Nil(s.t, json.Unmarshal(w.Body.Bytes(), &view))
	return &view
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	body := map[string]string{}
	decode(t, w, &body)
	return body["code"]
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "pong"}`, w.Body.String())
}

func TestHashtagsOpenReadRestrictedWrite(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/hashtags", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodPost, "/hashtags", "", gin.H{"name": "go"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))

	s.register("alice")
	w = s.do(http.MethodPost, "/hashtags", "alice", gin.H{"name": "go"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "permission_denied", errorCode(t, w))

	require.Nil(t, s.store.CreateUser(context.Background(), &model.User{Id: "admin", Email: "admin@example.com", IsStaff: true}))
	w = s.do(http.MethodPost, "/hashtags", "admin", gin.H{"name": "go"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tag model.HashtagView
	decode(t, w, &tag)

	w = s.do(http.MethodGet, "/hashtags/"+tag.Id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/hashtags/"+tag.Id, "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/hashtags/"+tag.Id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAliceBobOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	s.register("bob")
	hello := s.createPost("alice", "Hello", "greeting")
	bobs := s.createPost("bob", "Bob's post")

	w := s.do(http.MethodGet, "/users/follow/alice", "bob", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users/me", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/users/me", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.UserView
	decode(t, w, &me)
	assert.Equal(t, []string{"alice"}, me.Following)

	w = s.do(http.MethodGet, "/users/feed", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []*model.PostListView
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, hello.Id, feed[0].Id)
	assert.Equal(t, []string{"greeting"}, feed[0].HashtagNames)

	w = s.do(http.MethodGet, "/posts/"+hello.Id+"/like", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/users/liked", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var liked []*model.PostListView
	decode(t, w, &liked)
	require.Len(t, liked, 1)
	assert.Equal(t, []string{"bob"}, liked[0].LikedBy)

	w = s.do(http.MethodDelete, "/posts/"+bobs.Id, "alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/users/followers", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var followers []*model.UserView
	decode(t, w, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].Id)

	w = s.do(http.MethodGet, "/users/unfollow/alice", "bob", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	w = s.do(http.MethodGet, "/users/following", "bob", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodGet, "/users/follow/nobody", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateTitleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	s.register("bob")
	s.createPost("alice", "Hello")

	w := s.do(http.MethodPost, "/posts", "bob", gin.H{"title": "Hello", "content": "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorCode(t, w))
}

func TestListPostsByHashtag(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	tagged := s.createPost("alice", "tagged", "go")
	s.createPost("alice", "untagged")

	w := s.do(http.MethodGet, "/posts?hashtags="+tagged.HashtagList[0].Id, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []*model.PostListView
	decode(t, w, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "tagged", posts[0].Title)

	w = s.do(http.MethodGet, "/posts?hashtags=1,2", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/users/me/posts", "alice", nil)
	decode(t, w, &posts)
	assert.Len(t, posts, 2)
}

func TestPatchPostAndComments(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	s.register("bob")
	post := s.createPost("alice", "Hello")

	w := s.do(http.MethodPatch, "/posts/"+post.Id, "alice", gin.H{"content": "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.PostDetailView
	decode(t, w, &updated)
	assert.Equal(t, "Hello", updated.Title)
	assert.Equal(t, "edited", updated.Content)

	w = s.do(http.MethodPatch, "/posts/"+post.Id, "bob", gin.H{"content": "mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/posts/"+post.Id+"/comment", "bob", gin.H{"content": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment model.CommentView
	decode(t, w, &comment)
	assert.Equal(t, "bob", comment.UserID)

	w = s.do(http.MethodPost, "/posts/"+post.Id+"/comment", "", gin.H{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/comments/"+comment.Id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPatch, "/comments/"+comment.Id, "bob", gin.H{"content": "edited"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/posts/"+post.Id, "alice", nil)
	var detail model.PostDetailView
	decode(t, w, &detail)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "edited", detail.Comments[0].Content)

	w = s.do(http.MethodDelete, "/comments/"+comment.Id, "bob", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/comments", "bob", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUploadImageOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	post := s.createPost("alice", "Sunset Photo")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="sunset.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.Nil(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.Nil(t, err)
	require.Nil(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/"+post.Id+"/upload-image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer alice")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view model.PostDetailView
	decode(t, w, &view)
	assert.True(t, strings.HasPrefix(view.ImageUrl, "uploads/images/posts/sunset-photo-"))
	assert.True(t, strings.HasSuffix(view.ImageUrl, ".png"))

	w = s.do(http.MethodPost, "/posts/"+post.Id+"/upload-image", "alice", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")
	s.register("bob")

	// Registering twice returns the same user.
	w := s.do(http.MethodPost, "/users/register", "alice:alice@example.com", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/users/register", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/users?email=BOB", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []*model.UserView
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Id)

	w = s.do(http.MethodGet, "/users?email=bob", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/users/bob", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/users/me", "alice", gin.H{"bio": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	var me model.UserView
	decode(t, w, &me)
	assert.Equal(t, "hello", me.Bio)
	assert.Equal(t, "alice@example.com", me.Email)

	// A valid token for a subject that never registered acts as anonymous.
	w = s.do(http.MethodGet, "/users/me", "stranger", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
