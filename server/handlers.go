// Package server maps the REST routes of the API onto the services.
package server

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/Luismorlan/socialmux/service"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/gin-gonic/gin"
)

const (
	// DefaultMaxUploadBytes caps image uploads when nothing else is set.
	DefaultMaxUploadBytes = 10 << 20

	profilePath = "/users/me"
)

type Handler struct {
	svc            *service.Services
	maxUploadBytes int64
}

func NewHandler(svc *service.Services, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Register mounts every route on r behind the authentication middleware.
func (h *Handler) Register(r gin.IRouter, provider middlewares.IdentityProvider) {
	api := r.Group("/", middlewares.Authenticate(provider))

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	users := api.Group("/users")
	users.POST("/register", h.register)
	users.GET("", h.withActor(h.searchUsers))
	users.GET("/me", h.withActor(h.me))
	users.PATCH("/me", h.withActor(h.updateMe))
	users.GET("/me/posts", h.withActor(h.myPosts))
	users.GET("/feed", h.withActor(h.followingFeed))
	users.GET("/liked", h.withActor(h.likedPosts))
	users.GET("/following", h.withActor(h.following))
	users.GET("/followers", h.withActor(h.followers))
	users.GET("/follow/:id", h.withActor(h.follow))
	users.GET("/unfollow/:id", h.withActor(h.unfollow))
	users.GET("/:id", h.withActor(h.getUser))

	posts := api.Group("/posts")
	posts.GET("", h.withActor(h.listPosts))
	posts.POST("", h.withActor(h.createPost))
	posts.GET("/:id", h.withActor(h.getPost))
	posts.PATCH("/:id", h.withActor(h.updatePost))
	posts.DELETE("/:id", h.withActor(h.deletePost))
	posts.POST("/:id/upload-image", h.withActor(h.uploadImage))
	posts.GET("/:id/like", h.withActor(h.like))
	posts.GET("/:id/unlike", h.withActor(h.unlike))
	posts.POST("/:id/comment", h.withActor(h.createComment))

	comments := api.Group("/comments")
	comments.GET("", h.withActor(h.listComments))
	comments.GET("/:id", h.withActor(h.getComment))
	comments.PATCH("/:id", h.withActor(h.updateComment))
	comments.DELETE("/:id", h.withActor(h.deleteComment))

	hashtags := api.Group("/hashtags")
	hashtags.GET("", h.withActor(h.listHashtags))
	hashtags.POST("", h.withActor(h.createHashtag))
	hashtags.GET("/:id", h.withActor(h.getHashtag))
	hashtags.PATCH("/:id", h.withActor(h.updateHashtag))
	hashtags.DELETE("/:id", h.withActor(h.deleteHashtag))
}

func statusOf(kind utils.ErrorKind) int {
	switch kind {
	case utils.KindUnauthorized:
		return http.StatusUnauthorized
	case utils.KindPermissionDenied:
		return http.StatusForbidden
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail replies with the status of err's kind. Internal errors are logged and
// their details hidden.
func fail(c *gin.Context, err error) {
	kind := utils.KindOf(err)
	msg := err.Error()
	if kind == utils.KindInternal {
		Logger.Log.WithField("path", c.FullPath()).Errorf("request failed: %+v", err)
		msg = "internal server error"
	}
	c.JSON(statusOf(kind), gin.H{
		"code": kind,
		"msg":  msg,
	})
}

func reply(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, v)
}

// actor returns the registered user behind the caller, nil for anonymous or
// unregistered callers.
func (h *Handler) actor(c *gin.Context) (*model.User, error) {
	identity := middlewares.IdentityFrom(c)
	if identity == nil {
		return nil, nil
	}
	return h.svc.Users.Actor(c.Request.Context(), identity.Subject)
}

// withActor resolves the actor before calling f.
func (h *Handler) withActor(f func(c *gin.Context, actor *model.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := h.actor(c)
		if err != nil {
			fail(c, err)
			return
		}
		f(c, actor)
	}
}

func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return utils.Validation("invalid request body: %s", err.Error())
	}
	return nil
}

func (h *Handler) register(c *gin.Context) {
	var input service.UserInput
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &input); err != nil {
			fail(c, err)
			return
		}
	}
	view, err := h.svc.Users.Register(c.Request.Context(), middlewares.IdentityFrom(c), input)
	reply(c, http.StatusCreated, view, err)
}

func (h *Handler) searchUsers(c *gin.Context, actor *model.User) {
	views, err := h.svc.Users.Search(c.Request.Context(), actor, c.Query("email"))
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) me(c *gin.Context, actor *model.User) {
	view, err := h.svc.Users.Me(c.Request.Context(), actor)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) updateMe(c *gin.Context, actor *model.User) {
	var patch service.UserPatch
	if err := bindJSON(c, &patch); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Users.UpdateMe(c.Request.Context(), actor, patch)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) getUser(c *gin.Context, actor *model.User) {
	view, err := h.svc.Users.Get(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) follow(c *gin.Context, actor *model.User) {
	if err := h.svc.Graph.Follow(c.Request.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath)
}

func (h *Handler) unfollow(c *gin.Context, actor *model.User) {
	if err := h.svc.Graph.Unfollow(c.Request.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath)
}

func (h *Handler) following(c *gin.Context, actor *model.User) {
	views, err := h.svc.Graph.ListFollowing(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) followers(c *gin.Context, actor *model.User) {
	views, err := h.svc.Graph.ListFollowers(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) myPosts(c *gin.Context, actor *model.User) {
	views, err := h.svc.Feed.MyPosts(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) followingFeed(c *gin.Context, actor *model.User) {
	views, err := h.svc.Feed.FollowingFeed(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) likedPosts(c *gin.Context, actor *model.User) {
	views, err := h.svc.Feed.LikedPosts(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) listPosts(c *gin.Context, actor *model.User) {
	filter, err := service.ParseHashtagFilter(c.Query("hashtags"))
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.svc.Feed.ListPosts(c.Request.Context(), actor, filter)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) createPost(c *gin.Context, actor *model.User) {
	var input service.PostInput
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Posts.Create(c.Request.Context(), actor, input)
	reply(c, http.StatusCreated, view, err)
}

func (h *Handler) getPost(c *gin.Context, actor *model.User) {
	view, err := h.svc.Posts.Get(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) updatePost(c *gin.Context, actor *model.User) {
	var patch service.PostPatch
	if err := bindJSON(c, &patch); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Posts.Update(c.Request.Context(), actor, c.Param("id"), patch)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) deletePost(c *gin.Context, actor *model.User) {
	if err := h.svc.Posts.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadImage(c *gin.Context, actor *model.User) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		fail(c, utils.Validation("upload a valid image: %s", err.Error()))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	view, err := h.svc.Posts.UploadImage(c.Request.Context(), actor, c.Param("id"), header.Filename, file, contentType)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) like(c *gin.Context, actor *model.User) {
	view, err := h.svc.Likes.Like(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) unlike(c *gin.Context, actor *model.User) {
	view, err := h.svc.Likes.Unlike(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

type contentInput struct {
	Content string `json:"content"`
}

func (h *Handler) createComment(c *gin.Context, actor *model.User) {
	var input contentInput
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Comments.Create(c.Request.Context(), actor, c.Param("id"), input.Content)
	reply(c, http.StatusCreated, view, err)
}

func (h *Handler) listComments(c *gin.Context, actor *model.User) {
	views, err := h.svc.Comments.List(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) getComment(c *gin.Context, actor *model.User) {
	view, err := h.svc.Comments.Get(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) updateComment(c *gin.Context, actor *model.User) {
	var input contentInput
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Comments.Update(c.Request.Context(), actor, c.Param("id"), input.Content)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) deleteComment(c *gin.Context, actor *model.User) {
	if err := h.svc.Comments.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type hashtagInput struct {
	Name string `json:"name"`
}

func (h *Handler) listHashtags(c *gin.Context, actor *model.User) {
	views, err := h.svc.Hashtags.List(c.Request.Context(), actor)
	reply(c, http.StatusOK, views, err)
}

func (h *Handler) createHashtag(c *gin.Context, actor *model.User) {
	var input hashtagInput
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Hashtags.Create(c.Request.Context(), actor, input.Name)
	reply(c, http.StatusCreated, view, err)
}

func (h *Handler) getHashtag(c *gin.Context, actor *model.User) {
	view, err := h.svc.Hashtags.Get(c.Request.Context(), actor, c.Param("id"))
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) updateHashtag(c *gin.Context, actor *model.User) {
	var input hashtagInput
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	view, err := h.svc.Hashtags.Update(c.Request.Context(), actor, c.Param("id"), input.Name)
	reply(c, http.StatusOK, view, err)
}

func (h *Handler) deleteHashtag(c *gin.Context, actor *model.User) {
	if err := h.svc.Hashtags.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
