package service

import (
	"context"
	"strings"

	"github.com/Luismorlan/socialmux/access"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
)

// Identity is what the auth provider knows about a caller.
type Identity struct {
	Subject string
	Email   string
}

// UserInput registers a user. Email is only used when the identity carries
// none.
type UserInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// UserPatch partially updates a profile, nil fields are left unchanged.
type UserPatch struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

type UserService struct {
	store     store.Store
	projector *projector
}

// Register creates the user identified by the auth subject. Registering an
// already known subject returns the existing user.
func (s *UserService) Register(ctx context.Context, identity *Identity, input UserInput) (*model.UserView, error) {
	if identity == nil || identity.Subject == "" {
		return nil, utils.Unauthorized("authentication credentials were not provided")
	}

	existing, err := s.store.GetUser(ctx, identity.Subject)
	if err == nil {
		return s.projector.userView(ctx, existing)
	}
	if !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}

	email := identity.Email
	if email == "" {
		email = input.Email
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	username := input.Username
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	user := &model.User{
		Id:       identity.Subject,
		Email:    email,
		Username: username,
		Bio:      input.Bio,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	Logger.Log.WithField("user", user.Id).Info("user registered")
	return s.projector.userView(ctx, user)
}

func validateEmail(email string) error {
	if email == "" {
		return utils.Validation("email is required")
	}
	if !strings.Contains(email, "@") {
		return utils.Validation("enter a valid email address")
	}
	return nil
}

// Me returns the actor's own profile with its following set.
func (s *UserService) Me(ctx context.Context, actor *model.User) (*model.UserView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	return s.projector.userView(ctx, actor)
}

// UpdateMe partially updates the actor's own profile.
func (s *UserService) UpdateMe(ctx context.Context, actor *model.User, patch UserPatch) (*model.UserView, error) {
	if err := access.AuthorizeWrite(actor, actor); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}
	updated, err := s.store.UpdateUser(ctx, actor.Id, store.UserUpdate{
		Email:    patch.Email,
		Username: patch.Username,
		Bio:      patch.Bio,
	})
	if err != nil {
		return nil, err
	}
	Logger.Log.WithField("user", actor.Id).Info("profile updated")
	return s.projector.userView(ctx, updated)
}

func (s *UserService) Get(ctx context.Context, actor *model.User, id string) (*model.UserView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeRead(actor, user); err != nil {
		return nil, err
	}
	return s.projector.userView(ctx, user)
}

// Search matches users by case-insensitive email substring. An empty
// substring lists every user.
func (s *UserService) Search(ctx context.Context, actor *model.User, email string) ([]*model.UserView, error) {
	if err := access.RequireActor(actor); err != nil {
		return nil, err
	}
	users, err := s.store.SearchUsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.projector.userViews(ctx, users)
}

// Actor resolves the user behind an auth subject, nil when the subject isn't
// registered.
func (s *UserService) Actor(ctx context.Context, subject string) (*model.User, error) {
	if subject == "" {
		return nil, nil
	}
	user, err := s.store.GetUser(ctx, subject)
	if utils.IsKind(err, utils.KindNotFound) {
		return nil, nil
	}
	return user, err
}
