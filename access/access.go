// Package access holds the authorization rules of the social graph as pure
// predicates. Services evaluate them explicitly before touching storage.
//
// A nil actor is an unauthenticated caller. Resources are *model.Post,
// *model.Comment, *model.Hashtag and *model.User; a resource about to be
// created is passed with its owner already set to the actor.
package access

import (
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/utils"
)

// CanRead reports whether actor may see resource.
func CanRead(actor *model.User, resource interface{}) bool {
	switch r := resource.(type) {
	case *model.Hashtag:
		return true
	case *model.Comment:
		return actor != nil && r.UserID == actor.Id
	case *model.Post, *model.User:
		return actor != nil
	}
	return false
}

// CanWrite reports whether actor may create, update or delete resource.
func CanWrite(actor *model.User, resource interface{}) bool {
	if actor == nil {
		return false
	}
	switch r := resource.(type) {
	case *model.Hashtag:
		return actor.IsStaff
	case *model.Comment:
		return r.UserID == actor.Id
	case *model.Post:
		return r.UserID == actor.Id
	case *model.User:
		return r.Id == actor.Id
	}
	return false
}

// AuthorizeRead returns nil when CanRead holds, Unauthorized for anonymous
// callers and PermissionDenied otherwise.
func AuthorizeRead(actor *model.User, resource interface{}) error {
	if CanRead(actor, resource) {
		return nil
	}
	if actor == nil {
		return utils.Unauthorized("authentication credentials were not provided")
	}
	return utils.PermissionDenied("you do not have permission to view this %s", kindName(resource))
}

// AuthorizeWrite returns nil when CanWrite holds, Unauthorized for anonymous
// callers and PermissionDenied otherwise.
func AuthorizeWrite(actor *model.User, resource interface{}) error {
	if CanWrite(actor, resource) {
		return nil
	}
	if actor == nil {
		return utils.Unauthorized("authentication credentials were not provided")
	}
	switch resource.(type) {
	case *model.Hashtag:
		return utils.PermissionDenied("only staff can modify hashtags")
	}
	return utils.PermissionDenied("you do not have permission to modify this %s", kindName(resource))
}

// RequireActor fails with Unauthorized for anonymous callers.
func RequireActor(actor *model.User) error {
	if actor == nil {
		return utils.Unauthorized("authentication credentials were not provided")
	}
	return nil
}

func kindName(resource interface{}) string {
	switch resource.(type) {
	case *model.Post:
		return "post"
	case *model.Comment:
		return "comment"
	case *model.Hashtag:
		return "hashtag"
	case *model.User:
		return "user"
	}
	return "resource"
}
