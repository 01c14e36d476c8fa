package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Luismorlan/socialmux/service"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	// IdentityKey is the gin context key holding the resolved *service.Identity.
	IdentityKey = "identity"
	// SubjectHeader carries the caller's subject once the token is verified.
	SubjectHeader = "sub"
)

// IdentityProvider resolves an access token into the identity it was issued
// for. It is the only source of identity of the server.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (*service.Identity, error)
}

// cognitoGetUserAPI is the part of the Cognito client the provider needs.
type cognitoGetUserAPI interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

// CognitoProvider validates access tokens against AWS Cognito.
type CognitoProvider struct {
	client cognitoGetUserAPI
}

// NewCognitoProvider creates a provider with the default aws config located
// in ~/.aws/config.
func NewCognitoProvider(ctx context.Context) (*CognitoProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fail to load aws config")
	}
	return &CognitoProvider{client: cognitoidentityprovider.NewFromConfig(cfg)}, nil
}

func (p *CognitoProvider) Resolve(ctx context.Context, token string) (*service.Identity, error) {
	user, err := p.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{AccessToken: aws.String(token)})
	if err != nil {
		return nil, err
	}
	identity := &service.Identity{Subject: aws.ToString(user.Username)}
	for _, attr := range user.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			identity.Subject = aws.ToString(attr.Value)
		case "email":
			identity.Email = aws.ToString(attr.Value)
		}
	}
	return identity, nil
}

// BypassProvider trusts the token as "<subject>" or "<subject>:<email>". For
// development and tests only.
type BypassProvider struct{}

func (BypassProvider) Resolve(ctx context.Context, token string) (*service.Identity, error) {
	parts := strings.SplitN(token, ":", 2)
	identity := &service.Identity{Subject: parts[0]}
	if len(parts) == 2 {
		identity.Email = parts[1]
	}
	return identity, nil
}

// tokenFromRequest reads a bearer token from the Authorization header, or the
// "token" query parameter.
func tokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}

// Authenticate resolves the caller's token through provider and stores the
// identity in the context. Requests without a token go through anonymous,
// rejecting them is left to the operations. An invalid token is rejected.
func Authenticate(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		c.Request.Header.Del(SubjectHeader)
		if token == "" {
			c.Next()
			return
		}

		identity, err := provider.Resolve(c.Request.Context(), token)
		if err != nil || identity.Subject == "" {
			msg := "invalid token"
			if err != nil {
				msg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  msg,
			})
			c.Abort()
			return
		}

		// Successfully validated the token, expose the user's sub (id).
		c.Request.Header.Set(SubjectHeader, identity.Subject)
		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity set by Authenticate, nil for anonymous
// callers.
func IdentityFrom(c *gin.Context) *service.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*service.Identity)
	return identity
}
