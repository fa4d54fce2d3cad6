package oauth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLifetime   = 3600
	DefaultCodeLength = 6
)

// PageType selects how the consent page is served
type PageType string

const (
	// PageStatic serves a local file
	PageStatic PageType = "static_page"
	// PageCallback redirects to an external URL
	PageCallback PageType = "callback_url"
)

// AuthorizationPage is the consent surface the user agent is sent to
type AuthorizationPage struct {
	Type PageType
	Path string // PageStatic
	URL  string // PageCallback
}

// Tokens is the pair issued when a code is granted
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// AuthorizeFunc handles the consent form submission. It owns the response and
// is expected to redirect the user agent back to the platform with the code.
type AuthorizeFunc func(c *gin.Context, code string) error

// GrantFunc exchanges an authorization code for tokens
type GrantFunc func(ctx context.Context, code string, lifetime int) (Tokens, error)

// RefreshFunc issues a new access token for a refresh token
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// VerifyFunc resolves an access token to a user id. ok is false for an
// unknown or expired token.
type VerifyFunc func(ctx context.Context, token string) (userID string, ok bool, err error)

// Callbacks are the caller-side steps of the flow
type Callbacks struct {
	OnAuthorize AuthorizeFunc
	OnGranted   GrantFunc
	OnRefresh   RefreshFunc
	OnVerify    VerifyFunc
}

// Config configures a Service
type Config struct {
	Client string
	Secret string

	// Lifetime of access tokens in seconds, DefaultLifetime when zero
	Lifetime int
	// CodeLength of authorization codes, DefaultCodeLength when zero
	CodeLength int

	AuthorizationPage *AuthorizationPage
	Callbacks         Callbacks
}

func (c *Config) validate() error {
	if c.Client == "" {
		return fmt.Errorf("%w: 'client' is missing", ErrAuthConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: 'secret' is missing", ErrAuthConfig)
	}
	if c.Lifetime < 0 {
		return fmt.Errorf("%w: 'lifetime' must be positive", ErrAuthConfig)
	}
	if c.CodeLength < 0 || c.CodeLength > maxCodeLength {
		return fmt.Errorf("%w: 'code_length' must be between 1 and %d", ErrAuthConfig, maxCodeLength)
	}

	page := c.AuthorizationPage
	if page == nil {
		return fmt.Errorf("%w: 'authorization_page' is missing", ErrAuthConfig)
	}
	switch page.Type {
	case PageStatic:
		if page.Path == "" {
			return fmt.Errorf("%w: 'path' of 'authorization_page' is missing", ErrAuthConfig)
		}
	case PageCallback:
		if page.URL == "" {
			return fmt.Errorf("%w: 'url' of 'authorization_page' is missing", ErrAuthConfig)
		}
	default:
		return fmt.Errorf("%w: unknown 'authorization_page' type %q", ErrAuthConfig, page.Type)
	}

	cb := c.Callbacks
	switch {
	case cb.OnAuthorize == nil:
		return fmt.Errorf("%w: 'OnAuthorize' handler is missing", ErrAuthConfig)
	case cb.OnGranted == nil:
		return fmt.Errorf("%w: 'OnGranted' handler is missing", ErrAuthConfig)
	case cb.OnRefresh == nil:
		return fmt.Errorf("%w: 'OnRefresh' handler is missing", ErrAuthConfig)
	case cb.OnVerify == nil:
		return fmt.Errorf("%w: 'OnVerify' handler is missing", ErrAuthConfig)
	}

	return nil
}
