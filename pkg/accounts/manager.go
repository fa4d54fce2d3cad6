package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/urmzd/voicelink/pkg/oauth"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCodeTTL = 10 * time.Minute
	DefaultIssuer  = "voicelink"
)

// Options configures a Manager
type Options struct {
	// Users maps user names to bcrypt password hashes
	Users map[string]string
	// JWTSecret signs access tokens (HS256)
	JWTSecret []byte
	// Lifetime of access tokens in seconds, oauth.DefaultLifetime when zero
	Lifetime int
	CodeTTL  time.Duration
	Issuer   string
	// AuthPath is where failed consent logins are sent back to
	AuthPath string
	Logger   zerolog.Logger
}

// Manager is the account system behind the OAuth flow: it checks consent
// logins, hands out codes, issues JWT access tokens and opaque refresh tokens,
// and revokes them when a user unlinks.
type Manager struct {
	store    Store
	users    map[string][]byte
	secret   []byte
	lifetime int
	codeTTL  time.Duration
	issuer   string
	authPath string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewManager creates a new Manager on store
func NewManager(store Store, opts Options) (*Manager, error) {
	if len(opts.Users) == 0 {
		return nil, ErrNoUsers
	}
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("accounts: jwt secret is missing")
	}

	users := make(map[string][]byte, len(opts.Users))
	for name, hash := range opts.Users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("accounts: user %s: %w", name, err)
		}
		users[name] = []byte(hash)
	}

	m := &Manager{
		store:    store,
		users:    users,
		secret:   opts.JWTSecret,
		lifetime: opts.Lifetime,
		codeTTL:  opts.CodeTTL,
		issuer:   opts.Issuer,
		authPath: opts.AuthPath,
		logger:   opts.Logger.With().Str("component", "accounts").Logger(),
		now:      time.Now,
	}
	if m.lifetime == 0 {
		m.lifetime = oauth.DefaultLifetime
	}
	if m.codeTTL == 0 {
		m.codeTTL = DefaultCodeTTL
	}
	if m.issuer == "" {
		m.issuer = DefaultIssuer
	}
	if m.authPath == "" {
		m.authPath = "/auth"
	}
	return m, nil
}

// Callbacks returns the Manager's steps of the OAuth flow
func (m *Manager) Callbacks() oauth.Callbacks {
	return oauth.Callbacks{
		OnAuthorize: m.Authorize,
		OnGranted:   m.Grant,
		OnRefresh:   m.Refresh,
		OnVerify:    m.Verify,
	}
}

// HashPassword returns the bcrypt hash of a password for the users config
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authorize checks the consent form (username, password, redirect, state).
// On success the code is stored for the user and the user agent is sent back
// to redirect with code and state; on bad credentials it is sent back to the
// consent page with error=access_denied.
func (m *Manager) Authorize(c *gin.Context, code string) error {
	username := c.PostForm("username")
	redirect := c.PostForm("redirect")
	state := c.PostForm("state")

	target, err := url.Parse(redirect)
	if err != nil || redirect == "" {
		m.logger.Warn().Str("redirect", redirect).Msg("Consent form without a valid redirect")
		c.AbortWithStatus(http.StatusBadRequest)
		return nil
	}

	if err := m.checkPassword(username, c.PostForm("password")); err != nil {
		m.logger.Warn().Err(err).Str("user", username).Msg("Consent login failed")

		q := url.Values{}
		q.Set("error", "access_denied")
		q.Set("redirect", redirect)
		q.Set("state", state)
		c.Redirect(http.StatusFound, m.authPath+"?"+q.Encode())
		return nil
	}

	if err := m.store.SaveCode(c.Request.Context(), code, username, m.codeTTL); err != nil {
		return fmt.Errorf("save code: %w", err)
	}

	m.logger.Info().Str("user", username).Msg("User authorized")

	q := target.Query()
	q.Set("code", code)
	q.Set("state", state)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
	return nil
}

// Grant exchanges a code for an access token and a refresh token.
// Codes are single use.
func (m *Manager) Grant(ctx context.Context, code string, lifetime int) (oauth.Tokens, error) {
	userID, err := m.store.ConsumeCode(ctx, code)
	if err != nil {
		return oauth.Tokens{}, err
	}

	access, err := m.issueAccessToken(userID, lifetime)
	if err != nil {
		return oauth.Tokens{}, err
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return oauth.Tokens{}, err
	}
	if err := m.store.SaveRefreshToken(ctx, HashToken(refresh), userID); err != nil {
		return oauth.Tokens{}, err
	}

	m.logger.Info().Str("user", userID).Msg("Tokens issued")
	return oauth.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh issues a new access token for a stored refresh token
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := m.store.LookupRefreshToken(ctx, HashToken(refreshToken))
	if err != nil {
		return "", err
	}
	return m.issueAccessToken(userID, m.lifetime)
}

// Verify resolves an access token to its user. Invalid, expired and revoked
// tokens are reported with ok false.
func (m *Manager) Verify(ctx context.Context, token string) (string, bool, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.signingKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		m.logger.Debug().Err(err).Msg("Rejected access token")
		return "", false, nil
	}

	revokedAt, revoked, err := m.store.RevokedAt(ctx, claims.Subject)
	if err != nil {
		return "", false, err
	}
	if revoked && !claims.issuedAt().After(revokedAt) {
		m.logger.Debug().Str("user", claims.Subject).Msg("Access token issued before unlink")
		return "", false, nil
	}

	return claims.Subject, true, nil
}

// Unlink revokes all tokens of a user
func (m *Manager) Unlink(ctx context.Context, userID string) error {
	if err := m.store.RevokeUser(ctx, userID, m.now()); err != nil {
		return err
	}
	m.logger.Info().Str("user", userID).Msg("User unlinked")
	return nil
}

func (m *Manager) checkPassword(username, password string) error {
	hash, ok := m.users[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (m *Manager) issueAccessToken(userID string, lifetime int) (string, error) {
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(lifetime) * time.Second)),
		},
		IssuedAtNano: now.UnixNano(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// accessClaims carries the issue time at full precision next to the
// second-granular iat, so a token issued in the same second as an unlink is
// ordered correctly against it.
type accessClaims struct {
	jwt.RegisteredClaims
	IssuedAtNano int64 `json:"iat_ns,omitempty"`
}

func (c *accessClaims) issuedAt() time.Time {
	if c.IssuedAtNano != 0 {
		return time.Unix(0, c.IssuedAtNano)
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

func (m *Manager) signingKey(*jwt.Token) (any, error) {
	return m.secret, nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
