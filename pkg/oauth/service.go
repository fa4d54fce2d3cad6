package oauth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TokenResponse is the bearer token envelope returned by the token endpoints
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// ErrorResponse is returned when a grant is rejected
type ErrorResponse struct {
	Error string `json:"error"`
}

type tokenRequest struct {
	GrantType    string `form:"grant_type" json:"grant_type"`
	ClientID     string `form:"client_id" json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
	Code         string `form:"code" json:"code"`
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Service implements the authorization code flow between the platform and
// the caller's account system. It holds no token state; every decision is
// delegated to the configured Callbacks.
type Service struct {
	cfg    Config
	logger zerolog.Logger
}

// New validates cfg and creates a new Service
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Lifetime == 0 {
		logger.Debug().Int("lifetime", DefaultLifetime).Msg("Token lifetime not set, using default")
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = DefaultCodeLength
	}

	return &Service{
		cfg:    cfg,
		logger: logger.With().Str("component", "oauth").Logger(),
	}, nil
}

// Lifetime returns the access token lifetime in seconds
func (s *Service) Lifetime() int {
	return s.cfg.Lifetime
}

// Register mounts the OAuth endpoints on r
func (s *Service) Register(r gin.IRoutes) {
	r.GET("/auth", s.AuthPage)
	r.GET("/oauth", s.Begin)
	r.POST("/oauth/authorize", s.Authorize)
	r.POST("/oauth/token", s.Token)
	r.POST("/oauth/refresh", s.Refresh)
}

// AuthPage handles GET /auth
// @Summary      Consent page
// @Description  Serves the consent page, or redirects to the external consent URL carrying redirect and state
// @Tags         oauth
// @Produce      html
// @Param        redirect  query  string  false  "Platform redirect URI"
// @Param        state     query  string  false  "Opaque platform state"
// @Success      200
// @Success      302
// @Router       /auth [get]
func (s *Service) AuthPage(c *gin.Context) {
	page := s.cfg.AuthorizationPage

	switch page.Type {
	case PageStatic:
		c.File(page.Path)
	case PageCallback:
		target, err := url.Parse(page.URL)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, fmt.Errorf("parse authorization page url: %w", err))
			return
		}
		q := target.Query()
		for _, key := range []string{"redirect", "state"} {
			if v, ok := c.GetQuery(key); ok {
				q.Set(key, v)
			}
		}
		target.RawQuery = q.Encode()
		c.Redirect(http.StatusFound, target.String())
	}
}

// Begin handles GET /oauth. An unknown client id is logged and gets no response body.
// @Summary      Start authorization
// @Description  Redirects the user agent to the consent page, keeping redirect_uri and state
// @Tags         oauth
// @Param        client_id     query  string  true   "Client id"
// @Param        redirect_uri  query  string  true   "Platform redirect URI"
// @Param        state         query  string  false  "Opaque platform state"
// @Success      302
// @Router       /oauth [get]
func (s *Service) Begin(c *gin.Context) {
	clientID := c.Query("client_id")
	if !equal(clientID, s.cfg.Client) {
		s.logger.Warn().Str("client_id", clientID).Msg("Received request with unknown client id")
		return
	}

	q := url.Values{}
	q.Set("redirect", c.Query("redirect_uri"))
	q.Set("state", c.Query("state"))

	c.Redirect(http.StatusFound, "/auth?"+q.Encode())
}

// Authorize handles POST /oauth/authorize. The response is written by OnAuthorize;
// a callback error aborts the request with 500.
// @Summary      Submit consent
// @Description  Generates an authorization code and hands the consent form to the account system
// @Tags         oauth
// @Accept       x-www-form-urlencoded
// @Success      302
// @Failure      500
// @Router       /oauth/authorize [post]
func (s *Service) Authorize(c *gin.Context) {
	s.logger.Debug().Msg("Generating code for new user")

	code, err := newCode(s.cfg.CodeLength)
	if err != nil {
		s.fail(c, fmt.Errorf("generate code: %w", err))
		return
	}

	if err := s.cfg.Callbacks.OnAuthorize(c, code); err != nil {
		s.fail(c, fmt.Errorf("authorize user through OnAuthorize: %w", err))
	}
}

// Token handles POST /oauth/token. A refresh_token grant is handled like
// POST /oauth/refresh. A wrong client secret gets no response body.
// @Summary      Exchange code
// @Description  Exchanges an authorization code for access and refresh tokens
// @Tags         oauth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        client_secret  formData  string  true  "Client secret"
// @Param        code           formData  string  true  "Authorization code"
// @Success      200  {object}  oauth.TokenResponse
// @Router       /oauth/token [post]
func (s *Service) Token(c *gin.Context) {
	req, ok := s.bind(c)
	if !ok {
		return
	}
	if req.GrantType == "refresh_token" {
		s.refresh(c, req)
		return
	}

	s.logger.Debug().Msg("Generating access and refresh tokens")

	if !equal(req.ClientSecret, s.cfg.Secret) {
		s.logger.Warn().Msg("Token request with wrong client secret")
		return
	}

	tokens, err := s.cfg.Callbacks.OnGranted(c.Request.Context(), req.Code, s.cfg.Lifetime)
	if err != nil {
		s.logger.Error().Err(fmt.Errorf("%w: %w", ErrInvalidGrant, err)).Msg("Error while granting tokens")
		s.invalidGrant(c)
		return
	}

	s.logger.Debug().Msg("Sending tokens to user")
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  tokens.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.Lifetime,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh handles POST /oauth/refresh. A wrong client secret or a missing
// refresh token gets no response body.
// @Summary      Refresh token
// @Description  Issues a new access token, keeping the refresh token
// @Tags         oauth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        client_secret  formData  string  true  "Client secret"
// @Param        refresh_token  formData  string  true  "Refresh token"
// @Success      200  {object}  oauth.TokenResponse
// @Router       /oauth/refresh [post]
func (s *Service) Refresh(c *gin.Context) {
	req, ok := s.bind(c)
	if !ok {
		return
	}
	s.refresh(c, req)
}

func (s *Service) refresh(c *gin.Context, req tokenRequest) {
	if !equal(req.ClientSecret, s.cfg.Secret) || req.RefreshToken == "" {
		s.logger.Warn().Msg("Refresh request with wrong client secret or without refresh token")
		return
	}

	s.logger.Info().Msg("Refreshing token")

	accessToken, err := s.cfg.Callbacks.OnRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.logger.Error().Err(fmt.Errorf("%w: %w", ErrInvalidGrant, err)).Msg("Error while refreshing token")
		s.invalidGrant(c)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.Lifetime,
		RefreshToken: req.RefreshToken,
	})
}

// bind reads the token request from a form or JSON body. Client credentials
// sent with HTTP basic auth fill in a missing client_secret.
func (s *Service) bind(c *gin.Context) (tokenRequest, bool) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Malformed token request")
		s.invalidGrant(c)
		return req, false
	}

	if req.ClientSecret == "" {
		if id, secret, ok := c.Request.BasicAuth(); ok {
			req.ClientID = unescape(id)
			req.ClientSecret = unescape(secret)
		}
	}
	return req, true
}

func (s *Service) invalidGrant(c *gin.Context) {
	c.JSON(http.StatusOK, ErrorResponse{Error: "invalid_grant"})
}

func (s *Service) fail(c *gin.Context, err error) {
	s.logger.Error().Err(err).Msg("OAuth handler error")
	_ = c.AbortWithError(http.StatusInternalServerError, err)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// unescape undoes the form encoding OAuth clients apply to basic auth credentials
func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}
