package accounts

import (
	"errors"
	"fmt"

	"github.com/urmzd/voicelink/pkg/oauth"
)

var (
	// ErrInvalidCode indicates an unknown, expired or already used authorization code
	ErrInvalidCode = fmt.Errorf("%w: unknown or expired code", oauth.ErrInvalidGrant)

	// ErrInvalidToken indicates an unknown or revoked refresh token
	ErrInvalidToken = fmt.Errorf("%w: unknown refresh token", oauth.ErrInvalidGrant)

	// ErrInvalidCredentials indicates a failed consent login
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")

	// ErrNoUsers indicates a Manager configured without users
	ErrNoUsers = errors.New("accounts: no users configured")
)
