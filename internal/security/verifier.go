package security

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is what the report service needs from an access token.
type Claims struct {
	UserID string
	Role   string
	Issuer string
	Exp    time.Time
}

type TokenVerifier interface {
	VerifyAccessToken(token string) (Claims, error)
}
