package auth

import "time"

// UserClaims identifies the authenticated caller of a request
type UserClaims interface {
	Username() string
	Source() string
	ExpiresAt() time.Time
}

// SessionClaims come from the dashboard session cookie
type SessionClaims struct {
	SessionID   string
	UsernameVal string
	Expiry      time.Time
}

func (c *SessionClaims) Username() string     { return c.UsernameVal }
func (c *SessionClaims) Source() string       { return "SESSION" }
func (c *SessionClaims) ExpiresAt() time.Time { return c.Expiry }

// JWTClaims come from an API bearer token
type JWTClaims struct {
	TokenID     string
	UsernameVal string
	Expiry      time.Time
}

func (c *JWTClaims) Username() string     { return c.UsernameVal }
func (c *JWTClaims) Source() string       { return "JWT" }
func (c *JWTClaims) ExpiresAt() time.Time { return c.Expiry }
