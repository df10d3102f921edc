package session

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds session options
type Config interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetHydrationTimeout() time.Duration
	GetContextKey() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// IdentityClient is the backend auth surface the gateway consumes. All raw
// transport failures stay below this boundary; implementations return
// classified errors (see errors.go).
type IdentityClient interface {
	Login(ctx context.Context, identifier, secret string) (*User, string, error)
	Register(ctx context.Context, payload RegistrationPayload) (*User, string, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*User, error)
}

// RegistrationPayload is the account creation request body.
type RegistrationPayload struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email,omitempty"`
	Password     string   `json:"password"`
	Role         UserRole `json:"role"`
	BusinessName string   `json:"businessName,omitempty"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
