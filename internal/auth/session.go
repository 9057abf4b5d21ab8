// Package auth models the user session as an explicit capability.
//
// Authentication itself is delegated to a managed provider fronting this
// service; by the time a request arrives here its identity has already been
// verified and is carried in trusted headers. The session object is threaded
// through every service call rather than read from ambient state, so tests
// can substitute fakes freely.
package auth

import (
	"context"
	"errors"
	"strings"
)

const (
	// UserIDHeader carries the verified user identifier set by the auth proxy.
	UserIDHeader = "X-User-Id"
	// UserEmailHeader carries the verified user contact address.
	UserEmailHeader = "X-User-Email"
)

// ErrUnauthenticated means no usable session accompanied the request.
var ErrUnauthenticated = errors.New("no authenticated session")

// Session is the opaque capability a workflow needs before any write or
// scoped read: the owning user's identifier and contact address.
type Session struct {
	UserID string
	Email  string
}

// Resolver turns request metadata into a Session.
type Resolver interface {
	// Resolve builds a session from a header lookup function. The context
	// bounds resolvers that consult an external verifier.
	// Returns ErrUnauthenticated when no user identity is present.
	Resolve(ctx context.Context, headerGet func(key string) string) (*Session, error)
}

// HeaderResolver trusts the identity headers injected by the fronting
// managed auth provider.
type HeaderResolver struct{}

// NewHeaderResolver returns the production Resolver.
func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{}
}

func (h *HeaderResolver) Resolve(_ context.Context, headerGet func(key string) string) (*Session, error) {
	userID := strings.TrimSpace(headerGet(UserIDHeader))
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return &Session{
		UserID: userID,
		Email:  strings.TrimSpace(headerGet(UserEmailHeader)),
	}, nil
}
