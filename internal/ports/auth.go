package ports

import "context"

// Identity is the authenticated principal behind a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier validates bearer tokens issued by the auth provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
