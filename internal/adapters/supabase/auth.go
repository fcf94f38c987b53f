package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/gotrue-go"

	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// ErrInvalidToken is returned for tokens the auth server rejects.
var ErrInvalidToken = errors.New("invalid or expired token")

// GoTrueVerifier validates bearer tokens by asking Supabase Auth for the user.
type GoTrueVerifier struct {
	client gotrue.Client
}

// NewGoTrueVerifier targets {baseURL}/auth/v1 with the project's anon key.
func NewGoTrueVerifier(baseURL, anonKey string) *GoTrueVerifier {
	client := gotrue.New("", anonKey).WithCustomGoTrueURL(baseURL + "/auth/v1")
	return &GoTrueVerifier{client: client}
}

func (v *GoTrueVerifier) Verify(ctx context.Context, token string) (ports.Identity, error) {
	if token == "" {
		return ports.Identity{}, ErrInvalidToken
	}
	if err := ctx.Err(); err != nil {
		return ports.Identity{}, err
	}
	user, err := v.client.WithToken(token).GetUser()
	if err != nil {
		return ports.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return ports.Identity{UserID: user.ID.String(), Email: user.Email}, nil
}
