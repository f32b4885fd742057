package application

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

// MsgInvalidCredentials is the single message every rejected bearer token gets.
const MsgInvalidCredentials = "Could not validate credentials"

// Identity is the authenticated caller of one request.
type Identity struct {
	User entity.User
}

func (i Identity) UserID() int64 { return i.User.ID }
func (i Identity) Email() string { return i.User.Email }

// TokenDecoder verifies a token and returns its claims.
type TokenDecoder interface {
	Decode(token string) (helpers.TokenClaims, error)
}

// UserLookup finds a user by exact email.
type UserLookup func(ctx context.Context, email string) (*entity.User, error)

// ResolveIdentity turns a bearer token into an Identity. Every codec rejection
// and an unknown subject both collapse into KindUnauthorized; only a lookup
// failure other than repository.ErrNotFound is internal.
func ResolveIdentity(ctx context.Context, decoder TokenDecoder, token string, lookup UserLookup) (Identity, error) {
	claims, err := decoder.Decode(token)
	if err != nil {
		return Identity{}, apperror.Wrap(err, apperror.KindUnauthorized, MsgInvalidCredentials)
	}
	u, err := lookup(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Identity{}, apperror.New(apperror.KindUnauthorized, MsgInvalidCredentials)
		}
		return Identity{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
	}
	if u == nil {
		return Identity{}, apperror.New(apperror.KindUnauthorized, MsgInvalidCredentials)
	}
	return Identity{User: *u}, nil
}

// IdentityResolver binds a decoder and a user store for the auth middleware.
type IdentityResolver struct {
	decoder TokenDecoder
	lookup  UserLookup
}

func NewIdentityResolver(decoder TokenDecoder, users repo.UserRepository) *IdentityResolver {
	return &IdentityResolver{decoder: decoder, lookup: users.FindByEmail}
}

func (r *IdentityResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	return ResolveIdentity(ctx, r.decoder, token, r.lookup)
}
