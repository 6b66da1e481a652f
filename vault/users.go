package vault

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/query"
)

// bcryptCost is fixed; raising it invalidates nothing, existing hashes keep
// their recorded cost.
const bcryptCost = 12

// usernamePattern limits usernames to letters, digits, '.', '_' and '-'.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// usersOwnerSlot fills the owner segment of user cache keys. Accounts are not
// owned by anyone, but the key layout is shared with the owned resources.
const usersOwnerSlot = "all"

// UserKeyspace tags user cache entries.
func UserKeyspace() cache.Keyspace {
	return cache.NewKeyspace("users", "user")
}

// RegisterInput carries a new account. Password is plaintext and is hashed
// before the store ever sees the record.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// UserService is the cache-aside front for accounts.
type UserService struct {
	users       UserStore
	cache       cache.CacheService
	codec       cache.Codec
	invalidator *Invalidator
	logger      *zap.Logger

	keys cache.Keyspace
	ttl  time.Duration
}

func NewUserService(users UserStore, svc cache.CacheService, codec cache.Codec, inv *Invalidator, logger *zap.Logger, ttl time.Duration) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &UserService{
		users:       users,
		cache:       svc,
		codec:       codec,
		invalidator: inv,
		logger:      logger,
		keys:        UserKeyspace(),
		ttl:         ttl,
	}
}

// HashPassword is the explicit pre-write transform applied to every stored
// password. Exposed so tests and fixtures hash the same way the service does.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidInput, "password cannot be hashed")
	}
	return string(hash), nil
}

// Register creates an account with role "user". Email and username collisions
// surface as already-exists from the store.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*User, error) {
	switch {
	case in.Name == "":
		return nil, errors.New(errors.CodeInvalidInput, "name is required")
	case in.Email == "":
		return nil, errors.New(errors.CodeInvalidInput, "email is required")
	case in.Username == "":
		return nil, errors.New(errors.CodeInvalidInput, "username is required")
	case !usernamePattern.MatchString(in.Username):
		return nil, errors.Newf(errors.CodeInvalidInput, "username %q may only contain letters, digits, '.', '_' and '-'", in.Username)
	case strings.HasSuffix(in.Username, "."):
		return nil, errors.Newf(errors.CodeInvalidInput, "username %q must not end with a period", in.Username)
	case len(in.Password) < 8:
		return nil, errors.New(errors.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &User{
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, usersOwnerSlot, user.ID)
	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password produce
// the same error so the response does not confirm which part was wrong.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	failed := errors.New(errors.CodeInvalidInput, "email or password is incorrect")

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.GetCode(err) == errors.CodeNotFound {
			return nil, failed
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, failed
	}
	return user, nil
}

// List returns accounts for the given query.
func (s *UserService) List(ctx context.Context, params map[string]string) ([]*User, error) {
	desc, err := query.Parse(params)
	if err != nil {
		return nil, err
	}

	key := s.keys.ListKey(usersOwnerSlot, cache.ScopeOwner, desc.Fingerprint())

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) ([]*User, error) {
		return s.users.FindMany(ctx, desc)
	})
}

// GetByID returns one account.
func (s *UserService) GetByID(ctx context.Context, id string) (*User, error) {
	key := s.keys.ItemKey(usersOwnerSlot, id, cache.ScopeOwner)

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) (*User, error) {
		return s.users.FindOne(ctx, id)
	})
}

// UpdateProfile lets a user change their own record.
func (s *UserService) UpdateProfile(ctx context.Context, requesterID string, patch UserPatch) (*User, error) {
	if patch.Email != nil && *patch.Email == "" {
		return nil, errors.New(errors.CodeInvalidInput, "email is required")
	}
	if patch.Username != nil && *patch.Username == "" {
		return nil, errors.New(errors.CodeInvalidInput, "username is required")
	}

	user, err := s.users.FindOneAndUpdate(ctx, requesterID, patch)
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, usersOwnerSlot, requesterID)
	return user, nil
}

// Delete removes an account. Self-deletion is always allowed; deleting anyone
// else requires the admin role.
func (s *UserService) Delete(ctx context.Context, requester *User, id string) error {
	if requester.ID != id && requester.Role != RoleAdmin {
		return errors.New(errors.CodeForbidden, "only admins may delete other accounts")
	}

	if _, err := s.users.FindOneAndDelete(ctx, id); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx, s.keys, usersOwnerSlot, id)
	return nil
}
