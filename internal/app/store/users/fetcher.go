// internal/app/store/users/fetcher.go
package userstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users       *Store
	adminSuffix string
	logger      *zap.Logger
}

// NewFetcher creates a UserFetcher over the given store. adminSuffix is the
// trusted email suffix that marks a session as administrative.
func NewFetcher(users *Store, adminSuffix string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		users:       users,
		adminSuffix: adminSuffix,
		logger:      logger,
	}
}

// FetchUser returns the session user for email. It returns (nil, nil) when the
// record is gone or no longer active, which invalidates the session, and a
// non-nil error when the store could not be read.
func (f *Fetcher) FetchUser(ctx context.Context, email string) (*auth.SessionUser, error) {
	u, err := f.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if u.Status != models.StatusActive {
		return nil, nil
	}

	return &auth.SessionUser{
		Email:   u.Email,
		Status:  u.Status,
		IsAdmin: strings.HasSuffix(u.Email, f.adminSuffix),
	}, nil
}
