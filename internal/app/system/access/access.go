// Package access is the account state machine: waitlist signup, admin status
// changes, and the sign-in admission decision.
//
// States are models.StatusWaitlist (initial), StatusActive, and StatusDisabled.
// A record is only ever created at waitlist by RequestJoin; every later change
// goes through SetStatus. Any of the three statuses may move to any other.
package access

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/inputval"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the target email has no record.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidStatus is returned for a status outside models.AllStatuses.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidEmail is returned when a signup email is malformed.
	ErrInvalidEmail = errors.New("valid email is required")
)

// Messages returned by RequestJoin.
const (
	MsgJoined          = "Successfully added to waitlist!"
	MsgAlreadyActive   = "Your account is active! Please use the login button to access the app."
	MsgAlreadyDisabled = "Your account is currently disabled. Please contact support."
	MsgAlreadyWaiting  = "You're already on the waitlist! We'll notify you when access is available."
)

// JoinResult is the outcome of a waitlist request. An existing record is an
// informational outcome, not an error.
type JoinResult struct {
	Created bool
	Status  string // status of the record after the call
	Message string
}

// Admission is the sign-in gate's decision for one email.
type Admission struct {
	Allowed bool
	Status  string // empty when no record exists
}

// Observer is notified after successful state changes. Implementations must
// not block; the state machine calls them inline.
type Observer interface {
	Joined(email string)
	StatusChanged(actor, target, from, to string)
}

// Machine owns every transition of a UserRecord's status.
type Machine struct {
	users     *userstore.Store
	logger    *zap.Logger
	observers []Observer
}

// New creates a Machine over the user repository.
func New(users *userstore.Store, logger *zap.Logger, observers ...Observer) *Machine {
	return &Machine{users: users, logger: logger, observers: observers}
}

// RequestJoin puts email on the waitlist. If a record already exists it is
// left untouched and the result carries a message for its current status.
func (m *Machine) RequestJoin(ctx context.Context, email string) (JoinResult, error) {
	if !inputval.IsValidEmail(email) {
		return JoinResult{}, ErrInvalidEmail
	}

	existing, err := m.users.Get(ctx, email)
	switch {
	case err == nil:
		return existingResult(existing.Status), nil
	case !errors.Is(err, userstore.ErrNotFound):
		return JoinResult{}, fmt.Errorf("request join: %w", err)
	}

	if _, err := m.users.Create(ctx, email, models.StatusWaitlist); err != nil {
		if errors.Is(err, userstore.ErrExists) {
			// Lost a race with a concurrent signup for the same email.
			u, gerr := m.users.Get(ctx, email)
			if gerr != nil {
				return JoinResult{}, fmt.Errorf("request join: %w", gerr)
			}
			return existingResult(u.Status), nil
		}
		return JoinResult{}, fmt.Errorf("request join: %w", err)
	}

	m.logger.Info("waitlist signup", zap.String("email", email))
	for _, o := range m.observers {
		o.Joined(email)
	}
	return JoinResult{Created: true, Status: models.StatusWaitlist, Message: MsgJoined}, nil
}

func existingResult(status string) JoinResult {
	r := JoinResult{Status: status}
	switch status {
	case models.StatusActive:
		r.Message = MsgAlreadyActive
	case models.StatusDisabled:
		r.Message = MsgAlreadyDisabled
	default:
		r.Message = MsgAlreadyWaiting
	}
	return r
}

// SetStatus moves target to status on behalf of actor. The status is checked
// before the target is looked up, so an invalid status is reported even for
// an unknown email.
func (m *Machine) SetStatus(ctx context.Context, actor, target, status string) (*models.UserRecord, error) {
	u, _, err := m.ChangeStatus(ctx, actor, target, status)
	return u, err
}

// ChangeStatus is SetStatus that also reports the status held before the
// change.
func (m *Machine) ChangeStatus(ctx context.Context, actor, target, status string) (*models.UserRecord, string, error) {
	if !models.IsValidStatus(status) {
		return nil, "", ErrInvalidStatus
	}

	u, err := m.users.Get(ctx, target)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("set status: %w", err)
	}

	from := u.Status
	at, err := m.users.SetStatus(ctx, target, status, actor)
	if err != nil {
		return nil, "", fmt.Errorf("set status: %w", err)
	}
	u.Status = status
	u.UpdatedAt = &at
	u.UpdatedBy = actor

	m.logger.Info("user status changed",
		zap.String("actor", actor),
		zap.String("target", target),
		zap.String("from", from),
		zap.String("to", status))
	for _, o := range m.observers {
		o.StatusChanged(actor, target, from, status)
	}
	return u, from, nil
}

// IsActive reports whether email has a record with status active.
func (m *Machine) IsActive(ctx context.Context, email string) (bool, error) {
	u, err := m.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Status == models.StatusActive, nil
}

// AdmitSignIn decides whether a verified identity may open a session. Only an
// existing active record is admitted; on admission lastLogin is updated.
func (m *Machine) AdmitSignIn(ctx context.Context, email string) (Admission, error) {
	u, err := m.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return Admission{}, nil
		}
		return Admission{}, fmt.Errorf("admit sign-in: %w", err)
	}
	if u.Status != models.StatusActive {
		return Admission{Status: u.Status}, nil
	}
	if err := m.users.TouchLastLogin(ctx, email); err != nil {
		return Admission{}, fmt.Errorf("admit sign-in: %w", err)
	}
	return Admission{Allowed: true, Status: u.Status}, nil
}

// EnsureActive joins email to the waitlist if needed and promotes it to
// active. Startup uses it to seed the first administrator.
func (m *Machine) EnsureActive(ctx context.Context, actor, email string) error {
	res, err := m.RequestJoin(ctx, email)
	if err != nil {
		return err
	}
	if res.Status == models.StatusActive {
		return nil
	}
	_, err = m.SetStatus(ctx, actor, email, models.StatusActive)
	return err
}
