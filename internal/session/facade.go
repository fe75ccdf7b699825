package session

import (
	"context"
	"errors"

	"github.com/cyberwise/cyberwise-core/internal/accounts"
	"github.com/cyberwise/cyberwise-core/internal/common"
)

// State is the read-only view of "who is using the app right now",
// republished to subscribers after every account operation.
type State struct {
	IsAuthenticated  bool
	NeedsToAcceptToS bool
	ActiveUsername   string
	// ActiveAccount is a copy of the repository record, refreshed on every
	// publish; it is never the record itself.
	ActiveAccount *accounts.Account
	// LastError is the display message of the most recent validation or
	// authentication failure, empty after a successful operation.
	LastError string
}

// Facade wraps the account service for UI consumption. It is an injected
// service object, not a global: construct one and hand it to every screen.
// Like the rest of the core it is single-user and UI-thread-driven, so it
// does no locking.
type Facade struct {
	svc       *accounts.Service
	lastError string
	listeners []func(State)
}

func NewFacade(svc *accounts.Service) *Facade {
	return &Facade{svc: svc}
}

// Subscribe registers fn to be called with every republished state. The
// returned function removes the subscription.
func (f *Facade) Subscribe(fn func(State)) func() {
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() { f.listeners[idx] = nil }
}

// Start restores a cached session if one verifies, then publishes the
// initial state.
func (f *Facade) Start(ctx context.Context) {
	f.svc.Restore(ctx)
	f.publish(ctx)
}

// Current returns the present state without waiting for a notification.
func (f *Facade) Current(ctx context.Context) State {
	return f.snapshot(ctx)
}

func (f *Facade) Register(ctx context.Context, in accounts.RegistrationInput) error {
	return f.finish(ctx, f.svc.Register(ctx, in))
}

func (f *Facade) Login(ctx context.Context, username, password string) error {
	return f.finish(ctx, f.svc.Login(ctx, username, password))
}

func (f *Facade) AcceptToS(ctx context.Context) error {
	return f.finish(ctx, f.svc.AcceptToS(ctx))
}

func (f *Facade) UpdateProgress(ctx context.Context, topic string, level int) error {
	return f.finish(ctx, f.svc.UpdateProgress(ctx, topic, level))
}

func (f *Facade) AddCallToHistory(ctx context.Context, value string) error {
	return f.finish(ctx, f.svc.AddCallToHistory(ctx, value))
}

func (f *Facade) AddScamCheckToHistory(ctx context.Context, value string) error {
	return f.finish(ctx, f.svc.AddScamCheckToHistory(ctx, value))
}

func (f *Facade) UpdateProfileImage(ctx context.Context, ref string) error {
	return f.finish(ctx, f.svc.UpdateProfileImage(ctx, ref))
}

func (f *Facade) CompleteOnboarding(ctx context.Context) error {
	return f.finish(ctx, f.svc.CompleteOnboarding(ctx))
}

func (f *Facade) UpdatePassword(ctx context.Context, current, newPassword string) error {
	return f.finish(ctx, f.svc.UpdatePassword(ctx, current, newPassword))
}

func (f *Facade) Logout(ctx context.Context) {
	f.svc.Logout(ctx)
	_ = f.finish(ctx, nil)
}

func (f *Facade) DeleteAccount(ctx context.Context) error {
	return f.finish(ctx, f.svc.DeleteAccount(ctx))
}

// finish records the operation's outcome for display and republishes.
func (f *Facade) finish(ctx context.Context, err error) error {
	switch {
	case err == nil:
		f.lastError = ""
	default:
		f.lastError = displayMessage(err)
	}
	f.publish(ctx)
	return err
}

func (f *Facade) publish(ctx context.Context) {
	state := f.snapshot(ctx)
	for _, fn := range f.listeners {
		if fn != nil {
			fn(state)
		}
	}
}

func (f *Facade) snapshot(ctx context.Context) State {
	state := State{
		IsAuthenticated:  f.svc.State() == accounts.StateLoggedIn,
		NeedsToAcceptToS: f.svc.State() == accounts.StatePendingToSAcceptance,
		ActiveUsername:   f.svc.ActiveUsername(),
		LastError:        f.lastError,
	}
	if account, err := f.svc.Active(ctx); err == nil {
		cp := *account
		state.ActiveAccount = &cp
	}
	return state
}

// displayMessage maps core errors onto the message shown to the user.
func displayMessage(err error) string {
	var verr *accounts.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, common.ErrorUnauthorized) {
		return "Invalid username or password."
	}
	if errors.Is(err, common.ErrorNoActiveAccount) {
		return "Please log in first."
	}
	return "Something went wrong. Please try again."
}
