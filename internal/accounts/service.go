package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberwise/cyberwise-core/internal/common"
	"github.com/cyberwise/cyberwise-core/internal/cryptox"
	"github.com/cyberwise/cyberwise-core/internal/logging"
)

// State is the per-process authentication state.
type State int

const (
	StateLoggedOut State = iota
	// StatePendingToSAcceptance means credentials matched but the account
	// has not accepted the Terms of Service yet. It is not an error state.
	StatePendingToSAcceptance
	StateLoggedIn
)

// SessionCache persists the active session across process restarts
// ("remember me"). Load returns common.ErrorNotFound for an absent,
// corrupt, or tampered cache.
type SessionCache interface {
	Store(ctx context.Context, account Account) error
	Load(ctx context.Context) (*Account, error)
	Clear(ctx context.Context) error
}

// Service owns the registered-accounts collection and the single active
// session. All mutations follow the same discipline: load the active
// record, change a copy, replace the whole record in the repository, and
// refresh the session cache. Failed persistence is logged, never surfaced;
// the in-memory session keeps the new value.
//
// Single-user and UI-thread-driven: no internal locking.
type Service struct {
	repo  Repository
	cache SessionCache
	log   logging.Logger

	state  State
	active string // username, weak reference into the repository
}

func NewService(repo Repository, cache SessionCache, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{repo: repo, cache: cache, log: log}
}

// State returns the current authentication state.
func (s *Service) State() State { return s.state }

// ActiveUsername returns the active account's username, or "".
func (s *Service) ActiveUsername() string { return s.active }

// Active resolves the active account from the repository. The session never
// holds an independent copy of truth, so a record mutated elsewhere is
// always observed.
func (s *Service) Active(ctx context.Context) (*Account, error) {
	if s.active == "" {
		return nil, common.ErrorNoActiveAccount
	}
	return s.repo.FindByUsername(ctx, s.active)
}

// Restore attempts to resume a previously cached session. The cached record
// is only a hint: the account must still exist in the repository and must
// have accepted the Terms of Service for the session to come back as
// logged in. Anything else leaves the session logged out.
func (s *Service) Restore(ctx context.Context) {
	cached, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Debug(ctx, "no cached session to restore", "error", err)
		return
	}

	account, err := s.repo.FindByUsername(ctx, cached.Username)
	if err != nil || !account.HasAcceptedToS {
		s.log.Warn(ctx, "cached session no longer valid, discarding", "username", cached.Username)
		s.clearCache(ctx)
		return
	}

	s.state = StateLoggedIn
	s.active = account.Username
	s.log.Info(ctx, "session restored", "username", account.Username)
}

// Register validates the input, creates the account with default progress,
// appends it to the store, and logs the new account in directly
// (registration implies ToS acceptance). On any validation failure no state
// changes.
func (s *Service) Register(ctx context.Context, in RegistrationInput) error {
	if verr := validateRegistration(in); verr != nil {
		return verr
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return validationErr("username", "Username already exists.")
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		Username:            in.Username,
		PasswordHash:        hash,
		FullName:            in.FullName,
		Email:               in.Email,
		PhoneNumber:         in.PhoneNumber,
		DateOfBirth:         in.DateOfBirth,
		Progress:            DefaultProgress(),
		CallHistory:         []string{},
		ScamCheckHistory:    []string{},
		HasAcceptedToS:      true,
		AccountCreationDate: time.Now().UTC(),
	}

	if err := s.repo.Append(ctx, account); err != nil {
		s.log.Warn(ctx, "failed to persist new account", "username", account.Username, "error", err)
	}

	s.state = StateLoggedIn
	s.active = account.Username
	s.storeCache(ctx, account)
	return nil
}

// Login matches the username case-insensitively and verifies the password.
// A match without ToS acceptance moves to StatePendingToSAcceptance with
// the account active but not authenticated; that is not an error.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.state = StateLoggedOut
		return validationErr("credentials", "Please fill in both fields.")
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		s.state = StateLoggedOut
		return common.ErrorUnauthorized
	}

	ok, err := cryptox.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		s.state = StateLoggedOut
		return common.ErrorUnauthorized
	}

	s.active = account.Username
	if !account.HasAcceptedToS {
		s.state = StatePendingToSAcceptance
		return nil
	}

	s.state = StateLoggedIn
	s.storeCache(ctx, *account)
	return nil
}

// AcceptToS completes a pending login by recording Terms-of-Service
// acceptance on the account and moving to StateLoggedIn.
func (s *Service) AcceptToS(ctx context.Context) error {
	if s.state != StatePendingToSAcceptance {
		return common.ErrorNoActiveAccount
	}

	account, err := s.Active(ctx)
	if err != nil {
		return err
	}

	updated := *account
	updated.HasAcceptedToS = true
	s.replace(ctx, updated)

	s.state = StateLoggedIn
	return nil
}

// UpdateProgress raises the unlock level for a topic. Levels never go down
// and are clamped to MaxLessonLevel.
func (s *Service) UpdateProgress(ctx context.Context, topic string, level int) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	current, known := account.Progress[topic]
	if !known {
		return validationErr("topic", "Unknown lesson topic.")
	}

	if level > MaxLessonLevel {
		level = MaxLessonLevel
	}
	if level < current {
		return nil
	}

	updated := *account
	updated.Progress = make(map[string]int, len(account.Progress))
	for k, v := range account.Progress {
		updated.Progress[k] = v
	}
	updated.Progress[topic] = level
	s.replace(ctx, updated)
	return nil
}

// AddCallToHistory appends a verified caller record to the account's log.
func (s *Service) AddCallToHistory(ctx context.Context, value string) error {
	return s.appendHistory(ctx, value, func(a *Account) *[]string { return &a.CallHistory })
}

// AddScamCheckToHistory appends a scam-check record to the account's log.
func (s *Service) AddScamCheckToHistory(ctx context.Context, value string) error {
	return s.appendHistory(ctx, value, func(a *Account) *[]string { return &a.ScamCheckHistory })
}

func (s *Service) appendHistory(ctx context.Context, value string, pick func(*Account) *[]string) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	updated := *account
	dst := pick(&updated)
	*dst = append(append([]string(nil), *dst...), value)
	s.replace(ctx, updated)
	return nil
}

// UpdateProfileImage sets the logical avatar reference.
func (s *Service) UpdateProfileImage(ctx context.Context, ref string) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	updated := *account
	updated.ProfileImageName = ref
	s.replace(ctx, updated)
	return nil
}

// CompleteOnboarding marks the one-time onboarding flow as done.
func (s *Service) CompleteOnboarding(ctx context.Context) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	updated := *account
	updated.HasCompletedOnboarding = true
	s.replace(ctx, updated)
	return nil
}

// UpdatePassword replaces the credential after verifying the current one.
func (s *Service) UpdatePassword(ctx context.Context, current, newPassword string) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	ok, err := cryptox.VerifyPassword(current, account.PasswordHash)
	if err != nil || !ok {
		return common.ErrorUnauthorized
	}

	if len(newPassword) < minPasswordLength {
		return validationErr("password", "Password must be at least 8 characters long.")
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	updated := *account
	updated.PasswordHash = hash
	s.replace(ctx, updated)
	return nil
}

// Logout clears the session and discards the cached session record. The
// account itself stays in the repository.
func (s *Service) Logout(ctx context.Context) {
	s.state = StateLoggedOut
	s.active = ""
	s.clearCache(ctx)
}

// DeleteAccount removes the active account from the repository and logs
// out. Vault entries owned by the account are deliberately left behind;
// see DESIGN.md.
func (s *Service) DeleteAccount(ctx context.Context) error {
	account, err := s.requireLoggedIn(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, account.Username); err != nil {
		s.log.Warn(ctx, "failed to delete account record", "username", account.Username, "error", err)
	}

	s.Logout(ctx)
	return nil
}

func (s *Service) requireLoggedIn(ctx context.Context) (*Account, error) {
	if s.state != StateLoggedIn {
		return nil, common.ErrorNoActiveAccount
	}
	return s.Active(ctx)
}

// replace persists a whole-record replacement and refreshes the session
// cache. Failures are logged, not surfaced.
func (s *Service) replace(ctx context.Context, account Account) {
	if err := s.repo.Replace(ctx, account); err != nil {
		s.log.Warn(ctx, "failed to persist account update", "username", account.Username, "error", err)
	}
	if s.state == StateLoggedIn || account.HasAcceptedToS {
		s.storeCache(ctx, account)
	}
}

func (s *Service) storeCache(ctx context.Context, account Account) {
	if err := s.cache.Store(ctx, account); err != nil {
		s.log.Warn(ctx, "failed to cache session", "username", account.Username, "error", err)
	}
}

func (s *Service) clearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to discard cached session", "error", err)
	}
}
