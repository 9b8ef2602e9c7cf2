package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/focusboard/internal/apperror"
	"github.com/sakif/focusboard/internal/auth"
	"github.com/sakif/focusboard/internal/model"
	"github.com/sakif/focusboard/internal/repository"
)

// User-facing validation messages for the login and signup forms.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgPasswordMismatch = "Passwords do not match"
	MsgEmailTaken       = "An account with this email already exists"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 6
	// SessionLifetime is how long a non-remembered session stays valid.
	SessionLifetime = 24 * time.Hour
)

// emailPattern is the loose shape check used by both forms: something, an
// @, something, a dot, something, and no whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionOptions switches the optional session behaviours.
type SessionOptions struct {
	// HashPasswords stores new account passwords as bcrypt hashes.
	HashPasswords bool
	// LegacyEmailMatch makes the duplicate-email check case-sensitive.
	LegacyEmailMatch bool
}

// SessionService is the Session Manager: it owns the single active Session
// and the list of signed-up accounts.
//
// STATES:
//
//	Anonymous ──Login/Signup──▶ Authenticated
//	    ▲                            │
//	    └────Logout / expiry─────────┘
//
// NO CREDENTIAL CHECK:
// Login accepts any well-formed email and any password of six or more
// characters. It never compares against the stored account. This is a
// single-user demo dashboard, not an identity provider.
type SessionService struct {
	store     *repository.Store
	session   *repository.Document[model.Session]
	accounts  *repository.Collection[model.Account]
	passwords *auth.PasswordService
	opts      SessionOptions
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionService creates a SessionService persisting into store.
// passwords may be nil: with opts.HashPasswords set, a nil passwords falls
// back to auth.NewPasswordService().
func NewSessionService(
	store *repository.Store,
	passwords *auth.PasswordService,
	opts SessionOptions,
	logger *slog.Logger,
) *SessionService {
	if opts.HashPasswords && passwords == nil {
		passwords = auth.NewPasswordService()
	}
	return &SessionService{
		store:     store,
		session:   repository.NewDocument[model.Session](store, repository.KeyUser),
		accounts:  repository.NewCollection[model.Account](store, repository.KeyUsers),
		passwords: passwords,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Login validates the form and starts a new Session, replacing any previous
// one.
//
// The display name is the name of the account registered with this email,
// if there is one; otherwise it's derived from the email (see NameFromEmail).
func (s *SessionService) Login(ctx context.Context, email, password string, remember bool) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", MsgFillAllFields)
	}
	if !isValidEmail(email) {
		return nil, apperror.ValidationFailed("email", MsgInvalidEmail)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", MsgPasswordTooShort)
	}

	name := NameFromEmail(email)
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if acc, ok := s.findAccount(accounts, email); ok && strings.TrimSpace(acc.Name) != "" {
		name = acc.Name
	}

	session, err := s.start(ctx, email, name, remember)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("sessionID", session.ID),
		slog.Bool("remember", remember),
	)
	return session, nil
}

// Signup validates the form, records a new Account and starts a Session for
// it. Signup sessions are never remembered.
func (s *SessionService) Signup(ctx context.Context, name, email, password, confirmPassword string) (*model.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, apperror.ValidationFailed("", MsgFillAllFields)
	}
	if !isValidEmail(email) {
		return nil, apperror.ValidationFailed("email", MsgInvalidEmail)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", MsgPasswordTooShort)
	}
	if password != confirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", MsgPasswordMismatch)
	}

	stored := password
	if s.opts.HashPasswords {
		hashed, err := s.passwords.Hash(password)
		if err != nil {
			// Only fails for passwords over bcrypt's 72-byte limit.
			return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
		}
		stored = hashed
	}

	account := model.Account{
		ID:        s.accounts.NewID(),
		Name:      name,
		Email:     email,
		Password:  stored,
		CreatedAt: s.now(),
	}

	err := s.accounts.Update(ctx, func(accounts []model.Account) ([]model.Account, error) {
		if _, taken := s.findAccount(accounts, email); taken {
			return nil, apperror.ValidationFailed("email", MsgEmailTaken)
		}
		return append(accounts, account), nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("saving account: %w", err)
	}

	session, err := s.start(ctx, email, name, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		slog.String("accountID", account.ID),
		slog.String("sessionID", session.ID),
	)
	return session, nil
}

// Logout ends the current Session.
//
// If that Session was not remembered, the todos, events and notes are wiped
// along with it. Logging out with no Session is a no-op. Confirming with the
// user is the caller's job.
func (s *SessionService) Logout(ctx context.Context) error {
	current, err := s.session.Get(ctx)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if current == nil {
		return nil
	}

	keys := []string{repository.KeyUser, repository.KeyRemember}
	if !current.Remember {
		keys = append(keys, repository.KeyTodos, repository.KeyEvents, repository.KeyNotes)
	}
	if err := s.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.logger.Info("user logged out",
		slog.String("sessionID", current.ID),
		slog.Bool("dataWiped", !current.Remember),
	)
	return nil
}

// IsAuthenticated reports whether a Session is stored. It does not check
// expiry; use IsSessionValid for that.
func (s *SessionService) IsAuthenticated(ctx context.Context) (bool, error) {
	current, err := s.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return current != nil, nil
}

// CurrentUser returns the stored Session, or nil when nobody is logged in.
func (s *SessionService) CurrentUser(ctx context.Context) (*model.Session, error) {
	current, err := s.session.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return current, nil
}

// IsSessionValid reports whether the stored Session may still be used.
//
// Remembered sessions never expire. Others expire once more than
// SessionLifetime has passed since login; an expired Session is deleted
// before returning false.
func (s *SessionService) IsSessionValid(ctx context.Context) (bool, error) {
	current, err := s.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	if current.Remember {
		return true, nil
	}

	if s.now().Sub(current.LoginTime) <= SessionLifetime {
		return true, nil
	}

	if err := s.store.Remove(ctx, repository.KeyUser, repository.KeyRemember); err != nil {
		return false, fmt.Errorf("clearing expired session: %w", err)
	}
	s.logger.Info("session expired",
		slog.String("sessionID", current.ID),
		slog.Time("loginTime", current.LoginTime),
	)
	return false, nil
}

// start stores a fresh Session and keeps the remember flag key in step
// with it.
func (s *SessionService) start(ctx context.Context, email, name string, remember bool) (*model.Session, error) {
	session := model.Session{
		ID:        s.store.NewID(),
		Email:     email,
		Name:      name,
		LoginTime: s.now(),
		Remember:  remember,
	}

	if err := s.session.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	var err error
	if remember {
		err = s.store.SetString(ctx, repository.KeyRemember, "true")
	} else {
		err = s.store.Remove(ctx, repository.KeyRemember)
	}
	if err != nil {
		return nil, fmt.Errorf("saving remember flag: %w", err)
	}

	return &session, nil
}

func (s *SessionService) findAccount(accounts []model.Account, email string) (model.Account, bool) {
	for _, a := range accounts {
		if s.sameEmail(a.Email, email) {
			return a, true
		}
	}
	return model.Account{}, false
}

func (s *SessionService) sameEmail(a, b string) bool {
	if s.opts.LegacyEmailMatch {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// NameFromEmail derives a display name from the part of email before the @:
// the first character is upper-cased and every '.' or '_' after it becomes a
// space. "jane.doe_x@example.com" gives "Jane doe x".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(local)
	rest := strings.NewReplacer(".", " ", "_", " ").Replace(local[size:])
	return string(unicode.ToUpper(first)) + rest
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
