package backend

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "posdash/internal/log"
	"posdash/models"
)

const (
	purposeAccess   = "access"
	purposeRecovery = "recovery"
	purposeSignup   = "signup"

	// MinPasswordLength is the shortest password the provider accepts.
	MinPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserExists         = errors.New("user already registered")
	ErrInvalidEmail       = errors.New("unable to validate email address: invalid format")
	ErrWeakPassword       = fmt.Errorf("password should be at least %d characters", MinPasswordLength)
	ErrInvalidToken       = errors.New("token is invalid or has expired")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthConfig tunes token lifetimes and sign-up behaviour.
type AuthConfig struct {
	Secret                   []byte
	AccessTokenTTL           time.Duration
	RecoveryTokenTTL         time.Duration
	RequireEmailConfirmation bool
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// User is the public view of an identity.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is the result of a successful password sign-in.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type tokenClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// Auth is the password-based auth provider backed by the auth_identities table.
type Auth struct {
	db        *gorm.DB
	cfg       AuthConfig
	publicURL string
	mailer    Mailer
}

func newAuth(db *gorm.DB, cfg AuthConfig, publicURL string, mailer Mailer) (*Auth, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("backend: auth secret is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = time.Hour
	}
	if cfg.RecoveryTokenTTL <= 0 {
		cfg.RecoveryTokenTTL = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Auth{db: db, cfg: cfg, publicURL: publicURL, mailer: mailer}, nil
}

// SignUp registers a new identity. When email confirmation is required a
// verification link pointing back at redirectTo is mailed; otherwise the
// identity is confirmed immediately.
func (a *Auth) SignUp(ctx context.Context, email, password, redirectTo string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if len(password) < MinPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	identity := models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if !a.cfg.RequireEmailConfirmation {
		now := a.now()
		identity.EmailConfirmedAt = &now
	}

	err = a.db.WithContext(ctx).Create(&identity).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return User{}, ErrUserExists
	}
	if err != nil {
		return User{}, tableError("insert into", identity.TableName(), err)
	}
	applog.Info(ctx, "identity created", "user_id", identity.ID)

	if a.cfg.RequireEmailConfirmation {
		if err := a.sendConfirmation(ctx, identity, redirectTo); err != nil {
			// The address must stay free for a retry.
			if delErr := a.DeleteUser(ctx, identity.ID); delErr != nil {
				applog.Error(ctx, "failed to roll back identity after confirmation error", "user_id", identity.ID, "error", delErr)
			}
			return User{}, err
		}
	}

	return toUser(identity), nil
}

func (a *Auth) sendConfirmation(ctx context.Context, identity models.Identity, redirectTo string) error {
	token, err := a.issue(identity, purposeSignup, 24*time.Hour)
	if err != nil {
		return err
	}
	link := a.link("/auth/confirm", url.Values{"token": {token}, "redirect_to": {redirectTo}})
	if err := a.mailer.Send(ctx, Message{
		To:      identity.Email,
		Subject: "Confirm your signup",
		Body:    "Follow this link to confirm your account: " + link,
	}); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// ConfirmEmail marks the identity named by a signup token as confirmed.
func (a *Auth) ConfirmEmail(ctx context.Context, token string) (User, error) {
	identity, err := a.verify(ctx, token, purposeSignup)
	if err != nil {
		return User{}, err
	}
	if identity.EmailConfirmedAt == nil {
		now := a.now()
		if err := a.db.WithContext(ctx).Model(&identity).Update("email_confirmed_at", now).Error; err != nil {
			return User{}, tableError("update", identity.TableName(), err)
		}
		identity.EmailConfirmedAt = &now
	}
	return toUser(identity), nil
}

// SignInWithPassword checks credentials and issues an access token.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	identity, err := a.byEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if a.cfg.RequireEmailConfirmation && !identity.Confirmed() {
		return Session{}, ErrEmailNotConfirmed
	}

	token, err := a.issue(identity, purposeAccess, a.cfg.AccessTokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   a.now().Add(a.cfg.AccessTokenTTL),
		User:        toUser(identity),
	}, nil
}

// GetUser resolves an access token to its user.
func (a *Auth) GetUser(ctx context.Context, accessToken string) (User, error) {
	identity, err := a.verify(ctx, accessToken, purposeAccess)
	if err != nil {
		return User{}, err
	}
	return toUser(identity), nil
}

// UserByID loads a user without a token.
func (a *Auth) UserByID(ctx context.Context, id string) (User, error) {
	identity, err := a.byID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return toUser(identity), nil
}

// SignOut revokes every token issued to the user so far.
func (a *Auth) SignOut(ctx context.Context, userID string) error {
	res := a.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", userID).
		Update("session_version", gorm.Expr("session_version + 1"))
	if res.Error != nil {
		return tableError("update", models.Identity{}.TableName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetPasswordForEmail mails a recovery link to redirectTo. Unknown
// addresses succeed silently so callers cannot probe for accounts.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	identity, err := a.byEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		applog.Debug(ctx, "password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := a.issue(identity, purposeRecovery, a.cfg.RecoveryTokenTTL)
	if err != nil {
		return err
	}
	link := a.link(redirectTo, url.Values{"token": {token}})
	return a.mailer.Send(ctx, Message{
		To:      identity.Email,
		Subject: "Reset your password",
		Body:    "Follow this link to reset the password for your account: " + link,
	})
}

// VerifyRecovery validates a recovery token and returns its user.
func (a *Auth) VerifyRecovery(ctx context.Context, token string) (User, error) {
	identity, err := a.verify(ctx, token, purposeRecovery)
	if err != nil {
		return User{}, err
	}
	return toUser(identity), nil
}

// UpdatePassword replaces the user's password and revokes outstanding tokens,
// including the recovery token that authorised the change.
func (a *Auth) UpdatePassword(ctx context.Context, userID, password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := a.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash":   string(hash),
			"session_version": gorm.Expr("session_version + 1"),
			"updated_at":      a.now(),
		})
	if res.Error != nil {
		return tableError("update", models.Identity{}.TableName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CheckPassword reports ErrInvalidCredentials unless password is the user's
// current password.
func (a *Auth) CheckPassword(ctx context.Context, userID, password string) error {
	identity, err := a.byID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// DeleteUser removes an identity.
func (a *Auth) DeleteUser(ctx context.Context, userID string) error {
	res := a.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.Identity{})
	if res.Error != nil {
		return tableError("delete from", models.Identity{}.TableName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (a *Auth) issue(identity models.Identity, purpose string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := tokenClaims{
		Email:   identity.Email,
		Purpose: purpose,
		Version: identity.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *Auth) verify(ctx context.Context, token, purpose string) (models.Identity, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return a.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.cfg.Now), jwt.WithExpirationRequired())
	if err != nil {
		applog.Debug(ctx, "token rejected", "purpose", purpose, "error", err)
		return models.Identity{}, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return models.Identity{}, ErrInvalidToken
	}

	identity, err := a.byID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return models.Identity{}, ErrInvalidToken
	}
	if err != nil {
		return models.Identity{}, err
	}
	if identity.SessionVersion != claims.Version {
		return models.Identity{}, ErrInvalidToken
	}
	return identity, nil
}

func (a *Auth) byEmail(ctx context.Context, email string) (models.Identity, error) {
	var identity models.Identity
	err := a.db.WithContext(ctx).Where("email = ?", email).Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identity, ErrUserNotFound
	}
	if err != nil {
		return identity, tableError("select from", identity.TableName(), err)
	}
	return identity, nil
}

func (a *Auth) byID(ctx context.Context, id string) (models.Identity, error) {
	var identity models.Identity
	err := a.db.WithContext(ctx).Where("id = ?", id).Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identity, ErrUserNotFound
	}
	if err != nil {
		return identity, tableError("select from", identity.TableName(), err)
	}
	return identity, nil
}

func (a *Auth) link(target string, params url.Values) string {
	if strings.HasPrefix(target, "/") || target == "" {
		target = a.publicURL + target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + params.Encode()
}

func (a *Auth) now() time.Time {
	return a.cfg.Now().UTC()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func toUser(identity models.Identity) User {
	return User{
		ID:               identity.ID,
		Email:            identity.Email,
		EmailConfirmedAt: identity.EmailConfirmedAt,
		CreatedAt:        identity.CreatedAt,
	}
}
