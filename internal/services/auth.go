package services

import (
	"context"
	"errors"

	"posdash/internal/backend"
	applog "posdash/internal/log"
	"posdash/models"
)

const (
	profilesTable = "profiles"

	// LoginPath receives users after they confirm their email.
	LoginPath = "/auth/login"
	// UpdatePasswordPath receives users following a recovery link.
	UpdatePasswordPath = "/auth/update-password"
)

// SignUpInput is the registration form.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// Validate requires a username, an email and a password.
func (in SignUpInput) Validate() error {
	if err := required("username", in.Username); err != nil {
		return err
	}
	if in.Email == "" || in.Password == "" {
		return ValidationError("email", "Email and password are required")
	}
	return nil
}

// Auth wraps the auth provider and keeps profiles in step with identities.
type Auth struct {
	client   *backend.Client
	profiles backend.Table[models.Profile]
}

// NewAuth returns the auth service backed by client.
func NewAuth(client *backend.Client) *Auth {
	return &Auth{client: client, profiles: backend.From[models.Profile](client, profilesTable)}
}

// SignIn checks the credentials and returns a session.
func (s *Auth) SignIn(ctx context.Context, email, password string) (backend.Session, error) {
	if email == "" || password == "" {
		return backend.Session{}, ValidationError("email", "Email and password are required")
	}
	session, err := s.client.Auth.SignInWithPassword(ctx, email, password)
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return backend.Session{}, &Error{Kind: ErrInvalidCredentials, Err: errors.New("Incorrect email or password")}
	case errors.Is(err, backend.ErrEmailNotConfirmed):
		return backend.Session{}, &Error{Kind: ErrInvalidCredentials, Err: errors.New("Email not confirmed, check your inbox for the verification link")}
	case err != nil:
		return backend.Session{}, wrap("Sign in failed", err)
	}
	return session, nil
}

// SignUp creates the identity and then its admin profile. When the profile
// insert fails the identity is deleted again so no account is left without a
// profile.
func (s *Auth) SignUp(ctx context.Context, in SignUpInput) (backend.User, error) {
	if err := in.Validate(); err != nil {
		return backend.User{}, err
	}

	user, err := s.client.Auth.SignUp(ctx, in.Email, in.Password, LoginPath)
	switch {
	case errors.Is(err, backend.ErrUserExists):
		return backend.User{}, &Error{Kind: ErrConflict, Prefix: "Sign up failed", Err: err}
	case errors.Is(err, backend.ErrInvalidEmail):
		return backend.User{}, &Error{Kind: ErrValidation, Field: "email", Prefix: "Sign up failed", Err: err}
	case errors.Is(err, backend.ErrWeakPassword):
		return backend.User{}, &Error{Kind: ErrValidation, Field: "password", Prefix: "Sign up failed", Err: err}
	case err != nil:
		return backend.User{}, wrap("Sign up failed", err)
	}

	profile := models.Profile{ID: user.ID, Username: in.Username, Role: models.RoleAdmin}
	if err := s.profiles.Insert(ctx, &profile); err != nil {
		if delErr := s.client.Auth.DeleteUser(ctx, user.ID); delErr != nil {
			applog.Error(ctx, "failed to roll back identity after profile error", "user_id", user.ID, "error", delErr)
		}
		return backend.User{}, wrap("Failed to create profile", err)
	}

	applog.Info(ctx, "account registered", "user_id", user.ID)
	return user, nil
}

// GetProfile returns the profile of userID or a NotFound error.
func (s *Auth) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := s.profiles.Single(ctx, backend.Eq("id", userID))
	if err != nil {
		return models.Profile{}, wrap("Profile not found", err)
	}
	return profile, nil
}

// SignOut revokes the user's outstanding access tokens.
func (s *Auth) SignOut(ctx context.Context, userID string) error {
	err := s.client.Auth.SignOut(ctx, userID)
	if errors.Is(err, backend.ErrUserNotFound) {
		return &Error{Kind: ErrNotFound, Prefix: "Sign out failed", Err: err}
	}
	return wrap("Sign out failed", err)
}

// ResetPassword emails a recovery link. Unknown emails are not reported.
func (s *Auth) ResetPassword(ctx context.Context, email string) error {
	if err := required("email", email); err != nil {
		return err
	}
	return wrap("Failed to send reset email", s.client.Auth.ResetPasswordForEmail(ctx, email, UpdatePasswordPath))
}

// VerifyRecovery resolves a recovery link token to its user.
func (s *Auth) VerifyRecovery(ctx context.Context, token string) (backend.User, error) {
	user, err := s.client.Auth.VerifyRecovery(ctx, token)
	if errors.Is(err, backend.ErrInvalidToken) {
		return backend.User{}, &Error{Kind: ErrInvalidCredentials, Err: errors.New("The recovery link is invalid or has expired")}
	}
	if err != nil {
		return backend.User{}, wrap("Password recovery failed", err)
	}
	return user, nil
}

// UpdatePassword sets a new password once confirm matches it.
func (s *Auth) UpdatePassword(ctx context.Context, userID, password, confirm string) error {
	if password == "" {
		return ValidationError("password", "Password is required")
	}
	if password != confirm {
		return ValidationError("confirm", "Passwords do not match")
	}
	err := s.client.Auth.UpdatePassword(ctx, userID, password)
	switch {
	case errors.Is(err, backend.ErrWeakPassword):
		return &Error{Kind: ErrValidation, Field: "password", Err: err}
	case errors.Is(err, backend.ErrUserNotFound):
		return &Error{Kind: ErrNotFound, Prefix: "Failed to update password", Err: err}
	}
	return wrap("Failed to update password", err)
}

// ChangePassword is UpdatePassword for a signed-in user, who must also
// supply the current password.
func (s *Auth) ChangePassword(ctx context.Context, userID, current, password, confirm string) error {
	if current == "" {
		return ValidationError("current", "Current password is required")
	}
	err := s.client.Auth.CheckPassword(ctx, userID, current)
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return ValidationError("current", "Current password is incorrect")
	case errors.Is(err, backend.ErrUserNotFound):
		return &Error{Kind: ErrNotFound, Prefix: "Failed to update password", Err: err}
	case err != nil:
		return wrap("Failed to update password", err)
	}
	return s.UpdatePassword(ctx, userID, password, confirm)
}

// ConfirmEmail completes sign-up verification.
func (s *Auth) ConfirmEmail(ctx context.Context, token string) (backend.User, error) {
	user, err := s.client.Auth.ConfirmEmail(ctx, token)
	if errors.Is(err, backend.ErrInvalidToken) {
		return backend.User{}, &Error{Kind: ErrInvalidCredentials, Err: errors.New("The confirmation link is invalid or has expired")}
	}
	if err != nil {
		return backend.User{}, wrap("Email confirmation failed", err)
	}
	return user, nil
}

// CurrentUser resolves a bearer token.
func (s *Auth) CurrentUser(ctx context.Context, accessToken string) (backend.User, error) {
	user, err := s.client.Auth.GetUser(ctx, accessToken)
	if errors.Is(err, backend.ErrInvalidToken) {
		return backend.User{}, &Error{Kind: ErrInvalidCredentials, Err: err}
	}
	if err != nil {
		return backend.User{}, wrap("Failed to resolve user", err)
	}
	return user, nil
}
