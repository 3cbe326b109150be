package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vmtran/tourbook/internal/errs"
	"github.com/vmtran/tourbook/internal/model"
	"github.com/vmtran/tourbook/internal/session"
)

// AuthService drives the credential lifecycle against the backend and the
// local session manager.
type AuthService interface {
	// Login authenticates and installs the resulting session.
	Login(ctx context.Context, userName, password string) (model.TokenEnvelope, error)
	// Register creates a new account; no session is established.
	Register(ctx context.Context, req RegisterRequest) error
	// Logout revokes the session server-side and always clears local state.
	Logout(ctx context.Context) error
	// ForgotPassword starts the reset flow for an email.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword completes the reset flow with the emailed code.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	UserName    string `json:"userName"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type AuthServiceImpl struct {
	gw       Gateway
	sessions *session.Manager
	log      *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(gw Gateway, sessions *session.Manager, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{gw: gw, sessions: sessions, log: log}
}

// Login posts credentials and installs the returned token envelope.
func (s *AuthServiceImpl) Login(ctx context.Context, userName, password string) (model.TokenEnvelope, error) {
	if userName == "" || password == "" {
		return model.TokenEnvelope{}, fmt.Errorf("login: empty username/password")
	}
	body := map[string]string{"userName": userName, "password": password}
	var env model.TokenEnvelope
	if err := s.gw.Post(ctx, PathLogin, body, &env); err != nil {
		return model.TokenEnvelope{}, err
	}
	if !env.Valid() {
		s.log.Error("login returned malformed token envelope")
		return model.TokenEnvelope{}, fmt.Errorf("login: %w", errs.ErrMalformedResponse)
	}
	s.sessions.SetTokens(env)
	return env, nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) error {
	return s.gw.Post(ctx, PathRegister, req, nil)
}

// Logout clears local state even when the server-side revoke fails; the
// user asked to be signed out either way.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	err := s.gw.Post(ctx, PathLogout, nil, nil)
	s.sessions.Logout()
	if err != nil {
		s.log.Warn("server-side logout failed", zap.Error(err))
	}
	return err
}

func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	return s.gw.Post(ctx, PathForgotPassword, map[string]string{"email": email}, nil)
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return s.gw.Post(ctx, PathResetPassword, req, nil)
}
