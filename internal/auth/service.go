package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/backend"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// PasswordSetup is the final step of the invitation flow.
type PasswordSetup struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// Service talks to the backend's login and password endpoints.
type Service struct {
	client *backend.Client
}

// NewService constructs a Service.
func NewService(client *backend.Client) *Service {
	return &Service{client: client}
}

// Login exchanges credentials for a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (Tokens, error) {
	var tokens Tokens
	err := s.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathLogin,
		JSON:   map[string]string{"username": username, "password": password},
	}, &tokens)
	if err != nil {
		if errors.Is(err, backend.ErrValidation) || errors.Is(err, backend.ErrUnauthorized) {
			return Tokens{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, backend.Message(err))
		}
		return Tokens{}, err
	}
	if tokens.Access == "" {
		return Tokens{}, fmt.Errorf("%w: login response without access token", backend.ErrMalformed)
	}
	return tokens, nil
}

// SendOTP asks the backend to mail a one-time code for an invitation.
func (s *Service) SendOTP(ctx context.Context, email, inviteToken string) error {
	return s.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathSendOTP,
		JSON:   map[string]string{"email": email, "token": inviteToken},
	}, nil)
}

// VerifyOTP checks a one-time code without consuming it.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) error {
	return s.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathVerifyOTP,
		JSON:   map[string]string{"email": email, "otp": otp},
	}, nil)
}

// CreatePassword completes the invitation and returns a token pair.
func (s *Service) CreatePassword(ctx context.Context, setup PasswordSetup) (Tokens, error) {
	var tokens Tokens
	err := s.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathCreatePassword,
		JSON:   setup,
	}, &tokens)
	if err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}
