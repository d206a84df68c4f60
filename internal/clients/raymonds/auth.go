package raymonds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/raymonds/internal/models"
)

// MinPasswordLength is enforced client-side before POST /auth/register.
const MinPasswordLength = 8

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, validationError("email and password are required")
	}

	var token models.TokenResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds}, &token); err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}

	return &token, nil
}

// Me fetches the profile of the token's owner
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, validationError("token is required")
	}

	var user models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", token: token}, &user); err != nil {
		if errors.Is(err, errNoData) {
			return nil, fmt.Errorf("profile response was empty")
		}
		return nil, err
	}

	return &user, nil
}

// Register creates an account; it does not log the user in
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: req}, &user); err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}
	if user.Email == "" {
		user.Email = req.Email
		user.Username = req.Username
		user.FullName = req.FullName
	}

	return &user, nil
}

// ValidateRegistration checks the required registration fields
func ValidateRegistration(req models.RegisterRequest) error {
	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		return validationError("email is required")
	case !strings.Contains(email, "@"):
		return validationError("email %q is not valid", email)
	case strings.TrimSpace(req.Username) == "":
		return validationError("username is required")
	case len(req.Password) < MinPasswordLength:
		return validationError("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
