package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/vybe/internal/domain"
	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/logging"
)

const ctxUserID = "userID"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

func bindCredentials(c echo.Context) (credentialsRequest, error) {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return req, apperrors.ValidationError("Invalid request body")
	}
	switch {
	case strings.TrimSpace(req.Email) == "":
		return req, apperrors.ValidationError("Email and password are required").WithField("email")
	case req.Password == "":
		return req, apperrors.ValidationError("Email and password are required").WithField("password")
	}
	return req, nil
}

func (s *Server) handleRegister(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	user, err := s.users.Register(req.Email, req.Password)
	if errors.Is(err, domain.ErrEmailTaken) {
		return apperrors.ConflictError("Email already registered")
	}
	if err != nil {
		return apperrors.InternalError("Failed to register user", err)
	}

	if err := c.JSON(http.StatusCreated, user); err != nil {
		return fmt.Errorf("failed to write register response: %w", err)
	}
	return nil
}

func (s *Server) handleLogin(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		return apperrors.UnauthorizedError("Incorrect email or password")
	}

	access, refresh, err := s.tokens.Issue(user.ID)
	if err != nil {
		return apperrors.InternalError("Failed to issue tokens", err)
	}

	logging.WithUser(nil, user.ID).InfoContext(c.Request().Context(), "User logged in")

	resp := tokenResponse{AccessToken: access, TokenType: "bearer", RefreshToken: refresh}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write login response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(string)

	user, err := s.users.Get(userID)
	if err != nil {
		return apperrors.UnauthorizedError("Could not validate credentials")
	}

	if err := c.JSON(http.StatusOK, user); err != nil {
		return fmt.Errorf("failed to write profile response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(string)
	revoked := s.tokens.RevokeUser(userID)
	logging.WithUser(nil, userID).InfoContext(c.Request().Context(), "User logged out", "revoked_refresh_tokens", revoked)

	if err := c.JSON(http.StatusOK, map[string]string{"message": "Logged out"}); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return apperrors.UnauthorizedError("Not authenticated")
		}

		userID, err := s.tokens.Verify(raw)
		if err != nil {
			return apperrors.UnauthorizedError("Could not validate credentials")
		}

		c.Set(ctxUserID, userID)
		return next(c)
	}
}
