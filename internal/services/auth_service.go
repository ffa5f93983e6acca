package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

// Session is returned by signup, login and refresh.
type Session struct {
	User   *models.User    `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

type AuthService struct {
	accounts *UserService
	users    UserStore
	tokens   TokenStore
	issuer   *utils.TokenIssuer
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(accounts *UserService, users UserStore, tokens TokenStore, issuer *utils.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		log:      log,
		now:      time.Now,
	}
}

// Signup registers a new account and signs it in.
func (s *AuthService) Signup(ctx context.Context, req CreateUserRequest) (*Session, error) {
	user, err := s.accounts.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Login checks credentials. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := utils.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, utils.ErrMalformedHash) {
			s.log.ErrorContext(ctx, "stored password hash is unreadable", "human_id", user.HumanID, "error", err)
		}
		return nil, unauthorized("invalid email or password")
	}
	if utils.NeedsRehash(user.PasswordHash) {
		s.log.WarnContext(ctx, "password hash uses outdated parameters", "human_id", user.HumanID)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.WarnContext(ctx, "failed to record last login", "human_id", user.HumanID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, unauthorized("invalid refresh token")
	}
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, unauthorized("invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.tokens.Blacklist(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issue(ctx, user)
}

// Logout revokes the access token and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	now := s.now()
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return unauthorized("invalid access token")
	}
	if err := s.tokens.Blacklist(ctx, claims.ID, claims.Remaining(now)); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	if refreshToken == "" {
		return nil
	}
	// an unusable refresh token needs no revocation
	if rc, err := s.issuer.VerifyRefresh(refreshToken); err == nil {
		if err := s.tokens.Blacklist(ctx, rc.ID, rc.Remaining(now)); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}
	return nil
}

// Authenticate resolves a bearer access token to the acting user. Roles are
// read from storage on every request so a demotion takes effect immediately.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.Actor, error) {
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return models.Actor{}, unauthorized("invalid or expired token")
	}
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return models.Actor{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return models.Actor{}, unauthorized("invalid or expired token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Actor{}, unauthorized("account no longer exists")
	}
	if err != nil {
		return models.Actor{}, fmt.Errorf("load user: %w", err)
	}
	return models.ActorFor(user), nil
}

// checkRevoked fails closed when the revocation list cannot be read.
func (s *AuthService) checkRevoked(ctx context.Context, jti string) error {
	revoked, err := s.tokens.IsBlacklisted(ctx, jti)
	if err != nil {
		s.log.ErrorContext(ctx, "token revocation lookup failed", "error", err)
		return unauthorized("unable to verify token")
	}
	if revoked {
		return unauthorized("token has been revoked")
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	pair, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	s.log.InfoContext(ctx, "session issued", "human_id", user.HumanID)
	return &Session{User: user, Tokens: pair}, nil
}
