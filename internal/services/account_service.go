package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
)

// AccountService manages the parent/sub-account hierarchy. Every operation
// requires admin capability.
type AccountService struct {
	users    UserStore
	accounts *UserService
	log      *slog.Logger
}

func NewAccountService(users UserStore, accounts *UserService, log *slog.Logger) *AccountService {
	return &AccountService{users: users, accounts: accounts, log: log}
}

// Attach makes sub a sub-account of parent and grants it the inherited
// license. Cycles between accounts are not checked; only self-attachment is
// rejected.
func (s *AccountService) Attach(ctx context.Context, actor models.Actor, parentHumanID, subHumanID int64) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if parentHumanID == subHumanID {
		return nil, invalidInput("an account cannot be its own sub-account")
	}
	parent, err := s.accounts.findByHumanID(ctx, parentHumanID)
	if err != nil {
		return nil, err
	}
	sub, err := s.accounts.findByHumanID(ctx, subHumanID)
	if err != nil {
		return nil, err
	}
	if sub.ParentUserID != nil {
		return nil, conflict("user %d is already attached to a parent account", subHumanID)
	}

	parentID := parent.ID
	if err := s.users.SetParent(ctx, sub.ID, &parentID, models.LicenseProfessionalSubAccount); err != nil {
		return nil, fmt.Errorf("attach sub-account: %w", err)
	}
	sub.ParentUserID = &parentID
	sub.License = models.LicenseProfessionalSubAccount

	s.log.InfoContext(ctx, "sub-account attached", "parent", parentHumanID, "sub", subHumanID, "by", actor.HumanID)
	return sub, nil
}

// Detach removes sub from parent. The license always falls back to free,
// whatever the account held before it was attached.
func (s *AccountService) Detach(ctx context.Context, actor models.Actor, parentHumanID, subHumanID int64) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	parent, err := s.accounts.findByHumanID(ctx, parentHumanID)
	if err != nil {
		return nil, err
	}
	sub, err := s.accounts.findByHumanID(ctx, subHumanID)
	if err != nil {
		return nil, err
	}
	if sub.ParentUserID == nil || *sub.ParentUserID != parent.ID {
		return nil, notFound("user %d is not a sub-account of %d", subHumanID, parentHumanID)
	}

	if err := s.users.SetParent(ctx, sub.ID, nil, models.LicenseFree); err != nil {
		return nil, fmt.Errorf("detach sub-account: %w", err)
	}
	sub.ParentUserID = nil
	sub.License = models.LicenseFree

	s.log.InfoContext(ctx, "sub-account detached", "parent", parentHumanID, "sub", subHumanID, "by", actor.HumanID)
	return sub, nil
}

// List returns the sub-accounts currently attached to parent.
func (s *AccountService) List(ctx context.Context, actor models.Actor, parentHumanID int64) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	parent, err := s.accounts.findByHumanID(ctx, parentHumanID)
	if err != nil {
		return nil, err
	}
	subs, err := s.users.ListByParent(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list sub-accounts: %w", err)
	}
	return subs, nil
}

// CreateSubAccount opens a new account already attached to parent.
func (s *AccountService) CreateSubAccount(ctx context.Context, actor models.Actor, parentHumanID int64, req CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	parent, err := s.accounts.findByHumanID(ctx, parentHumanID)
	if err != nil {
		return nil, err
	}
	sub, err := s.accounts.createSubAccount(ctx, parent, req)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "sub-account created", "parent", parentHumanID, "sub", sub.HumanID, "by", actor.HumanID)
	return sub, nil
}
