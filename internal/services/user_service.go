package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
	"github.com/sidharth07/verbiforge-sub000/internal/storage"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

const minPasswordLength = 8

// CreateUserRequest represents the fields accepted when creating a user.
type CreateUserRequest struct {
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Password string         `json:"password"`
	Role     models.Role    `json:"role,omitempty"`
	License  models.License `json:"license,omitempty"`
}

type UserService struct {
	users    UserStore
	projects ProjectStore
	files    storage.Store
	ids      *IDGenerator
	log      *slog.Logger
}

func NewUserService(users UserStore, projects ProjectStore, files storage.Store, ids *IDGenerator, log *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		projects: projects,
		files:    files,
		ids:      ids,
		log:      log,
	}
}

// Register creates a self-service account. The very first account becomes
// the super admin.
func (s *UserService) Register(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	user := &models.User{
		Email:   req.Email,
		Name:    req.Name,
		Role:    models.RoleUser,
		License: models.LicenseFree,
	}
	if count == 0 {
		user.Role = models.RoleSuperAdmin
	}
	return s.create(ctx, user, req.Password)
}

// CreateByAdmin lets an operator open an account. Granting admin roles is
// reserved to super admins.
func (s *UserService) CreateByAdmin(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, invalidInput("unknown role %q", role)
	}
	if role != models.RoleUser && !actor.IsSuperAdmin() {
		return nil, forbidden("only a super admin can create admin accounts")
	}
	license := req.License
	if license == "" {
		license = models.LicenseFree
	}
	if !license.Valid() {
		return nil, invalidInput("unknown license %q", license)
	}
	if license == models.LicenseProfessionalSubAccount {
		return nil, invalidInput("sub-account licenses are granted by attaching to a parent account")
	}
	return s.create(ctx, &models.User{Email: req.Email, Name: req.Name, Role: role, License: license}, req.Password)
}

func (s *UserService) createSubAccount(ctx context.Context, parent *models.User, req CreateUserRequest) (*models.User, error) {
	parentID := parent.ID
	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleUser,
		License:      models.LicenseProfessionalSubAccount,
		ParentUserID: &parentID,
	}
	return s.create(ctx, user, req.Password)
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	user.Email = models.NormalizeEmail(user.Email)
	if _, err := mail.ParseAddress(user.Email); err != nil || user.Email == "" {
		return nil, invalidInput("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalidInput("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, conflict("an account with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed

	user.HumanID = s.ids.NextUserID(ctx)
	err = s.users.Create(ctx, user)
	if repositories.IsDuplicateOn(err, repositories.UsersHumanIDKey) {
		// lost the race for the next sequential id
		user.HumanID = s.ids.FallbackUserID()
		s.log.WarnContext(ctx, "user id collision, retrying with fallback id", "human_id", user.HumanID)
		err = s.users.Create(ctx, user)
	}
	if repositories.IsDuplicateOn(err, repositories.UsersEmailKey) {
		return nil, conflict("an account with this email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", "human_id", user.HumanID, "role", user.Role)
	return user, nil
}

// Get returns a user by human id; non-admins may only read themselves.
func (s *UserService) Get(ctx context.Context, actor models.Actor, humanID int64) (*models.User, error) {
	if !actor.IsAdmin() && actor.HumanID != humanID {
		return nil, notFound("user %d not found", humanID)
	}
	return s.findByHumanID(ctx, humanID)
}

func (s *UserService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	return s.findByID(ctx, actor.UserID)
}

func (s *UserService) List(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetRole changes a user's role. Only super admins may do it, and never on
// their own account.
func (s *UserService) SetRole(ctx context.Context, actor models.Actor, humanID int64, role models.Role) (*models.User, error) {
	if !actor.IsSuperAdmin() {
		return nil, forbidden("super admin privileges required")
	}
	if !role.Valid() {
		return nil, invalidInput("unknown role %q", role)
	}
	if actor.HumanID == humanID {
		return nil, forbidden("you cannot change your own role")
	}
	user, err := s.findByHumanID(ctx, humanID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = role
	s.log.InfoContext(ctx, "user role changed", "human_id", humanID, "role", role, "by", actor.HumanID)
	return user, nil
}

// SetLicense changes the license of a standalone account.
func (s *UserService) SetLicense(ctx context.Context, actor models.Actor, humanID int64, license models.License) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if license != models.LicenseFree && license != models.LicenseProfessional {
		return nil, invalidInput("license must be free or professional")
	}
	user, err := s.findByHumanID(ctx, humanID)
	if err != nil {
		return nil, err
	}
	if user.IsSubAccount() {
		return nil, conflict("user %d inherits its license from a parent account", humanID)
	}
	if err := s.users.UpdateLicense(ctx, user.ID, license); err != nil {
		return nil, fmt.Errorf("update license: %w", err)
	}
	user.License = license
	return user, nil
}

// Delete removes a user with all owned projects and their files. Sub-accounts
// of the user are detached first.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, humanID int64) error {
	if !actor.IsAdmin() {
		return forbidden("admin privileges required")
	}
	if actor.HumanID == humanID {
		return forbidden("you cannot delete your own account")
	}
	user, err := s.findByHumanID(ctx, humanID)
	if err != nil {
		return err
	}
	if user.Role.HasAdminCapability() && !actor.IsSuperAdmin() {
		return forbidden("only a super admin can delete admin accounts")
	}

	ownerID := user.ID
	owned, err := s.projects.List(ctx, models.ProjectFilter{OwnerID: &ownerID})
	if err != nil {
		return fmt.Errorf("list owned projects: %w", err)
	}

	detached, err := s.users.DetachChildren(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("detach sub-accounts: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user %d not found", humanID)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	for _, p := range owned {
		for _, ref := range fileRefs(p) {
			if err := s.files.Delete(ctx, ref); err != nil {
				s.log.WarnContext(ctx, "failed to delete stored file", "ref", ref, "error", err)
			}
		}
	}
	s.log.InfoContext(ctx, "user deleted", "human_id", humanID, "projects", len(owned), "detached", detached, "by", actor.HumanID)
	return nil
}

func (s *UserService) findByHumanID(ctx context.Context, humanID int64) (*models.User, error) {
	user, err := s.users.FindByHumanID(ctx, humanID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("user %d not found", humanID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *UserService) findByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
