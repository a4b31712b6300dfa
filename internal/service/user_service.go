package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

const minPasswordLen = 6

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrEmailTaken = errors.New("user already exists")

// UserService handles registration and credential checks.
type UserService struct {
	repo       repo.UserRepo
	workspaces repo.WorkspaceRepo
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo, workspaces repo.WorkspaceRepo) *UserService {
	return &UserService{repo: r, workspaces: workspaces}
}

// ValidateCredentials checks email and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (dom.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates the user and a personal workspace owned by them.
func (s *UserService) Register(ctx context.Context, email, name, password string) (dom.User, dom.Workspace, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return dom.User{}, dom.Workspace{}, invalid("All fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return dom.User{}, dom.Workspace{}, invalid("invalid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return dom.User{}, dom.Workspace{}, invalid("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, dom.Workspace{}, err
	}
	u, err := s.repo.Create(ctx, email, name, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, dom.Workspace{}, ErrEmailTaken
		}
		return dom.User{}, dom.Workspace{}, err
	}
	ws, err := s.workspaces.CreateWithOwner(ctx, name, u.ID)
	if err != nil {
		return u, dom.Workspace{}, err
	}
	return u, ws, nil
}

// GetByID returns the user or ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	return u, storeErr(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
