package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/port"
)

var (
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrEmailTaken         = errors.New("identity: email already registered")
)

type RegisterInput struct {
	Email    string
	Password string
	FullName *string
	Phone    *string
}

type AuthOutput struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// RegisterUseCase creates the account and its initial profile and signs the
// caller in.
type RegisterUseCase struct {
	Repo repository.UserRepository
}

func NewRegisterUseCase(repo repository.UserRepository) *RegisterUseCase {
	return &RegisterUseCase{Repo: repo}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (*AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 6 {
		return nil, ErrInvalidCredentials
	}

	if _, err := uc.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := GenerateHashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := uc.Repo.CreateUser(ctx, email, hash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	profile := identity.Profile{UserID: user.ID, FullName: in.FullName, Phone: in.Phone}
	if err := uc.Repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &AuthOutput{UserID: user.ID, Email: user.Email, Token: token}, nil
}
