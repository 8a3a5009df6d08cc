package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/port"
)

type LoginInput struct {
	Email    string
	Password string
}

// LoginUseCase checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
type LoginUseCase struct {
	Repo repository.UserRepository
}

func NewLoginUseCase(repo repository.UserRepository) *LoginUseCase {
	return &LoginUseCase{Repo: repo}
}

func (uc *LoginUseCase) Execute(ctx context.Context, in LoginInput) (*AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := uc.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !CheckHashPassword(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &AuthOutput{UserID: user.ID, Email: user.Email, Token: token}, nil
}
