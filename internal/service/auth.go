package service

import (
	"context"
	"errors"
	"strings"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/repository"
	"appsuite-backend/internal/security"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	clock    clockwork.Clock
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, clock clockwork.Clock) AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		clock:    clock,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Department = strings.TrimSpace(in.Department)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Role == "" || in.Department == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !ValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}

	if err := s.ensureFree(ctx, s.userRepo.GetByEmail, in.Email, ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.userRepo.GetByPhone, in.Phone, ErrPhoneTaken); err != nil {
		return nil, err
	}
	if in.CreatedBy != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.CreatedBy); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUnknownCreator
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Role:         in.Role,
		Department:   in.Department,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		CreatedBy:    in.CreatedBy,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *authService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), value string, taken error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrCredentialsRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.WarnContext(ctx, "Login rejected", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
