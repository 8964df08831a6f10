package service_test

import (
	"context"
	"testing"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/repository"
	"appsuite-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		Name:       "Ada Buyer",
		Role:       "buyer",
		Department: "Procurement",
		Email:      "Ada@Example.com",
		Phone:      "+15550100",
		Password:   "s3cret-pass",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)

		users.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
		users.On("GetByPhone", ctx, "+15550100").Return(nil, repository.ErrNotFound).Once()
		users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 10
		}).Return(nil).Once()

		user, err := svc.Register(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		users.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)

		in := validRegistration()
		in.Department = " "
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, service.ErrMissingFields)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{ID: 1}, nil).Once()

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("PhoneTaken", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
		users.On("GetByPhone", ctx, "+15550100").Return(&domain.User{ID: 2}, nil).Once()

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, service.ErrPhoneTaken)
	})

	t.Run("UnknownCreator", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
		users.On("GetByPhone", ctx, "+15550100").Return(nil, repository.ErrNotFound).Once()
		users.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrNotFound).Once()

		in := validRegistration()
		creator := int64(404)
		in.CreatedBy = &creator
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, service.ErrUnknownCreator)
	})

	t.Run("ConstraintRace", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
		users.On("GetByPhone", ctx, "+15550100").Return(nil, repository.ErrNotFound).Once()
		users.On("Create", ctx, mock.Anything).Return(&repository.ConflictError{Table: "users"}).Once()

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, service.ErrDuplicateUser)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 10, Email: "ada@example.com", Role: "buyer", PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		tokens := new(MockTokenManager)
		svc := service.NewAuthService(users, tokens, nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(stored, nil).Once()
		tokens.On("GenerateAccessToken", int64(10), "ada@example.com", "buyer").Return("jwt-token", nil).Once()

		user, token, err := svc.Login(ctx, "ADA@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		assert.Equal(t, "jwt-token", token)
		tokens.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		tokens := new(MockTokenManager)
		svc := service.NewAuthService(users, tokens, nil)
		users.On("GetByEmail", ctx, "ada@example.com").Return(stored, nil).Once()

		_, _, err := svc.Login(ctx, "ada@example.com", "nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "GenerateAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockTokenManager), nil)
		users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		svc := service.NewAuthService(new(MockUserRepo), new(MockTokenManager), nil)
		_, _, err := svc.Login(ctx, "", "x")
		assert.ErrorIs(t, err, service.ErrCredentialsRequired)
	})
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	svc := service.NewAuthService(users, new(MockTokenManager), nil)
	users.On("GetByID", ctx, int64(1)).Return(nil, repository.ErrNotFound).Once()

	_, err := svc.GetUser(ctx, 1)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
