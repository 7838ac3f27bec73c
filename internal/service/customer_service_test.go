package service

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewCustomerService(mockRepo, zerolog.Nop())

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ada@example.com" && u.ExternalID == nil && u.FirstName == "Ada"
	})).Return(nil)

	blank := "  "
	user, err := service.Create(ctx, &model.CustomerRequest{Email: " Ada@Example.com", FirstName: "Ada ", ExternalID: &blank})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	mockRepo.AssertExpectations(t)
}

func TestCustomerService_Create_Invalid(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewCustomerService(mockRepo, zerolog.Nop())

	for _, email := range []string{"", "not-an-email", "Ada <ada@example.com>"} {
		_, err := service.Create(context.Background(), &model.CustomerRequest{Email: email})
		assert.ErrorIs(t, err, model.ErrMissingField, email)
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewCustomerService(mockRepo, zerolog.Nop())

	mockRepo.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)

	_, err := service.Create(ctx, &model.CustomerRequest{Email: "ada@example.com"})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestCustomerService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewCustomerService(mockRepo, zerolog.Nop())
	missing := uuid.New()

	mockRepo.On("List", ctx, 20, 0).Return([]model.User{{Email: "a@b.co"}}, nil)
	mockRepo.On("GetByID", ctx, missing).Return(nil, nil)

	users, err := service.List(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = service.GetByID(ctx, missing)
	assert.ErrorIs(t, err, model.ErrCustomerNotFound)
}
