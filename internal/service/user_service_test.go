package service

import (
	"context"
	"testing"

	"flourmill/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAudit{})

	resp, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FirstName: "Mai",
		LastName:  "Tran",
		Email:     "mai@flourmill.com",
		Password:  "s3cret!",
		Role:      "Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "Manager", resp.Role)
	assert.True(t, resp.IsActive)

	stored, err := repo.GetByEmail(context.Background(), "mai@flourmill.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret!")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeAudit{})

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FirstName: "X",
		LastName:  "Y",
		Email:     "x@flourmill.com",
		Password:  "password",
		Role:      "Superuser",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAudit{})
	repo.add(&model.User{Email: "taken@flourmill.com", Role: "Employee", IsActive: true})

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		FirstName: "A",
		LastName:  "B",
		Email:     "taken@flourmill.com",
		Password:  "password",
		Role:      "Employee",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestUpdateUserChangesRoleAndActivity(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAudit{})
	user := repo.add(&model.User{Email: "emp@flourmill.com", Role: "Employee", IsActive: true})

	inactive := false
	resp, err := svc.UpdateUser(context.Background(), user.ID.String(), UpdateUserRequest{
		Role:     "Manager",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Manager", resp.Role)
	assert.False(t, resp.IsActive)
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAudit{})
	user := repo.add(&model.User{Email: "emp@flourmill.com", Role: "Employee", IsActive: true})

	_, err := svc.UpdateUser(context.Background(), user.ID.String(), UpdateUserRequest{Role: "Wizard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestDeleteUserRevokesSessions(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewUserService(repo, audit)
	user := seedUser(t, repo, "leaving@flourmill.com", "secret", "Cashier", true)

	authSvc := NewAuthService(repo, audit)
	_, err := authSvc.Login(context.Background(), "leaving@flourmill.com", "secret")
	require.NoError(t, err)
	require.Equal(t, 1, repo.refreshTokenCount())

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID.String()))
	assert.Equal(t, 0, repo.refreshTokenCount())

	_, err = repo.GetByID(context.Background(), user.ID.String())
	assert.Error(t, err)
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeAudit{})

	_, err := svc.GetUserByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}
