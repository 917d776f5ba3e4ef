package user

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var testRoles = map[int64]string{1: "ADMIN", 2: "HR_MANAGER", 3: "PAYROLL_OFFICER"}

type fakeUserRepo struct {
	users  map[int64]user.User
	grants map[int64][]int64 // open grants per user
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]user.User{}, grants: map[int64][]int64{}}
}

func (f *fakeUserRepo) withRoles(u user.User) user.User {
	u.Roles = nil
	for _, roleID := range f.grants[u.ID] {
		u.Roles = append(u.Roles, testRoles[roleID])
	}
	return u
}

func (f *fakeUserRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, f.withRoles(u))
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return f.withRoles(u), nil
}

func (f *fakeUserRepo) GetActiveByLogin(ctx context.Context, login string) (user.User, error) {
	for _, u := range f.users {
		if (u.Username == login || u.Email == login) && u.Status == user.StatusActive {
			return f.withRoles(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id int64, status user.Status) error {
	u, ok := f.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Status = status
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id int64) error { return nil }

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	if _, ok := testRoles[roleID]; !ok {
		return user.ErrRoleNotFound
	}
	f.grants[userID] = []int64{roleID}
	return nil
}

func (f *fakeUserRepo) ListRoles(ctx context.Context) ([]user.RoleRecord, error) {
	return []user.RoleRecord{{ID: 1, Name: "ADMIN"}, {ID: 2, Name: "HR_MANAGER"}}, nil
}

func newTestService(repo *fakeUserRepo) *UserServiceImpl {
	svc := NewUserService(passthroughTx{}, repo).(*UserServiceImpl)
	svc.cost = bcrypt.MinCost
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCreateUser_DefaultPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateUser(context.Background(), user.CreateUserRequest{Username: "hr.jane", Email: "jane@example.com"})
	require.NoError(t, err)

	assert.Equal(t, user.StatusActive, resp.Status)
	assert.NotNil(t, resp.Roles)
	assert.Empty(t, resp.Roles)
	hash := repo.users[resp.ID].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(user.DefaultPassword)))
}

func TestCreateUser_WithPasswordAndRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
		Username: "officer",
		Email:    "officer@example.com",
		Password: ptr("s3cret-pass"),
		RoleID:   ptr(int64(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"PAYROLL_OFFICER"}, resp.Roles)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[resp.ID].PasswordHash), []byte("s3cret-pass")))
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.CreateUser(context.Background(), user.CreateUserRequest{Username: "", Email: "nope", Password: ptr("short")})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	m := verrs.ToMap()
	assert.Equal(t, "username is required", m["username"])
	assert.Equal(t, "invalid email format", m["email"])
	assert.Equal(t, "password must be at least 8 characters", m["password"])
}

func TestCreateUser_UnknownRole(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
		Username: "x", Email: "x@example.com", RoleID: ptr(int64(42)),
	})
	assert.ErrorIs(t, err, user.ErrRoleNotFound)
}

func TestUpdateUser_ReplacesRoleAndDefaultsStatus(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	created, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
		Username: "jane", Email: "jane@example.com", RoleID: ptr(int64(2)),
	})
	require.NoError(t, err)

	resp, err := svc.UpdateUser(context.Background(), user.UpdateUserRequest{
		ID:       created.ID,
		Username: "jane.doe",
		Email:    "jane.doe@example.com",
		RoleID:   ptr(int64(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe", resp.Username)
	assert.Equal(t, user.StatusActive, resp.Status)
	assert.Equal(t, []string{"ADMIN"}, resp.Roles)
}

func TestUpdateUser_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.UpdateUser(context.Background(), user.UpdateUserRequest{ID: 1, Username: "a", Email: "a@example.com", Status: "BANNED"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestDeactivateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	created, err := svc.CreateUser(context.Background(), user.CreateUserRequest{Username: "a", Email: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(context.Background(), created.ID))
	assert.Equal(t, user.StatusInactive, repo.users[created.ID].Status)
	assert.ErrorIs(t, svc.DeactivateUser(context.Background(), 99), user.ErrUserNotFound)
}

func TestListRoles(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
