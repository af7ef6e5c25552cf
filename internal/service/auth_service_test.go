package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/repository"
	pkgErrors "cloud-deploy/pkg/errors"
)

type fakeUserRepo struct {
	rows   map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[int64]*model.User), nextID: 1}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.rows[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pkgErrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(id int64) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, pkgErrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	for _, u := range r.rows {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	return int64(len(r.rows)), nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func TestRegister(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), 3600)

	user, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegister_Duplicate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, 3600)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// 用户名重复
	_, err = svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, pkgErrors.ErrUserExists)

	// 邮箱重复
	_, err = svc.Register(&dto.RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, pkgErrors.ErrUserExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, 3600)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// 密码以哈希落库
	stored, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)

	resp, err := svc.Login(&dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, 3600)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// 密码错误与用户不存在返回同一错误
	_, err = svc.Login(&dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
}
