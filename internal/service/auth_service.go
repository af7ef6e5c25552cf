package service

import (
	"go.uber.org/zap"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/model"
	"cloud-deploy/internal/pkg/crypto"
	"cloud-deploy/internal/pkg/jwt"
	"cloud-deploy/internal/pkg/logger"
	"cloud-deploy/internal/repository"
	pkgErrors "cloud-deploy/pkg/errors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.UserInfo, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	Me(userID int64) (*dto.UserInfo, error)
}

type authService struct {
	userRepo          repository.UserRepository
	accessTokenExpire int // 秒
}

func NewAuthService(userRepo repository.UserRepository, accessTokenExpire int) AuthService {
	return &authService{
		userRepo:          userRepo,
		accessTokenExpire: accessTokenExpire,
	}
}

// Register 注册用户
// 用户名与邮箱全局唯一, 密码以bcrypt哈希存储
func (s *authService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.ErrUserExists
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码哈希失败", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("用户注册成功", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	return &dto.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// Login 登录
// 用户不存在与密码错误返回同一个错误, 不向调用方泄露差异
func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		logger.Warn("登录密码错误", zap.String("username", req.Username))
		return nil, pkgErrors.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成Token失败", err)
	}

	logger.Info("用户登录成功", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   s.accessTokenExpire,
		User: &dto.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	}, nil
}

// Me 查询当前用户信息
func (s *authService) Me(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	return &dto.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}
