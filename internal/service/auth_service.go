package service

import (
	"errors"
	"fmt"
	"strings"

	"predict-go/internal/config"
	"predict-go/internal/dto"
	"predict-go/internal/models"
	"predict-go/internal/repository"
	"predict-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// AuthService 账户注册、登录和管理员初始化
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *utils.JWTManager
	cfg        *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, jwtManager *utils.JWTManager, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		cfg:        cfg,
	}
}

// Register 用户注册
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("检查用户名失败: %w", err)
	}
	if exists {
		return nil, errors.New("用户名已存在")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{Username: req.Username, PasswordHash: hashed, IsActive: true}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return userInfo(user), nil
}

// Login 校验密码并签发Token
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := utils.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, errors.New("用户已被禁用")
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *userInfo(user),
	}, nil
}

// GetMe 获取当前用户信息
func (s *AuthService) GetMe(userID uint) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, errors.New("用户不存在")
	}
	return userInfo(user), nil
}

// InitAdmin 没有管理员时按配置创建，配置中的密码可以是明文或bcrypt哈希
func (s *AuthService) InitAdmin() error {
	if admin, err := s.userRepo.GetAdmin(); err == nil && admin != nil {
		return nil
	}

	passwordHash := s.cfg.Admin.Password
	if !isBcryptHash(passwordHash) {
		hashed, err := utils.HashPassword(passwordHash)
		if err != nil {
			return fmt.Errorf("密码哈希失败: %w", err)
		}
		passwordHash = hashed
	}

	user := &models.User{
		Username:     s.cfg.Admin.Username,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("创建管理员失败: %w", err)
	}

	logrus.WithField("username", user.Username).Info("已创建管理员账户")
	return nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func userInfo(user *models.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		IsActive: user.IsActive,
		IsAdmin:  user.IsAdmin,
	}
}
