package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/auth"
	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/datamodels/user"
)

// UserService 用户与角色管理
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

// Upsert 按邮箱登记用户：已存在则更新资料，不存在则创建（默认角色 user）
func (s *UserService) Upsert(ctx context.Context, u *user.User, password string) (*user.User, error) {
	if u.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	_, err := s.repo.GetByEmail(ctx, u.Email)
	if err == nil {
		fields := map[string]interface{}{}
		if u.Name != "" {
			fields["name"] = u.Name
		}
		if u.Photo != "" {
			fields["photo"] = u.Photo
		}
		if len(fields) > 0 {
			if _, err := s.repo.UpdateByEmail(ctx, u.Email, fields); err != nil {
				return nil, err
			}
		}
		return s.repo.GetByEmail(ctx, u.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	u.Salt = "book-courier" // 简化实现，真实业务请使用随机盐
	if password != "" {
		u.Password = hashPassword(password, u.Salt)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListAll 全部用户
func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

// GetByEmail 按邮箱查询
func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateByEmail 更新用户资料
func (s *UserService) UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) error {
	if email == "" || len(fields) == 0 {
		return fmt.Errorf("%w: email and fields are required", ErrInvalidRequest)
	}
	rows, err := s.repo.UpdateByEmail(ctx, email, fields)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole 管理员指派角色
func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	switch role {
	case user.RoleUser, user.RoleLibrarian, user.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, role)
	}
	rows, err := s.repo.SetRole(ctx, email, role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if hashPassword(password, u.Salt) != u.Password {
		return "", errors.New("invalid password")
	}
	return auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
}
