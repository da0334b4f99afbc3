package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type IUserService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	HasRole(ctx context.Context, userID uuid.UUID, roles ...model.UserRole) (bool, error)
}

// 帳號本身由 authcenter 管，這裡只讀本地投影做授權與訂單關聯
type UserService struct {
	userRepo db.IUserRepository
}

func NewUserService(userRepo db.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) HasRole(ctx context.Context, userID uuid.UUID, roles ...model.UserRole) (bool, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.Status != model.UserStatusActive {
		return false, nil
	}
	for _, role := range roles {
		if user.Role == role {
			return true, nil
		}
	}
	return false, nil
}

var _ IUserService = (*UserService)(nil)
