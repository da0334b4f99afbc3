package model

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleStaff    UserRole = "staff"
	RoleCustomer UserRole = "customer"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// User id 與 authcenter 發的 token payload 共用同一組 uuid
type User struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserName    string     `gorm:"not null;type:varchar(100)"`
	UserEmail   string     `gorm:"unique;not null;type:varchar(100)"`
	UserPhone   string     `gorm:"type:varchar(20)"`
	UserAddress string     `gorm:"type:varchar(255)"`
	Role        UserRole   `gorm:"not null;type:varchar(20);default:customer"`
	Status      UserStatus `gorm:"not null;type:varchar(20);default:active"`
	Orders      []Order    `gorm:"foreignKey:UserID"`
}
