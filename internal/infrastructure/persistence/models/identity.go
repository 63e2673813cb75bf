package models

import (
	"time"

	"github.com/dms/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root
type UserModel struct {
	AggregateModel
	Username       string `gorm:"size:100;not null;uniqueIndex"`
	DisplayName    string `gorm:"size:200"`
	Email          string `gorm:"size:255;index"`
	PasswordHash   string `gorm:"size:100;not null"`
	Role           string `gorm:"size:20;not null"`
	Status         string `gorm:"size:20;not null;index"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Status:            identity.UserStatus(m.Status),
		LastLoginAt:       m.LastLoginAt,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
	}
}

// UserModelFromDomain converts the domain aggregate to the persistence model
func UserModelFromDomain(u *identity.User) *UserModel {
	model := &UserModel{
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		Status:         string(u.Status),
		LastLoginAt:    u.LastLoginAt,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	model.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return model
}
