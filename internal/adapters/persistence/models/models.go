package models

import (
	"time"

	"mfs-service/internal/core/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// ============================================================
// Document store (MongoDB): mfs.users
// ============================================================

// UserDocument represents a document in the users collection
type UserDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	MobileNumber string             `bson:"mobileNumber"`
	Email        string             `bson:"email"`
	Pin          string             `bson:"pin"`
	Status       string             `bson:"status"`
	Role         string             `bson:"role"`
	Balance      float64            `bson:"balance"`
	Bonus        bool               `bson:"bonus"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// NewUserDocument builds a document from a domain user (ID is assigned on insert)
func NewUserDocument(u *domain.User) *UserDocument {
	return &UserDocument{
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Pin:          u.Pin,
		Status:       string(u.Status),
		Role:         string(u.Role),
		Balance:      u.Balance,
		Bonus:        u.Bonus,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d *UserDocument) ToDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		MobileNumber: d.MobileNumber,
		Email:        d.Email,
		Pin:          d.Pin,
		Status:       domain.Status(d.Status),
		Role:         domain.Role(d.Role),
		Balance:      d.Balance,
		Bonus:        d.Bonus,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ============================================================
// Relational store (MySQL via GORM): users
// ============================================================

// UserRecord represents users table
type UserRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:100;not null"`
	MobileNumber string    `gorm:"uniqueIndex;size:20;not null"`
	Email        string    `gorm:"uniqueIndex;size:100;not null"`
	Pin          string    `gorm:"size:255;not null"`
	Status       string    `gorm:"size:20;index;default:'pending'"`
	Role         string    `gorm:"size:20;index;default:'User'"`
	Balance      float64   `gorm:"type:decimal(15,2);not null;default:0"`
	Bonus        bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserRecord) TableName() string {
	return "users"
}

// NewUserRecord builds a record from a domain user
func NewUserRecord(u *domain.User) *UserRecord {
	return &UserRecord{
		ID:           u.ID,
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Pin:          u.Pin,
		Status:       string(u.Status),
		Role:         string(u.Role),
		Balance:      u.Balance,
		Bonus:        u.Bonus,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRecord) ToDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		MobileNumber: r.MobileNumber,
		Email:        r.Email,
		Pin:          r.Pin,
		Status:       domain.Status(r.Status),
		Role:         domain.Role(r.Role),
		Balance:      r.Balance,
		Bonus:        r.Bonus,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ============================================================
// API DTO
// ============================================================

// UserResponse DTO (never carries the pin hash)
type UserResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	MobileNumber string    `json:"mobileNumber"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	Role         string    `json:"role"`
	Balance      float64   `json:"balance"`
	Bonus        bool      `json:"bonus"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain user to its API shape
func ToUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Status:       string(u.Status),
		Role:         string(u.Role),
		Balance:      u.Balance,
		Bonus:        u.Bonus,
		CreatedAt:    u.CreatedAt,
	}
}

// AutoMigrate runs auto migration for the relational store
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserRecord{})
}
