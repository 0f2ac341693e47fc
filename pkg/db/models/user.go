package models

import (
	"time"

	"github.com/techstore/storefront-backend/pkg/enums"
)

// User is the profile record written after sign-up or first federated sign-in.
type User struct {
	UID         string         `json:"uid" firestore:"uid" gorm:"column:uid;primaryKey"`
	FirstName   string         `json:"firstName" firestore:"firstName" gorm:"column:first_name"`
	LastName    string         `json:"lastName" firestore:"lastName" gorm:"column:last_name"`
	Email       string         `json:"email" firestore:"email" gorm:"column:email;not null;uniqueIndex"`
	DisplayName string         `json:"displayName" firestore:"displayName" gorm:"column:display_name"`
	Newsletter  bool           `json:"newsletter" firestore:"newsletter" gorm:"column:newsletter;not null;default:false"`
	Role        enums.UserRole `json:"role" firestore:"role" gorm:"column:role;not null;default:customer"`
	CreatedAt   time.Time      `json:"createdAt" firestore:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
}

func (User) TableName() string { return "users" }
