package models

import "time"

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// RoleService marks tokens minted for service-to-service calls.
	RoleService = "service"
)

// User is an account allowed to call the protected product endpoints.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role      string    `json:"role" gorm:"type:varchar(16)" validate:"omitempty,oneof=user admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
