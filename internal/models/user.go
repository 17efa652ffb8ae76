package models

import "time"

// Role is the coarse authorization tag carried by a user and by bearer tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered customer or administrator.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(100)"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(100)"`
	DateOfBirth  string    `json:"date_of_birth" gorm:"type:varchar(10)"` // YYYY-MM-DD
	AddressLine1 string    `json:"address_line1" gorm:"type:varchar(255)"`
	AddressLine2 string    `json:"address_line2" gorm:"type:varchar(255)"`
	City         string    `json:"city" gorm:"type:varchar(100)"`
	State        string    `json:"state" gorm:"type:varchar(100)"`
	ZipCode      string    `json:"zip_code" gorm:"type:varchar(20)"`
	Country      string    `json:"country" gorm:"type:varchar(100)"`
	PhoneNumber  string    `json:"phone_number" gorm:"type:varchar(30)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the resolved caller of a request: who they are and what role
// they hold. It comes from either a session or a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
