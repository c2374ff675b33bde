package entity

import "time"

// User roles. Explicit role column, not inferred from row position.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a login account for the HTTP surface.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Username     string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:200;not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:staff"`
	Status       string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Operator performs plan steps on the floor. Distinct from User; any
// operator may act on any line.
type Operator struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	FullName  string    `json:"full_name" gorm:"size:200;not null"`
	Status    string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Operator) TableName() string {
	return "operators"
}

// Notice is a dashboard notice board entry. Soft-deactivated, never
// deleted.
type Notice struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Message   string    `json:"message" gorm:"size:500;not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notice) TableName() string {
	return "notices"
}
