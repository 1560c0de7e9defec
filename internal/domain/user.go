package domain

import "time"

const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsDeleted    bool
	CreatedAt    time.Time
}
