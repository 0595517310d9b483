package models

import "time"

type Domain struct {
	Id             string
	Name           string
	Description    *string
	AllowedOrigins []string
	IsVerified     bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
