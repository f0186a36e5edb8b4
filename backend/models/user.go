package models

import "gorm.io/gorm"

// Roles form a closed set; capability checks happen at the route boundary.
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	gorm.Model
	Username   string `gorm:"unique;not null"`
	Email      string `gorm:"unique;not null"`
	Role       string `gorm:"default:STUDENT"` // STUDENT, TEACHER, ADMIN
	Group      string
	University string
}
