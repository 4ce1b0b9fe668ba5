package models

// User is a registered credential as stored durably.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Role         string
}
