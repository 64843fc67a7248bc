// Package model holds the entities the repositories return.
package model

// User status values.
const (
	UserStatusActive = "active"
)

// User is an account. PasswordHash is only populated inside the repository
// and never serialized.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayEmail string `json:"display_email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	ShowPageHelp bool   `json:"show_page_help"`
}

// Widget is a named record owned by a user. Name is unique per owner.
type Widget struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerID     string `json:"owner_id"`
	OwnerEmail  string `json:"owner_email"`
	Description string `json:"description"`
}

// Thing is a key/value pair of reference data, e.g. page help text.
type Thing struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
