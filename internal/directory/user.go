// Package directory holds the user directory state: normalized records,
// the search term and sort criteria, and the displayed subset derived from them.
package directory

import "strings"

// RawUser is a user entry exactly as returned by the remote endpoint.
type RawUser struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Address  RawAddress `json:"address"`
	Phone    string     `json:"phone"`
	Website  string     `json:"website"`
	Company  RawCompany `json:"company"`
}

// RawAddress is the nested address object of a RawUser.
type RawAddress struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// RawCompany is the nested company object of a RawUser.
type RawCompany struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// User is the flattened record the directory works with.
type User struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Address string `json:"address" yaml:"address"`
	Phone   string `json:"phone" yaml:"phone"`
	Company string `json:"company" yaml:"company"`
}

// Normalize flattens a raw entry. Missing nested fields become empty strings.
func Normalize(raw RawUser) User {
	return User{
		ID:      raw.ID,
		Name:    raw.Name,
		Email:   raw.Email,
		Address: FormatAddress(raw.Address),
		Phone:   raw.Phone,
		Company: raw.Company.Name,
	}
}

// NormalizeAll normalizes every entry, keeping the input order.
func NormalizeAll(raw []RawUser) []User {
	users := make([]User, 0, len(raw))
	for _, r := range raw {
		users = append(users, Normalize(r))
	}
	return users
}

// FormatAddress joins suite, street and city, skipping empty parts.
func FormatAddress(a RawAddress) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Suite, a.Street, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
