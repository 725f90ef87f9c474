package model

import "time"

// Role is the closed set of marketplace roles. Every role-gated
// operation goes through the capability methods below instead of
// comparing raw strings, so the gates cannot drift between endpoints.
type Role string

const (
	RoleBuyer  Role = "Buyer"
	RoleSeller Role = "Seller"
	RoleBoth   Role = "Both"
)

// ParseRole validates a raw role value against the closed enumeration.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleBuyer, RoleSeller, RoleBoth:
		return Role(raw), true
	}
	return "", false
}

// CanSell reports whether the role may create listings and tickets.
func (r Role) CanSell() bool { return r == RoleSeller || r == RoleBoth }

// CanBuy reports whether the role may purchase tickets, create buy
// requests and write reviews.
func (r Role) CanBuy() bool { return r == RoleBuyer || r == RoleBoth }

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the database.
// Handlers define separate response types with JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name, not unique.
//  Email        – unique email address, normalized to lower case.
//  PasswordHash – bcrypt hashed password.
//  Role         – marketplace role (Buyer, Seller or Both).
//  Phone        – optional phone number.
//  CreatedAt    – registration timestamp.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	Phone        *string   // users.phone (nullable)
	CreatedAt    time.Time // users.created_at
}
