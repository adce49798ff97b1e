// Package models contains domain entities and business models for the tailor marketplace
package models

// Role tags for the two account collections. An email may exist in both
// collections as two separate accounts; the auth resolver consults tailors
// before customers.
const (
	RoleTailor   = "tailor"
	RoleCustomer = "customer"
)
