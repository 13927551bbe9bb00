package domain

import "time"

// Customer is the domain model for buying customers.
type Customer struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustomerProfile is the public-safe projection of a customer row.
type CustomerProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Active   bool   `json:"active"`
}

// Record normalizes the customer into the shared principal view.
func (c *Customer) Record() *PrincipalRecord {
	return &PrincipalRecord{
		ID:           c.ID,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Role:         RoleCustomer,
		Active:       c.Active,
		Profile: CustomerProfile{
			ID:       c.ID,
			FullName: c.FullName,
			Email:    c.Email,
			Phone:    c.Phone,
			Active:   c.Active,
		},
	}
}
