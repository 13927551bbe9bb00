package domain

import "time"

// Admin models a platform operator. The admins table also holds non-sudo
// rows, so the persisted role is carried explicitly rather than implied by
// the partition.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminProfile is the public-safe projection of an admin row.
type AdminProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Active   bool   `json:"active"`
}

// Record normalizes the admin into the shared principal view.
func (a *Admin) Record() *PrincipalRecord {
	return &PrincipalRecord{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		Active:       a.Active,
		Profile: AdminProfile{
			ID:       a.ID,
			Username: a.Username,
			Role:     a.Role,
			Active:   a.Active,
		},
	}
}
