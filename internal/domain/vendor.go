package domain

import "time"

// Vendor is the domain model for marketplace vendors.
type Vendor struct {
	ID           string
	Username     string
	VendorName   string
	Email        string
	Phone        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VendorProfile is the public-safe projection of a vendor row.
type VendorProfile struct {
	ID         string `json:"id"`
	VendorName string `json:"vendorName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Active     bool   `json:"active"`
}

// Record normalizes the vendor into the shared principal view.
func (v *Vendor) Record() *PrincipalRecord {
	return &PrincipalRecord{
		ID:           v.ID,
		Username:     v.Username,
		PasswordHash: v.PasswordHash,
		Role:         RoleVendor,
		Active:       v.Active,
		Profile: VendorProfile{
			ID:         v.ID,
			VendorName: v.VendorName,
			Email:      v.Email,
			Phone:      v.Phone,
			Active:     v.Active,
		},
	}
}
