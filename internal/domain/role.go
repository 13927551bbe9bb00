package domain

// Role identifies which credential partition a principal belongs to.
type Role string

const (
	RoleSudo     Role = "sudo"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)
