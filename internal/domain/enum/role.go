package enum

// Role names carried in access tokens
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)
