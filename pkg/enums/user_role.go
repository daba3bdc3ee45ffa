package enums

// UserRole is carried in access token claims.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleCustomer || r == UserRoleAdmin
}

func ParseUserRole(value string) (UserRole, error) {
	return parse("user role", []UserRole{UserRoleCustomer, UserRoleAdmin}, value)
}
