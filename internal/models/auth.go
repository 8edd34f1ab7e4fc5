package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleVoter      UserRole = "VOTER"
)

// VoterClaims is the access-token payload issued by the campus identity
// provider. This service only verifies tokens; it never issues them.
type VoterClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	DepartmentID *string  `json:"department_id,omitempty"`
	FullName     string   `json:"full_name"`
	jwt.RegisteredClaims
}
