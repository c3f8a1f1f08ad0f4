package model

type PhysicianRole string

const (
	RolePhysician      PhysicianRole = "PHYSICIAN"
	RolePeerReviewer   PhysicianRole = "PEER_REVIEWER"
	RoleDepartmentHead PhysicianRole = "DEPARTMENT_HEAD"
	RoleAdministrator  PhysicianRole = "ADMINISTRATOR"
)

// Physician identity is immutable after onboarding.
type Physician struct {
	Base
	Email         string        `db:"email" json:"email"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	Name          string        `db:"name" json:"name"`
	Role          PhysicianRole `db:"role" json:"role"`
	Specialty     string        `db:"specialty" json:"specialty,omitempty"`
	NPI           string        `db:"npi" json:"npi,omitempty"`
	LicenseNumber string        `db:"license_number" json:"license_number,omitempty"`
}

type RegisterPhysicianRequest struct {
	Email         string        `json:"email" binding:"required,email"`
	Password      string        `json:"password" binding:"required,min=8"`
	Name          string        `json:"name" binding:"required,min=2"`
	Role          PhysicianRole `json:"role" binding:"required,physicianrole"`
	Specialty     string        `json:"specialty" binding:"omitempty,max=100"`
	NPI           string        `json:"npi" binding:"omitempty,len=10,numeric"`
	LicenseNumber string        `json:"license_number" binding:"omitempty,max=50"`
}

type PhysicianFilters struct {
	Role      PhysicianRole
	Specialty string
	Pagination
}
