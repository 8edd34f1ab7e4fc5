package models

import "time"

// VoterRecord is a read-only row from the voter roster maintained by the
// campus identity system. This service never creates or mutates voters.
type VoterRecord struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EligibleFor reports whether the voter may take part in the election.
func (v *VoterRecord) EligibleFor(e *Election) bool {
	if v == nil || !v.Active {
		return false
	}
	if e.Scope == ScopeDepartment {
		if v.DepartmentID == nil || e.DepartmentID == nil {
			return false
		}
		return *v.DepartmentID == *e.DepartmentID
	}
	return true
}
