package models

// Identity is the authenticated user as reported by the backend's /login.
type Identity struct {
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	AcademicYear AcademicYear `json:"academic_year"`
	Name         string       `json:"name,omitempty"`
}

// Valid reports whether the identity carries the minimum a session needs.
func (i Identity) Valid() bool {
	return i.Email != "" && i.Role.Valid() && i.AcademicYear >= Freshman
}

// Normalize fills defaults the backend may omit. A missing academic year
// is treated as first year.
func (i Identity) Normalize() Identity {
	if i.AcademicYear < Freshman {
		i.AcademicYear = Freshman
	}
	return i
}

// DisplayName is used for the navbar greeting.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}
