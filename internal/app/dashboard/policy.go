// Package dashboard loads the course catalogue for the year and semester a
// dashboard visitor is looking at and tracks which courses they picked.
package dashboard

import "github.com/studycrew/web/internal/app/models"

// Policy decides which academic years a visitor may browse
type Policy int

const (
	// BelowOwnYear lets assistants tutor the years they already completed
	BelowOwnYear Policy = iota
	// UpToOwnYear lets students browse their own year and earlier ones
	UpToOwnYear
)

func (p Policy) String() string {
	if p == UpToOwnYear {
		return "up_to_own_year"
	}
	return "below_own_year"
}

// PolicyFor returns the browsing rule of a dashboard role
func PolicyFor(role models.Role) Policy {
	if role == models.RoleAssistant {
		return BelowOwnYear
	}
	return UpToOwnYear
}

// EligibleYears lists the years open to someone in academicYear, in order.
// An assistant in their first year gets none.
func EligibleYears(p Policy, academicYear int) []models.AcademicYear {
	years := make([]models.AcademicYear, 0, len(models.AcademicYears))
	for _, y := range models.AcademicYears {
		switch p {
		case BelowOwnYear:
			if int(y) < academicYear {
				years = append(years, y)
			}
		case UpToOwnYear:
			if int(y) <= academicYear {
				years = append(years, y)
			}
		}
	}
	return years
}
