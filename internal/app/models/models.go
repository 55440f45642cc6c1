package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role defines the user role type
type Role string

const (
	RoleNone      Role = ""
	RoleAssistant Role = "assistant" // peer tutor
	RoleUser      Role = "user"      // student seeking help
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAssistant || r == RoleUser
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return RoleNone, false
	}
	return r, true
}

// AcademicYear is a class standing, 1 (Freshman) through 4 (Senior).
type AcademicYear int

const (
	Freshman  AcademicYear = 1
	Sophomore AcademicYear = 2
	Junior    AcademicYear = 3
	Senior    AcademicYear = 4
)

// AcademicYears lists every standing in order.
var AcademicYears = []AcademicYear{Freshman, Sophomore, Junior, Senior}

var yearLabels = map[AcademicYear]string{
	Freshman:  "Freshman",
	Sophomore: "Sophomore",
	Junior:    "Junior",
	Senior:    "Senior",
}

// Valid reports whether y is within Freshman..Senior.
func (y AcademicYear) Valid() bool {
	return y >= Freshman && y <= Senior
}

// Label returns the standing name, e.g. "Junior".
func (y AcademicYear) Label() string {
	if label, ok := yearLabels[y]; ok {
		return label
	}
	return ""
}

// ParseAcademicYear accepts "2", "Year 2" or a standing label such as "Sophomore".
func ParseAcademicYear(s string) (AcademicYear, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for y, label := range yearLabels {
		if strings.EqualFold(label, s) {
			return y, true
		}
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "year"))
	n, err := strconv.Atoi(s)
	if err != nil || !AcademicYear(n).Valid() {
		return 0, false
	}
	return AcademicYear(n), true
}

// UnmarshalJSON accepts a number, a numeric string or a standing label.
// Unknown shapes decode to the zero year so one bad record does not fail a list.
func (y *AcademicYear) UnmarshalJSON(data []byte) error {
	*y = 0
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = AcademicYear(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if parsed, ok := ParseAcademicYear(s); ok {
		*y = parsed
	}
	return nil
}

// Semester is one of the two fixed academic terms.
type Semester int

const (
	SemesterOne Semester = 1
	SemesterTwo Semester = 2
)

// Semesters lists both terms in order.
var Semesters = []Semester{SemesterOne, SemesterTwo}

// Valid reports whether s is a known term.
func (s Semester) Valid() bool {
	return s == SemesterOne || s == SemesterTwo
}

// Label returns "Semester 1" or "Semester 2".
func (s Semester) Label() string {
	if !s.Valid() {
		return ""
	}
	return "Semester " + strconv.Itoa(int(s))
}

// ParseSemester accepts "Semester 1" style labels as well as bare "1"/"2".
func ParseSemester(v string) (Semester, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(v), "semester"))
	n, err := strconv.Atoi(v)
	if err != nil || !Semester(n).Valid() {
		return 0, false
	}
	return Semester(n), true
}

// UnmarshalJSON accepts 1|2, "1"|"2" and "Semester 1"|"Semester 2".
func (s *Semester) UnmarshalJSON(data []byte) error {
	*s = 0
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Semester(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	if parsed, ok := ParseSemester(str); ok {
		*s = parsed
	}
	return nil
}
