package models

import "encoding/json"

// Course is a course offering returned by the backend's /courses endpoint.
type Course struct {
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Year        AcademicYear `json:"year"`
	Semester    Semester     `json:"semester"`
	CreditHour  int          `json:"credit_hour"`
	Description string       `json:"description,omitempty"`
}

// UnmarshalJSON also accepts "credits" as an alias for credit_hour.
func (c *Course) UnmarshalJSON(data []byte) error {
	type plain Course
	var aux struct {
		plain
		Credits *int `json:"credits"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Course(aux.plain)
	if c.CreditHour == 0 && aux.Credits != nil {
		c.CreditHour = *aux.Credits
	}
	return nil
}

// Matches reports whether the course belongs to the given year and semester.
func (c Course) Matches(year AcademicYear, semester Semester) bool {
	return c.Year == year && c.Semester == semester
}
