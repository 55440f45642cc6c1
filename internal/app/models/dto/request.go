package dto

// ContactForm is the contact page's message form
type ContactForm struct {
	Name    string `form:"name" binding:"required,min=2,max=100"`
	Email   string `form:"email" binding:"required,email"`
	Message string `form:"message" binding:"required,min=10,max=5000"`
}

// CourseRequestForm carries the courses an assistant picked on the dashboard
type CourseRequestForm struct {
	Year     string   `form:"year" binding:"required"`
	Semester string   `form:"semester" binding:"required"`
	Courses  []string `form:"course"`
}
