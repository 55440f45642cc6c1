package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/dashboard"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/middleware"
	"github.com/studycrew/web/internal/pkg/apperrors"
)

// DashboardController serves the role dashboards
type DashboardController struct {
	fetcher dashboard.CourseFetcher
	logger  zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(fetcher dashboard.CourseFetcher, logger zerolog.Logger) *DashboardController {
	return &DashboardController{fetcher: fetcher, logger: logger}
}

func (dc *DashboardController) identity(c *gin.Context) models.Identity {
	if store := middleware.SessionStore(c); store != nil {
		id, _ := store.Identity()
		return id
	}
	return models.Identity{}
}

func (dc *DashboardController) show(c *gin.Context, role models.Role, title, tmpl string) {
	id := dc.identity(c)
	loader := dashboard.NewLoader(dc.fetcher, dashboard.PolicyFor(role), int(id.AcademicYear), dc.logger)

	// Fetch failures are shown inside the page
	if err := loader.Initial(c.Request.Context(), c.Request.URL.Query()); err != nil && !errors.Is(err, apperrors.ErrNoEligibleYears) {
		dc.logger.Debug().Err(err).Str("email", id.Email).Msg("Dashboard loaded with error")
	}

	page := newPage(c, title)
	page.Dashboard = loader.View()
	c.HTML(http.StatusOK, tmpl, page)
}

// Assistant renders the assistant dashboard: the years below the
// assistant's own, one semester at a time, with course selection
func (dc *DashboardController) Assistant(c *gin.Context) {
	dc.show(c, models.RoleAssistant, "Assistant Dashboard", "dashboard_assistant.html")
}

// Student renders the student dashboard
func (dc *DashboardController) Student(c *gin.Context) {
	dc.show(c, models.RoleUser, "Student Dashboard", "dashboard_student.html")
}

// AssistantRequests takes the courses an assistant ticked and confirms them
func (dc *DashboardController) AssistantRequests(c *gin.Context) {
	var form dto.CourseRequestForm
	fields, err := middleware.BindForm(c, &form)
	if err != nil {
		middleware.HandleWebError(c, err)
		return
	}
	year, okYear := models.ParseAcademicYear(form.Year)
	semester, okSemester := models.ParseSemester(form.Semester)
	if fields != nil || !okYear || !okSemester {
		middleware.HandleWebError(c, apperrors.NewCustomError(apperrors.ErrBadRequest, "Please pick a year and a semester.").WithStatus(http.StatusBadRequest))
		return
	}

	id := dc.identity(c)
	loader := dashboard.NewLoader(dc.fetcher, dashboard.BelowOwnYear, int(id.AcademicYear), dc.logger)
	back := dashboard.Link(nav.PathAssistantDashboard, year, semester)

	if err := loader.Select(c.Request.Context(), year, semester); err != nil {
		if errors.Is(err, apperrors.ErrYearNotEligible) {
			middleware.HandleWebError(c, apperrors.NewCustomError(err, "You can only assist with years you have completed.").WithStatus(http.StatusForbidden))
			return
		}
		middleware.SetFlash(c, middleware.Flash{Kind: middleware.FlashError, Message: loader.Err()})
		redirect(c, back)
		return
	}

	selected := loader.ToggleAll(form.Courses)
	if len(selected) == 0 {
		middleware.SetFlash(c, middleware.Flash{Kind: middleware.FlashError, Message: "Select at least one course before submitting."})
		redirect(c, back)
		return
	}

	dc.logger.Info().Str("email", id.Email).Strs("courses", selected).Msg("Assistant course selection submitted")
	middleware.SetFlash(c, middleware.Flash{Kind: middleware.FlashSuccess, Message: "Selected: " + strings.Join(selected, ", ")})
	redirect(c, back)
}
