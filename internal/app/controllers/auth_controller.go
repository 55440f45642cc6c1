package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/modal"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/middleware"
	"github.com/studycrew/web/internal/pkg/apperrors"
)

// AuthController handles the sign-in, sign-up and sign-out forms
type AuthController struct {
	logger zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(logger zerolog.Logger) *AuthController {
	return &AuthController{logger: logger}
}

// Login signs the visitor in and sends them to the dashboard of the role
// the backend returned. Failures reopen the login dialog with the message.
func (ac *AuthController) Login(c *gin.Context) {
	var form dto.LoginForm
	fields, err := middleware.BindForm(c, &form)
	if err != nil {
		middleware.HandleWebError(c, err)
		return
	}

	intent, _ := models.ParseRole(form.Intent)
	back := modal.Link(safeReturn(form.ReturnTo), modal.KindLogin, intent)
	if fields != nil {
		middleware.SetFlash(c, middleware.Flash{
			Kind:   middleware.FlashError,
			Fields: fields,
			Form:   map[string]string{"email": form.Email},
		})
		redirect(c, back)
		return
	}

	store := middleware.SessionStore(c)
	if store == nil {
		middleware.HandleWebError(c, apperrors.ErrStorage)
		return
	}
	if !store.Login(c.Request.Context(), form.Email, form.Password) {
		middleware.SetFlash(c, middleware.Flash{
			Kind:    middleware.FlashError,
			Message: store.Err(),
			Form:    map[string]string{"email": form.Email},
		})
		redirect(c, back)
		return
	}

	redirect(c, nav.DashboardPath(store.Role()))
}

// Register creates an account, signs it in and opens its dashboard
func (ac *AuthController) Register(c *gin.Context) {
	var form dto.RegisterForm
	fields, err := middleware.BindForm(c, &form)
	if err != nil {
		middleware.HandleWebError(c, err)
		return
	}

	intent, _ := models.ParseRole(form.Intent)
	back := modal.Link(safeReturn(form.ReturnTo), modal.KindRegister, intent)
	submitted := map[string]string{
		"name":  form.Name,
		"email": form.Email,
		"role":  form.Role,
	}
	if form.AcademicYear > 0 {
		submitted["academic_year"] = strconv.Itoa(form.AcademicYear)
	}

	if fields != nil {
		middleware.SetFlash(c, middleware.Flash{Kind: middleware.FlashError, Fields: fields, Form: submitted})
		redirect(c, back)
		return
	}

	store := middleware.SessionStore(c)
	if store == nil {
		middleware.HandleWebError(c, apperrors.ErrStorage)
		return
	}
	if !store.Register(c.Request.Context(), form.ToRequest()) {
		middleware.SetFlash(c, middleware.Flash{Kind: middleware.FlashError, Message: store.Err(), Form: submitted})
		redirect(c, back)
		return
	}

	redirect(c, nav.DashboardPath(store.Role()))
}

// Logout forgets the session and returns home
func (ac *AuthController) Logout(c *gin.Context) {
	if store := middleware.SessionStore(c); store != nil {
		if err := store.Logout(); err != nil {
			ac.logger.Error().Err(err).Msg("Logout left stored entries behind")
		}
	}
	redirect(c, nav.PathHome)
}
