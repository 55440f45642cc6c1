// Package controllers handles HTTP request handling
package controllers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/studycrew/web/internal/app/dashboard"
	"github.com/studycrew/web/internal/app/modal"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/middleware"
)

// ModalLinks are the hrefs that switch or close the auth dialog
type ModalLinks struct {
	Login    string
	Register string
	Close    string
}

// PageData is what every page template receives
type PageData struct {
	Title         string
	Path          string
	ReturnTo      string
	Nav           nav.Navbar
	Identity      models.Identity
	Authenticated bool
	Modal         modal.Selection
	ModalLinks    ModalLinks
	RegisterRole  models.Role
	AcademicYears []models.AcademicYear
	CSRF          template.HTML
	Flash         *middleware.Flash
	Content       template.HTML
	Dashboard     dashboard.View
}

func newPage(c *gin.Context, title string) PageData {
	var (
		id models.Identity
		ok bool
	)
	if store := middleware.SessionStore(c); store != nil {
		id, ok = store.Identity()
	}

	coord := modal.FromQuery(c.Request.URL.Query())
	sel := coord.State()
	coord.Close()
	returnTo := coord.Apply(c.Request.URL.RequestURI())

	flash := middleware.GetFlash(c)
	if flash == nil {
		flash = &middleware.Flash{}
	}

	registerRole := sel.Intent
	if r, valid := models.ParseRole(flash.Value("role")); valid {
		registerRole = r
	}

	return PageData{
		Title:         title,
		Path:          c.Request.URL.Path,
		ReturnTo:      returnTo,
		Nav:           nav.Build(id, ok).WithActive(c.Request.URL.Path),
		Identity:      id,
		Authenticated: ok,
		Modal:         sel,
		ModalLinks: ModalLinks{
			Login:    modal.Link(returnTo, modal.KindLogin, sel.Intent),
			Register: modal.Link(returnTo, modal.KindRegister, sel.Intent),
			Close:    returnTo,
		},
		RegisterRole:  registerRole,
		AcademicYears: models.AcademicYears,
		CSRF:          csrf.TemplateField(c.Request),
		Flash:         flash,
	}
}

// redirect sends the visitor on with 303 so a refresh never resubmits a form
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// safeReturn keeps redirects on this site
func safeReturn(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return nav.PathHome
	}
	return path
}

// Funcs are the template helpers the page templates use
func Funcs() template.FuncMap {
	return template.FuncMap{
		"modalLink": func(path, kind, intent string) string {
			role, _ := models.ParseRole(intent)
			return modal.Link(path, modal.ParseKind(kind), role)
		},
		"dashLink": dashboard.Link,
		"join":     strings.Join,
	}
}
