// Package nav builds the navigation bar from the signed-in identity.
package nav

import (
	"github.com/studycrew/web/internal/app/modal"
	"github.com/studycrew/web/internal/app/models"
)

// Page paths
const (
	PathHome               = "/"
	PathAbout              = "/about"
	PathContact            = "/contact"
	PathAssistantDashboard = "/dashboard/assistant"
	PathAssistantRequests  = "/dashboard/assistant/requests"
	PathStudentDashboard   = "/dashboard/student"
	PathLogin              = "/auth/login"
	PathRegister           = "/auth/register"
	PathLogout             = "/auth/logout"
)

// Link is a navbar entry
type Link struct {
	Label  string
	Href   string
	Active bool
}

// Action is a button on the right of the navbar. Actions with a Method
// submit a form; the rest are plain links.
type Action struct {
	Label   string
	Href    string
	Method  string
	Primary bool
}

// Navbar is what the layout renders
type Navbar struct {
	Links    []Link
	Actions  []Action
	Greeting string
}

var fixed = []Link{
	{Label: "Home", Href: PathHome},
	{Label: "About Us", Href: PathAbout},
	{Label: "Contact Us", Href: PathContact},
}

// Build returns the navbar for a visitor. Dashboards only show for the
// matching role.
func Build(identity models.Identity, authenticated bool) Navbar {
	var nb Navbar
	nb.Links = append(nb.Links, fixed...)

	if !authenticated {
		nb.Actions = []Action{
			{Label: "Sign in", Href: modal.Link(PathHome, modal.KindLogin, models.RoleNone)},
			{Label: "Sign up", Href: modal.Link(PathHome, modal.KindRegister, models.RoleNone), Primary: true},
		}
		return nb
	}

	switch identity.Role {
	case models.RoleAssistant:
		nb.Links = append(nb.Links, Link{Label: "Assistant Dashboard", Href: PathAssistantDashboard})
	case models.RoleUser:
		nb.Links = append(nb.Links, Link{Label: "Student Dashboard", Href: PathStudentDashboard})
	}
	nb.Greeting = "Hi, " + identity.DisplayName()
	nb.Actions = []Action{{Label: "Log out", Href: PathLogout, Method: "post"}}
	return nb
}

// WithActive marks the link whose path equals current
func (n Navbar) WithActive(current string) Navbar {
	links := make([]Link, len(n.Links))
	for i, l := range n.Links {
		l.Active = l.Href == current
		links[i] = l
	}
	n.Links = links
	return n
}

// DashboardPath is where a role lands after signing in
func DashboardPath(role models.Role) string {
	switch role {
	case models.RoleAssistant:
		return PathAssistantDashboard
	case models.RoleUser:
		return PathStudentDashboard
	}
	return PathHome
}
