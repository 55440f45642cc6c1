// Package modal tracks which authentication dialog is open and which role
// the visitor was steered towards when it was opened.
package modal

import (
	"net/url"
	"sync"

	"github.com/studycrew/web/internal/app/models"
)

// Query parameter names carrying modal state
const (
	ParamModal  = "modal"
	ParamIntent = "intent"
)

// Kind identifies a dialog
type Kind string

const (
	KindNone     Kind = ""
	KindLogin    Kind = "login"
	KindRegister Kind = "register"
)

// ParseKind maps a query value to a Kind. Unknown values are KindNone.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindLogin, KindRegister:
		return Kind(s)
	}
	return KindNone
}

// Selection is a snapshot of the coordinator. Intent is only meaningful
// while Open is true.
type Selection struct {
	Open   bool
	Kind   Kind
	Intent models.Role
}

// IsLogin reports whether the login dialog is showing
func (s Selection) IsLogin() bool { return s.Open && s.Kind == KindLogin }

// IsRegister reports whether the register dialog is showing
func (s Selection) IsRegister() bool { return s.Open && s.Kind == KindRegister }

// Coordinator owns the modal selection for one page
type Coordinator struct {
	mu  sync.Mutex
	sel Selection
}

// New returns a closed coordinator
func New() *Coordinator {
	return &Coordinator{}
}

// FromQuery restores the coordinator from ?modal=&intent=. An unknown modal
// leaves it closed; an unknown intent opens the dialog without one.
func FromQuery(q url.Values) *Coordinator {
	c := New()
	if kind := ParseKind(q.Get(ParamModal)); kind != KindNone {
		intent, _ := models.ParseRole(q.Get(ParamIntent))
		c.Open(kind, intent)
	}
	return c
}

// Open shows a dialog, replacing whatever was open
func (c *Coordinator) Open(kind Kind, intent models.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == KindNone {
		c.sel = Selection{}
		return
	}
	c.sel = Selection{Open: true, Kind: kind, Intent: intent}
}

// Close hides the dialog and forgets kind and intent together
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.sel = Selection{}
	c.mu.Unlock()
}

// State returns the current selection
func (c *Coordinator) State() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Query encodes the selection as query values. A closed coordinator encodes
// to an empty set.
func (c *Coordinator) Query() url.Values {
	return Encode(c.State())
}

// Encode turns a selection into query values
func Encode(s Selection) url.Values {
	q := url.Values{}
	if !s.Open || s.Kind == KindNone {
		return q
	}
	q.Set(ParamModal, string(s.Kind))
	if s.Intent.Valid() {
		q.Set(ParamIntent, string(s.Intent))
	}
	return q
}

// Apply rewrites path so its query carries the coordinator's selection.
// Other query values on path are kept; a previous modal and intent are
// replaced.
func (c *Coordinator) Apply(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Del(ParamModal)
	q.Del(ParamIntent)
	for k, vs := range c.Query() {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Link returns path with the dialog opened on it
func Link(path string, kind Kind, intent models.Role) string {
	c := New()
	c.Open(kind, intent)
	return c.Apply(path)
}

// Strip closes whatever dialog path has open, giving the link that closes it
func Strip(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	c := FromQuery(u.Query())
	c.Close()
	return c.Apply(path)
}
