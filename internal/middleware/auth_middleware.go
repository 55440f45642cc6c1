package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/client"
	"github.com/studycrew/web/internal/app/modal"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/app/session"
)

// AuthMiddleware restores the visitor's session from cookies and gates the
// dashboards by role
type AuthMiddleware struct {
	signer  session.Signer
	auth    session.Authenticator
	cookies session.CookieOptions
	logger  zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(signer session.Signer, auth session.Authenticator, cookies session.CookieOptions, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		signer:  signer,
		auth:    auth,
		cookies: cookies,
		logger:  logger,
	}
}

// Session builds the request's session store. The browser's other cookies
// go with upstream calls, and cookies the backend sets come back to the
// browser, so a cookie-based backend session works through this server.
func (m *AuthMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := session.NewCookieStorage(c.Writer, c.Request, m.signer, m.cookies)
		store := session.NewStore(storage, m.auth, m.logger.With().Str("request_id", c.GetString(KeyRequestID)).Logger())
		c.Set(KeySession, store)

		ctx := client.WithCookies(c.Request.Context(), upstreamCookies(c.Request))
		ctx = client.WithCookieRelay(ctx, m.relay(c))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ownCookie reports whether name is a cookie this server manages itself
func ownCookie(name string) bool {
	switch name {
	case session.KeyUser, session.KeyRole, flashCookie, csrfCookie:
		return true
	}
	return false
}

func upstreamCookies(r *http.Request) []*http.Cookie {
	var out []*http.Cookie
	for _, ck := range r.Cookies() {
		if ownCookie(ck.Name) {
			continue
		}
		out = append(out, ck)
	}
	return out
}

// relay hands a backend cookie to the browser. The backend's domain and
// path mean nothing on this host, so the cookie is rescoped to the site.
func (m *AuthMiddleware) relay(c *gin.Context) client.CookieRelay {
	return func(ck *http.Cookie) {
		if ownCookie(ck.Name) {
			m.logger.Warn().Str("cookie", ck.Name).Msg("Ignoring backend cookie that clashes with a local one")
			return
		}
		out := *ck
		out.Domain = ""
		out.Path = "/"
		out.Raw = ""
		out.Unparsed = nil
		http.SetCookie(c.Writer, &out)
	}
}

// SessionStore returns the store set by Session
func SessionStore(c *gin.Context) *session.Store {
	v, ok := c.Get(KeySession)
	if !ok {
		return nil
	}
	store, _ := v.(*session.Store)
	return store
}

// RoleRequired lets only visitors signed in with role through. Anonymous
// visitors are sent home with the login dialog open; visitors with another
// role go to their own dashboard.
func (m *AuthMiddleware) RoleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := SessionStore(c)
		if store == nil || !store.Authenticated() {
			c.Redirect(http.StatusSeeOther, modal.Link(nav.PathHome, modal.KindLogin, role))
			c.Abort()
			return
		}

		if current := store.Role(); current != role {
			m.logger.Debug().Str("required", string(role)).Str("role", string(current)).Msg("Redirecting to own dashboard")
			c.Redirect(http.StatusSeeOther, nav.DashboardPath(current))
			c.Abort()
			return
		}

		c.Next()
	}
}
