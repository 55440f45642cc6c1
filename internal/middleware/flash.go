package middleware

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/session"
)

const (
	flashCookie = "flash"
	keyFlasher  = "flasher"

	// Cookies are limited to about 4KB
	maxFlashValue = 1000
)

// Flash kinds
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a one-shot message carried across a redirect
type Flash struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Form    map[string]string `json:"form,omitempty"`
}

// Field returns the error message for a form field
func (f *Flash) Field(name string) string {
	if f == nil {
		return ""
	}
	return f.Fields[name]
}

// Value returns the submitted value of a form field
func (f *Flash) Value(name string) string {
	if f == nil {
		return ""
	}
	return f.Form[name]
}

func (f *Flash) IsError() bool   { return f != nil && f.Kind == FlashError }
func (f *Flash) IsSuccess() bool { return f != nil && f.Kind == FlashSuccess }

// Flasher reads and writes signed flash cookies
type Flasher struct {
	signer session.Signer
	secure bool
	logger zerolog.Logger
}

func NewFlasher(signer session.Signer, secure bool, logger zerolog.Logger) *Flasher {
	return &Flasher{signer: signer, secure: secure, logger: logger}
}

// Middleware consumes the flash of the previous response, if any
func (f *Flasher) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyFlasher, f)

		if ck, err := c.Request.Cookie(flashCookie); err == nil && ck.Value != "" {
			f.clear(c)
			if fl, ok := f.decode(ck.Value); ok {
				c.Set(KeyFlash, fl)
			}
		}
		c.Next()
	}
}

func (f *Flasher) decode(token string) (*Flash, bool) {
	raw, err := f.signer.Verify(flashCookie, token)
	if err != nil {
		f.logger.Debug().Err(err).Msg("Dropping invalid flash cookie")
		return nil, false
	}
	var fl Flash
	if err := json.Unmarshal([]byte(raw), &fl); err != nil {
		return nil, false
	}
	return &fl, true
}

func (f *Flasher) set(c *gin.Context, fl Flash) {
	for k, v := range fl.Form {
		fl.Form[k] = truncate(v, maxFlashValue)
	}
	raw, err := json.Marshal(fl)
	if err != nil {
		f.logger.Error().Err(err).Msg("Failed to encode flash")
		return
	}
	token, err := f.signer.Sign(flashCookie, string(raw))
	if err != nil {
		f.logger.Error().Err(err).Msg("Failed to sign flash")
		return
	}
	http.SetCookie(c.Writer, f.cookie(token, 0))
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (f *Flasher) clear(c *gin.Context) {
	http.SetCookie(c.Writer, f.cookie("", -1))
}

func (f *Flasher) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetFlash queues fl for the next page the visitor sees
func SetFlash(c *gin.Context, fl Flash) {
	v, ok := c.Get(keyFlasher)
	if !ok {
		return
	}
	if f, ok := v.(*Flasher); ok {
		f.set(c, fl)
	}
}

// GetFlash returns the flash delivered with this request, or nil
func GetFlash(c *gin.Context) *Flash {
	v, ok := c.Get(KeyFlash)
	if !ok {
		return nil
	}
	fl, _ := v.(*Flash)
	return fl
}
