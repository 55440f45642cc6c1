package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/studycrew/web/internal/pkg/helpers"
)

// Signer protects cookie values from being edited in the browser
type Signer interface {
	Sign(key, value string) (string, error)
	Verify(key, token string) (string, error)
}

// CookieOptions controls the cookies written by CookieStorage
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
	Path   string
}

// CookieStorage stores entries as signed browser cookies, one cookie per key.
// Writes made during a request are visible to later Loads in the same request.
type CookieStorage struct {
	w      http.ResponseWriter
	r      *http.Request
	signer Signer
	opts   CookieOptions

	mu      sync.Mutex
	written map[string]*string // nil value marks a cleared key
}

// NewCookieStorage binds storage to one request/response pair
func NewCookieStorage(w http.ResponseWriter, r *http.Request, signer Signer, opts CookieOptions) *CookieStorage {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStorage{
		w:       w,
		r:       r,
		signer:  signer,
		opts:    opts,
		written: make(map[string]*string),
	}
}

func (c *CookieStorage) Load(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	ck, err := c.r.Cookie(key)
	if err != nil || ck.Value == "" {
		return "", false
	}
	value, err := c.signer.Verify(key, ck.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (c *CookieStorage) Save(key, value string) error {
	token, err := c.signer.Sign(key, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	http.SetCookie(c.w, c.cookie(key, token, helpers.MaxAgeSeconds(c.opts.MaxAge)))
	c.written[key] = &value
	return nil
}

func (c *CookieStorage) Clear(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	http.SetCookie(c.w, c.cookie(key, "", -1))
	c.written[key] = nil
	return nil
}

func (c *CookieStorage) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
