package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/web/internal/app/client"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/pkg/apperrors"
	"github.com/studycrew/web/internal/pkg/auth"
	"github.com/studycrew/web/internal/pkg/logger"
)

// fakeAuth records calls and answers with canned results
type fakeAuth struct {
	calls    int
	identity models.Identity
	err      error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (models.Identity, error) {
	f.calls++
	return f.identity, f.err
}

func (f *fakeAuth) Register(_ context.Context, req dto.RegisterRequest) (models.Identity, error) {
	f.calls++
	return f.identity, f.err
}

// flakyStorage fails Save for one key
type flakyStorage struct {
	*MemoryStorage
	failKey string
}

func (f *flakyStorage) Save(key, value string) error {
	if key == f.failKey {
		return errors.New("quota exceeded")
	}
	return f.MemoryStorage.Save(key, value)
}

var assistant = models.Identity{Email: "a@b.com", Role: models.RoleAssistant, AcademicYear: 3}

func TestStoreStartsSignedOut(t *testing.T) {
	s := NewStore(NewMemoryStorage(nil), &fakeAuth{}, logger.Nop())

	_, ok := s.Identity()
	assert.False(t, ok)
	assert.Equal(t, models.RoleNone, s.Role())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())
}

func TestLoginPersistsIdentity(t *testing.T) {
	storage := NewMemoryStorage(nil)
	s := NewStore(storage, &fakeAuth{identity: assistant}, logger.Nop())

	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))

	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, assistant, id)
	assert.Equal(t, models.RoleAssistant, s.Role())

	role, ok := storage.Load(KeyRole)
	require.True(t, ok)
	assert.Equal(t, "assistant", role)
	user, ok := storage.Load(KeyUser)
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"a@b.com","role":"assistant","academic_year":3}`, user)
}

func TestReloadRestoresWithoutNetwork(t *testing.T) {
	storage := NewMemoryStorage(nil)
	first := NewStore(storage, &fakeAuth{identity: assistant}, logger.Nop())
	require.True(t, first.Login(context.Background(), "a@b.com", "secret"))

	offline := &fakeAuth{err: errors.New("must not be called")}
	reloaded := NewStore(storage, offline, logger.Nop())

	assert.Equal(t, 0, offline.calls)
	assert.Equal(t, models.RoleAssistant, reloaded.Role())
	id, _ := reloaded.Identity()
	assert.Equal(t, models.Junior, id.AcademicYear)
}

func TestRestoreIgnoresBadEntries(t *testing.T) {
	tests := map[string]map[string]string{
		"only user":      {KeyUser: `{"email":"a@b.com","role":"user","academic_year":1}`},
		"only role":      {KeyRole: "user"},
		"unknown role":   {KeyUser: `{"email":"a@b.com","academic_year":1}`, KeyRole: "admin"},
		"malformed json": {KeyUser: `{"email":`, KeyRole: "user"},
		"no email":       {KeyUser: `{"academic_year":2}`, KeyRole: "user"},
		"no year":        {KeyUser: `{"email":"a@b.com"}`, KeyRole: "user"},
	}
	for name, entries := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStore(NewMemoryStorage(entries), &fakeAuth{}, logger.Nop())
			assert.False(t, s.Authenticated())
		})
	}
}

func TestRestoreRoleEntryWins(t *testing.T) {
	storage := NewMemoryStorage(map[string]string{
		KeyUser: `{"email":"a@b.com","role":"user","academic_year":4}`,
		KeyRole: "assistant",
	})
	s := NewStore(storage, &fakeAuth{}, logger.Nop())
	assert.Equal(t, models.RoleAssistant, s.Role())
}

func TestLoginFailureKeepsPriorIdentity(t *testing.T) {
	storage := NewMemoryStorage(nil)
	fa := &fakeAuth{identity: assistant}
	s := NewStore(storage, fa, logger.Nop())
	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))

	fa.err = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
	assert.False(t, s.Login(context.Background(), "a@b.com", "wrong"))

	assert.Equal(t, "Invalid credentials", s.Err())
	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, assistant, id)
}

func TestLoginFailureUsesFallbackMessage(t *testing.T) {
	s := NewStore(NewMemoryStorage(nil), &fakeAuth{err: errors.New("dial tcp: refused")}, logger.Nop())

	assert.False(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, "Login failed", s.Err())
}

func TestLoginClearsPreviousError(t *testing.T) {
	fa := &fakeAuth{err: apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")}
	s := NewStore(NewMemoryStorage(nil), fa, logger.Nop())
	require.False(t, s.Login(context.Background(), "a@b.com", "x"))

	fa.err = nil
	fa.identity = assistant
	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.Empty(t, s.Err())
}

func TestLoginRollsBackOnStorageFailure(t *testing.T) {
	storage := &flakyStorage{MemoryStorage: NewMemoryStorage(nil), failKey: KeyRole}
	s := NewStore(storage, &fakeAuth{identity: assistant}, logger.Nop())

	assert.False(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.False(t, s.Authenticated())
	assert.Equal(t, apperrors.MsgStorage, s.Err())
	assert.Equal(t, 0, storage.Len(), "half-written session must be removed")
}

func TestLogout(t *testing.T) {
	storage := NewMemoryStorage(nil)
	s := NewStore(storage, &fakeAuth{identity: assistant}, logger.Nop())
	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))

	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	assert.Equal(t, 0, storage.Len())

	// idempotent
	require.NoError(t, s.Logout())

	reloaded := NewStore(storage, &fakeAuth{}, logger.Nop())
	assert.False(t, reloaded.Authenticated())
}

func TestRegisterSignsIn(t *testing.T) {
	student := models.Identity{Email: "n@b.com", Role: models.RoleUser, AcademicYear: 2, Name: "Nia"}
	storage := NewMemoryStorage(nil)
	s := NewStore(storage, &fakeAuth{identity: student}, logger.Nop())

	require.True(t, s.Register(context.Background(), dto.RegisterRequest{Email: "n@b.com"}))
	assert.Equal(t, models.RoleUser, s.Role())
	role, _ := storage.Load(KeyRole)
	assert.Equal(t, "user", role)
}

// The end-to-end example: a mocked backend answers /login for an assistant.
func TestLoginAgainstMockedBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"user":{"email":"a@b.com","role":"assistant","academic_year":3}}`))
	}))
	defer backend.Close()

	c, err := client.New(client.Config{BaseURL: backend.URL}, logger.Nop())
	require.NoError(t, err)

	s := NewStore(NewMemoryStorage(nil), c, logger.Nop())
	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, models.RoleAssistant, s.Role())
}

func TestLoginRejectedByMockedBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer backend.Close()

	c, err := client.New(client.Config{BaseURL: backend.URL}, logger.Nop())
	require.NoError(t, err)

	storage := NewMemoryStorage(nil)
	s := NewStore(storage, c, logger.Nop())
	assert.False(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.False(t, s.Authenticated())
	assert.Equal(t, "Invalid credentials", s.Err())
	assert.Equal(t, 0, storage.Len())
}

func TestCookieStorageRoundTrip(t *testing.T) {
	signer := auth.NewValueSigner(auth.SignerConfig{SecretKey: "k", TokenIssuer: "test"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	cs := NewCookieStorage(rec, req, signer, CookieOptions{MaxAge: time.Hour})
	s := NewStore(cs, &fakeAuth{identity: assistant}, logger.Nop())
	require.True(t, s.Login(context.Background(), "a@b.com", "secret"))

	// visible within the same request
	v, ok := cs.Load(KeyRole)
	require.True(t, ok)
	assert.Equal(t, "assistant", v)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, ck := range cookies {
		assert.True(t, ck.HttpOnly)
		assert.Equal(t, 3600, ck.MaxAge)
	}

	// next page load
	next := httptest.NewRequest(http.MethodGet, "/dashboard/assistant", nil)
	for _, ck := range cookies {
		next.AddCookie(ck)
	}
	reloaded := NewStore(NewCookieStorage(httptest.NewRecorder(), next, signer, CookieOptions{}), &fakeAuth{}, logger.Nop())
	assert.Equal(t, models.RoleAssistant, reloaded.Role())
}

func TestCookieStorageRejectsForgedRole(t *testing.T) {
	signer := auth.NewValueSigner(auth.SignerConfig{SecretKey: "k"})
	userToken, err := signer.Sign(KeyUser, `{"email":"a@b.com","role":"user","academic_year":4}`)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: KeyUser, Value: userToken})
	req.AddCookie(&http.Cookie{Name: KeyRole, Value: "assistant"})

	s := NewStore(NewCookieStorage(httptest.NewRecorder(), req, signer, CookieOptions{}), &fakeAuth{}, logger.Nop())
	assert.False(t, s.Authenticated())
}

func TestCookieStorageClearExpiresCookies(t *testing.T) {
	signer := auth.NewValueSigner(auth.SignerConfig{SecretKey: "k"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	cs := NewCookieStorage(rec, req, signer, CookieOptions{})

	require.NoError(t, cs.Save(KeyRole, "user"))
	require.NoError(t, cs.Clear(KeyRole))

	_, ok := cs.Load(KeyRole)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	last := cookies[len(cookies)-1]
	assert.Equal(t, KeyRole, last.Name)
	assert.Equal(t, -1, last.MaxAge)
}
