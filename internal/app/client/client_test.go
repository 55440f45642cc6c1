package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/pkg/apperrors"
	"github.com/studycrew/web/internal/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)
	return c
}

func TestCoursesQuery(t *testing.T) {
	assert.Equal(t, "year=2&semester=Semester%201", CoursesQuery(models.Sophomore, models.SemesterOne))
	assert.Equal(t, "year=4&semester=Semester%202", CoursesQuery(models.Senior, models.SemesterTwo))
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"}, logger.Nop())
	assert.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body.Email)
		assert.Equal(t, "secret", body.Password)

		ck, err := r.Cookie("backend_sid")
		require.NoError(t, err)
		assert.Equal(t, "abc", ck.Value)

		w.Write([]byte(`{"user":{"email":"a@b.com","role":"assistant","academic_year":3}}`))
	})

	ctx := WithCookies(context.Background(), []*http.Cookie{{Name: "backend_sid", Value: "abc"}})
	id, err := c.Login(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.Identity{Email: "a@b.com", Role: models.RoleAssistant, AcademicYear: 3}, id)
}

func TestLoginMissingAcademicYearDefaultsToFirst(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"email":"a@b.com","role":"user"}}`))
	})

	id, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.Freshman, id.AcademicYear)
}

func TestLoginAcceptsYearAsString(t *testing.T) {
	for _, year := range []string{`"3"`, `"Junior"`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":{"email":"a@b.com","role":"assistant","academic_year":` + year + `}}`))
		})

		id, err := c.Login(context.Background(), "a@b.com", "secret")
		require.NoError(t, err, year)
		assert.Equal(t, models.Junior, id.AcademicYear, year)
	}
}

func TestLoginRelaysBackendCookies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "backend-session", Path: "/", HttpOnly: true})
		w.Write([]byte(`{"user":{"email":"a@b.com","role":"assistant","academic_year":3}}`))
	})

	var relayed []*http.Cookie
	ctx := WithCookieRelay(context.Background(), func(ck *http.Cookie) {
		relayed = append(relayed, ck)
	})
	_, err := c.Login(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	require.Len(t, relayed, 1)
	assert.Equal(t, "sid", relayed[0].Name)
	assert.Equal(t, "backend-session", relayed[0].Value)

	// no relay attached is fine
	_, err = c.Login(context.Background(), "a@b.com", "secret")
	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"server message verbatim", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, apperrors.ErrInvalidCredentials, "Invalid credentials"},
		{"fallback message", http.StatusInternalServerError, `{}`, apperrors.ErrLoginFailed, "Login failed"},
		{"malformed body", http.StatusOK, `<html>oops</html>`, apperrors.ErrInvalidResponse, "Invalid server response"},
		{"malformed error body", http.StatusBadGateway, `bad gateway`, apperrors.ErrInvalidResponse, "Invalid server response"},
		{"ok without user", http.StatusOK, `{"token":"x"}`, apperrors.ErrInvalidResponse, "Invalid server response"},
		{"unknown role", http.StatusOK, `{"user":{"email":"a@b.com","role":"admin"}}`, apperrors.ErrInvalidResponse, "Invalid server response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), "a@b.com", "secret")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Equal(t, tt.message, apperrors.UserMessage(err, "unused"))
		})
	}
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "a@b.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.Equal(t, "Unable to reach server", apperrors.UserMessage(err, ""))
}

func TestRegisterPostsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)

		var body dto.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.RoleUser, body.Role)
		assert.Equal(t, 2, body.AcademicYear)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"user":{"email":"n@b.com","role":"user","academic_year":2,"name":"Nia"}}`))
	})

	id, err := c.Register(context.Background(), dto.RegisterRequest{
		Name: "Nia", Email: "n@b.com", Password: "secret1", Role: models.RoleUser, AcademicYear: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nia", id.DisplayName())
}

func TestCoursesRequestEncoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses", r.URL.Path)
		assert.Equal(t, "year=2&semester=Semester%201", r.URL.RawQuery)
		w.Write([]byte(`[
			{"name":"Algorithms","code":"CS201","year":"Sophomore","semester":1,"credit_hour":3},
			{"name":"Linear Algebra","code":"MATH201","year":2,"semester":"Semester 1","credits":4}
		]`))
	})

	courses, err := c.Courses(context.Background(), models.Sophomore, models.SemesterOne)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.True(t, courses[0].Matches(models.Sophomore, models.SemesterOne))
	assert.True(t, courses[1].Matches(models.Sophomore, models.SemesterOne))
	assert.Equal(t, 4, courses[1].CreditHour)
}

func TestCoursesErrors(t *testing.T) {
	t.Run("status with message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Catalog offline"}`))
		})
		_, err := c.Courses(context.Background(), models.Freshman, models.SemesterTwo)
		assert.ErrorIs(t, err, apperrors.ErrFetchCourses)
		assert.Equal(t, "Catalog offline", apperrors.UserMessage(err, ""))
	})

	t.Run("status without message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := c.Courses(context.Background(), models.Freshman, models.SemesterTwo)
		assert.Equal(t, "Failed to fetch courses", apperrors.UserMessage(err, ""))
	})

	t.Run("not a list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"courses":[]}`))
		})
		_, err := c.Courses(context.Background(), models.Freshman, models.SemesterTwo)
		assert.ErrorIs(t, err, apperrors.ErrInvalidResponse)
	})
}
