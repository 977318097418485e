package stub

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSeeded(t *testing.T) *Server {
	t.Helper()
	s := New([]byte("test-secret"), zaptest.NewLogger(t))
	require.NoError(t, DefaultSeed().Apply(s))
	return s
}

func TestLoginAndFetch(t *testing.T) {
	s := newSeeded(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"admin@freshxpress.in","password":"freshxpress"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)

	token, err := s.IssueToken("admin@freshxpress.in")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/farmers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lakshmi Devi")
}

func TestLogin_Rejected(t *testing.T) {
	s := newSeeded(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"admin@freshxpress.in","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestFarmers_RequireToken(t *testing.T) {
	s := newSeeded(t)
	for _, auth := range []string{"", "Bearer not-a-jwt", "Basic abc"} {
		req := httptest.NewRequest("GET", "/api/farmers", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, auth)
	}
}

func TestUpdate(t *testing.T) {
	s := newSeeded(t)
	token, _ := s.IssueToken("admin@freshxpress.in")
	id := "5c1f0e9a-2d6b-4a73-b8c4-9e0d1f2a3c33"

	put := func() int {
		req := httptest.NewRequest("PUT", "/api/farmers/"+id, strings.NewReader(`{"is_verify":true}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}

	s.SetFailUpdates(true)
	assert.Equal(t, http.StatusInternalServerError, put())
	f, _ := s.Farmer(id)
	assert.False(t, f.IsVerify)

	s.SetFailUpdates(false)
	assert.Equal(t, http.StatusOK, put())
	f, _ = s.Farmer(id)
	assert.True(t, f.IsVerify)
}

func TestGet_NotFound(t *testing.T) {
	s := newSeeded(t)
	token, _ := s.IssueToken("admin@freshxpress.in")
	req := httptest.NewRequest("GET", "/api/farmers/missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - email: a@b.com
    password: x
farmers:
  - id: "42"
    full_name: Test Farmer
    contact_number: 9000000000
    state: Kerala
    latitude: 10.5
    longitude: 76.2
    crops_grown: [Rice]
    is_verify: false
`), 0600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	s := New([]byte("k"), nil)
	require.NoError(t, seed.Apply(s))

	f, ok := s.Farmer("42")
	require.True(t, ok)
	assert.Equal(t, "Test Farmer", f.FullName)
	assert.Equal(t, "9000000000", f.ContactNumber.String())
	assert.Equal(t, []string{"Rice"}, f.CropsGrown)
	lat, lng, ok := f.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 10.5, lat)
	assert.Equal(t, 76.2, lng)
}
