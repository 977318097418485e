package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freshxpress/dashboard/internal/files"
	"github.com/freshxpress/dashboard/internal/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const raviID = "f3a9c2d1-7b44-4e0f-9a51-2c1d8e6b0a11"

// run executes the root command with fresh flag values and returns stdout
// and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	serverURL, tokenDir, verbose = "", "", false
	loginEmail, listPage, verifiedFirst, assumeYes = "", 1, false, false

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func seededBackend(t *testing.T) (*stub.Server, string) {
	t.Helper()
	backend := stub.New([]byte("test-secret"), zaptest.NewLogger(t))
	require.NoError(t, stub.DefaultSeed().Apply(backend))
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func signedIn(t *testing.T, backend *stub.Server) string {
	t.Helper()
	dir := t.TempDir()
	token, err := backend.IssueToken("admin@freshxpress.in")
	require.NoError(t, err)
	require.NoError(t, files.NewTokenFile(dir).SetToken(token))
	return dir
}

func storedToken(t *testing.T, dir string) string {
	t.Helper()
	tok, err := files.NewTokenFile(dir).Token()
	require.NoError(t, err)
	return tok
}

func TestLogin_StoresToken(t *testing.T) {
	var loginBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			b, _ := io.ReadAll(r.Body)
			loginBody = string(b)
			fmt.Fprint(w, `{"token":"abc123"}`)
		default:
			http.Error(w, `{"message":"Invalid or expired token"}`, http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()

	out, _, err := run(t, "admin@freshxpress.in\nfreshxpress\n", "login", "--server", srv.URL, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Signing in...")
	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, loginBody, `"email":"admin@freshxpress.in"`)
	assert.Equal(t, "abc123", storedToken(t, dir))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// The backend rejects the token: it is removed and the user is sent to login.
	_, _, err = run(t, "", "list", "--server", srv.URL, "--token-dir", dir)
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Empty(t, storedToken(t, dir))
	_, statErr := os.Stat(filepath.Join(dir, "token"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogin_RejectedShowsServerMessage(t *testing.T) {
	_, base := seededBackend(t)
	dir := t.TempDir()

	_, stderr, err := run(t, "wrong\n", "login", "-e", "admin@freshxpress.in", "--server", base, "--token-dir", dir)
	assert.ErrorIs(t, err, errShown)
	assert.Equal(t, "Invalid email or password\n", stderr)
	assert.Empty(t, storedToken(t, dir))
}

func TestLogin_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, stderr, err := run(t, "pw\n", "login", "-e", "a@b.c", "--server", srv.URL, "--token-dir", t.TempDir())
	assert.ErrorIs(t, err, errShown)
	assert.Equal(t, "An error occurred\n", stderr)
}

func TestLogout(t *testing.T) {
	backend, base := seededBackend(t)
	dir := signedIn(t, backend)

	out, _, err := run(t, "", "logout", "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.Empty(t, storedToken(t, dir))
}

func TestList_WithoutTokenSendsNothing(t *testing.T) {
	backend, base := seededBackend(t)

	_, _, err := run(t, "", "list", "--server", base, "--token-dir", t.TempDir())
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Zero(t, backend.Requests())
}

func TestList_VerifiedFirst(t *testing.T) {
	backend, base := seededBackend(t)
	dir := signedIn(t, backend)

	out, _, err := run(t, "", "list", "--verified-first", "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 1")
	assert.Less(t, strings.Index(out, "Lakshmi Devi"), strings.Index(out, "Ravi Kumar"))

	out, _, err = run(t, "", "list", "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Ravi Kumar"), strings.Index(out, "Lakshmi Devi"))
}

func TestShow(t *testing.T) {
	backend, base := seededBackend(t)
	dir := signedIn(t, backend)

	out, _, err := run(t, "", "show", raviID, "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ravi Kumar")
	assert.Contains(t, out, "Not Verified ✗")

	_, stderr, err := run(t, "", "show", "does-not-exist", "--server", base, "--token-dir", dir)
	assert.ErrorIs(t, err, errShown)
	assert.Equal(t, "Farmer not found\n", stderr)
}

func TestVerify_Cancelled(t *testing.T) {
	backend, base := seededBackend(t)
	dir := signedIn(t, backend)

	out, _, err := run(t, "n\n", "verify", raviID, "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to verify this farmer? [y/N]: ")
	assert.Contains(t, out, "Cancelled.")

	f, _ := backend.Farmer(raviID)
	assert.False(t, f.IsVerify)
}

func TestVerify_Confirmed(t *testing.T) {
	backend, base := seededBackend(t)
	dir := signedIn(t, backend)

	out, _, err := run(t, "y\n", "verify", raviID, "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Updating...")
	assert.Contains(t, out, "Verification Status: Verified ✓")

	f, _ := backend.Farmer(raviID)
	assert.True(t, f.IsVerify)

	out, _, err = run(t, "", "verify", raviID, "--yes", "--server", base, "--token-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Verification Status: Not Verified ✗")
	f, _ = backend.Farmer(raviID)
	assert.False(t, f.IsVerify)
}

func TestVerify_FailedUpdateLeavesStatus(t *testing.T) {
	backend, base := seededBackend(t)
	backend.SetFailUpdates(true)
	dir := signedIn(t, backend)

	out, _, err := run(t, "y\n", "verify", raviID, "--server", base, "--token-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not update verification status")
	assert.NotContains(t, out, "Verification Status:")

	f, _ := backend.Farmer(raviID)
	assert.False(t, f.IsVerify)
	assert.NotEmpty(t, storedToken(t, dir), "a failed update keeps the session")
}
