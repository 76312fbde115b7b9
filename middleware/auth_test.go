package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"cargo-delivery/models/user"
	"cargo-delivery/services/token"
)

func testApp(tokens *token.Service) *fiber.App {
	app := fiber.New()
	app.Get("/any", RequireAuth(tokens), func(c *fiber.Ctx) error {
		claims := ClaimsFromContext(c)
		return c.JSON(fiber.Map{"username": claims.Username})
	})
	app.Get("/driver-only", RequireRole(tokens, user.RoleDriver), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func issue(t *testing.T, tokens *token.Service, username string, role user.Role) string {
	t.Helper()
	signed, err := tokens.Issue(&user.User{
		Uuid:     "uuid-" + username,
		Username: username,
		Role:     role,
	})
	require.NoError(t, err)
	return signed
}

func TestGuardRejectsMissingToken(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuardRejectsMalformedHeader(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuardRejectsWrongRole(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)
	signed := issue(t, tokens, "alice", user.RoleDistributor)

	req := httptest.NewRequest(http.MethodGet, "/driver-only", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGuardAdmitsMatchingRole(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)
	signed := issue(t, tokens, "bob", user.RoleDriver)

	req := httptest.NewRequest(http.MethodGet, "/driver-only", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardAcceptsCookieFallback(t *testing.T) {
	tokens := token.New([]byte("test-secret"), time.Hour)
	app := testApp(tokens)
	signed := issue(t, tokens, "alice", user.RoleDistributor)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: signed})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
