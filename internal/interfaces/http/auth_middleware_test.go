package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Sastreria-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Sastreria-api/pkg/jwt"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "sastre@sastreria.test"
	testIssuer    = "sastreria-api-test"
	testExpMin    = 60
)

type fakeStaffChecker struct {
	staff map[string]bool
	err   error
}

func (f fakeStaffChecker) IsStaff(_ context.Context, userID string) (bool, error) {
	return f.staff[userID], f.err
}

// buildStaffApp: AuthMiddleware + RequireStaff + handler dummy que devuelve 200.
func buildStaffApp(checker fakeStaffChecker) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireStaff(checker, logger.Nop()),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "user_id": apphttp.GetUserID(c)})
		},
	)
	return app
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeUserID(t *testing.T) {
	app := buildStaffApp(fakeStaffChecker{staff: map[string]bool{testUserID: true}})
	resp := doGet(t, app, "/protected", bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	app := buildStaffApp(fakeStaffChecker{})
	resp := doGet(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildStaffApp(fakeStaffChecker{})
	for _, h := range []string{"Bearer token.invalido.aqui", "Basic abc", "Bearer "} {
		resp := doGet(t, app, "/protected", h)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, h)
		resp.Body.Close()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireStaff
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireStaff_ClienteBloqueado(t *testing.T) {
	app := buildStaffApp(fakeStaffChecker{staff: map[string]bool{}})
	resp := doGet(t, app, "/protected", bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireStaff_FalloDeResolucion_Retorna503(t *testing.T) {
	app := buildStaffApp(fakeStaffChecker{err: errors.New("db caída")})
	resp := doGet(t, app, "/protected", bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
