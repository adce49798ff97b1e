package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/services"
	businessflow "github.com/sartorhq/sartor/business_flow"
	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

type middlewareFixture struct {
	app       *fiber.App
	tokens    services.TokenService
	tailors   *sartortesting.FakeTailorRepository
	customers *sartortesting.FakeCustomerRepository
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()

	tokens, err := services.NewTokenService(time.Hour, "sartor", "sartor-api", false, "", "", "test-secret-key-at-least-32-chars-long")
	require.NoError(t, err)

	f := &middlewareFixture{
		tokens:    tokens,
		tailors:   sartortesting.NewFakeTailorRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
	}

	flow := businessflow.NewAuthFlow(
		f.tailors,
		f.customers,
		sartortesting.NewFakeAuditLogRepository(),
		tokens,
		nil,
		nil,
	)
	authMiddleware := NewAuthMiddleware(tokens, flow)

	f.app = fiber.New()
	protected := f.app.Group("", authMiddleware.Authenticate())
	protected.Get("/whoami", func(c fiber.Ctx) error {
		role, _ := GetAccountRoleFromContext(c)
		return c.SendString(role)
	})
	protected.Get("/tailor-only", authMiddleware.RequireRole(models.RoleTailor), func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return f
}

func (f *middlewareFixture) get(t *testing.T, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthenticateDerivesRoleFromStorage(t *testing.T) {
	f := newMiddlewareFixture(t)
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))

	token, err := f.tokens.GenerateToken(tailor.UUID.String())
	require.NoError(t, err)

	resp := f.get(t, "/whoami", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTailor, string(body))
}

func TestAuthenticateRejectsMissingOrMalformedHeader(t *testing.T) {
	f := newMiddlewareFixture(t)

	resp := f.get(t, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.get(t, "/whoami", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.get(t, "/whoami", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateRejectsDeactivatedAccount(t *testing.T) {
	f := newMiddlewareFixture(t)
	customer := f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	token, err := f.tokens.GenerateToken(customer.UUID.String())
	require.NoError(t, err)

	resp := f.get(t, "/whoami", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Deactivation takes effect on the very next request, token unchanged.
	customer.IsActive = utils.ToPtr(false)
	resp = f.get(t, "/whoami", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	f := newMiddlewareFixture(t)
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	customer := f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	tailorToken, err := f.tokens.GenerateToken(tailor.UUID.String())
	require.NoError(t, err)
	customerToken, err := f.tokens.GenerateToken(customer.UUID.String())
	require.NoError(t, err)

	resp := f.get(t, "/tailor-only", "Bearer "+tailorToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/tailor-only", "Bearer "+customerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
