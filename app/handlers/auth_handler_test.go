package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/app/services"
	businessflow "github.com/sartorhq/sartor/business_flow"
	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
)

type fakeTokenService struct{}

func (fakeTokenService) GenerateToken(accountUUID string) (string, error) {
	return "token-for-" + accountUUID, nil
}

func (fakeTokenService) ValidateToken(token string) (*services.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

type fakeVerifier struct {
	identity *services.GoogleIdentity
}

func (v *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*services.GoogleIdentity, error) {
	if v.identity == nil {
		return nil, errors.New("invalid token")
	}
	return v.identity, nil
}

type authHandlerFixture struct {
	app       *fiber.App
	tailors   *sartortesting.FakeTailorRepository
	customers *sartortesting.FakeCustomerRepository
	verifier  *fakeVerifier
}

func newAuthHandlerFixture() *authHandlerFixture {
	f := &authHandlerFixture{
		tailors:   sartortesting.NewFakeTailorRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
		verifier:  &fakeVerifier{},
	}

	flow := businessflow.NewAuthFlow(
		f.tailors,
		f.customers,
		sartortesting.NewFakeAuditLogRepository(),
		fakeTokenService{},
		f.verifier,
		nil,
	)
	handler := NewAuthHandler(flow)

	f.app = fiber.New()
	f.app.Post("/api/v1/auth/login", handler.Login)
	f.app.Post("/api/v1/auth/google", handler.GoogleAuth)
	return f
}

func (f *authHandlerFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

// testAPIResponse mirrors dto.APIResponse with a typed error for assertions
type testAPIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeResponse(t *testing.T, resp *http.Response) testAPIResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var apiResp testAPIResponse
	require.NoError(t, json.Unmarshal(body, &apiResp))
	return apiResp
}

func TestLoginEndpointSuccess(t *testing.T) {
	f := newAuthHandlerFixture()
	f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	resp := f.postJSON(t, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "sara@example.com",
		Password: sartortesting.DefaultTestPassword,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.True(t, apiResp.Success)
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	f := newAuthHandlerFixture()
	f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	resp := f.postJSON(t, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "sara@example.com",
		Password: "WrongPass123",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.False(t, apiResp.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", apiResp.Error.Code)
	assert.Equal(t, "Invalid email or password", apiResp.Message)
}

func TestLoginEndpointValidation(t *testing.T) {
	f := newAuthHandlerFixture()

	resp := f.postJSON(t, "/api/v1/auth/login", dto.LoginRequest{Email: "not-an-email", Password: "short"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", apiResp.Error.Code)
}

func TestGoogleEndpointRegistrationRequired(t *testing.T) {
	f := newAuthHandlerFixture()
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "newtailor@example.com",
		Name:          "Dariush Kazemi",
		EmailVerified: true,
	}

	resp := f.postJSON(t, "/api/v1/auth/google", dto.GoogleAuthRequest{
		IDToken: "raw",
		Role:    models.RoleTailor,
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.True(t, apiResp.Success)
	assert.Equal(t, "Registration required", apiResp.Message)
}

func TestGoogleEndpointUnknownIdentityWithoutRole(t *testing.T) {
	f := newAuthHandlerFixture()
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "nobody@example.com",
		EmailVerified: true,
	}

	resp := f.postJSON(t, "/api/v1/auth/google", dto.GoogleAuthRequest{IDToken: "raw"})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.Equal(t, "USER_NOT_FOUND", apiResp.Error.Code)
	assert.Equal(t, "User not found. Please register.", apiResp.Message)
}

func TestGoogleEndpointBadToken(t *testing.T) {
	f := newAuthHandlerFixture()

	resp := f.postJSON(t, "/api/v1/auth/google", dto.GoogleAuthRequest{IDToken: "garbage"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	apiResp := decodeResponse(t, resp)
	assert.Equal(t, "IDENTITY_VERIFICATION_FAILED", apiResp.Error.Code)
}
