package businessflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/app/services"
	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

// stubTokenService issues predictable tokens without signing anything
type stubTokenService struct {
	issued []string
	err    error
}

func (s *stubTokenService) GenerateToken(accountUUID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, accountUUID)
	return "token-for-" + accountUUID, nil
}

func (s *stubTokenService) ValidateToken(token string) (*services.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

// stubVerifier returns a canned identity for any raw token
type stubVerifier struct {
	identity *services.GoogleIdentity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, rawIDToken string) (*services.GoogleIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type authFixture struct {
	flow      AuthFlow
	tailors   *sartortesting.FakeTailorRepository
	customers *sartortesting.FakeCustomerRepository
	audits    *sartortesting.FakeAuditLogRepository
	tokens    *stubTokenService
	verifier  *stubVerifier
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		tailors:   sartortesting.NewFakeTailorRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
		audits:    sartortesting.NewFakeAuditLogRepository(),
		tokens:    &stubTokenService{},
		verifier:  &stubVerifier{},
	}
	f.flow = NewAuthFlow(f.tailors, f.customers, f.audits, f.tokens, f.verifier, nil)
	return f
}

func testMetadata() *ClientMetadata {
	return NewClientMetadata("192.168.1.10", "test-agent/1.0")
}

func TestLoginResolvesTailorBeforeCustomer(t *testing.T) {
	f := newAuthFixture()

	email := "shared@example.com"
	tailor := f.tailors.Add(sartortesting.NewTestTailor(email))
	f.customers.Add(sartortesting.NewTestCustomer(email))

	resp, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    email,
		Password: sartortesting.DefaultTestPassword,
	}, testMetadata())

	require.NoError(t, err)
	assert.Equal(t, models.RoleTailor, resp.Account.Role)
	assert.Equal(t, tailor.UUID.String(), resp.Account.UUID)
	assert.Equal(t, "token-for-"+tailor.UUID.String(), resp.Session.AccessToken)
	assert.Equal(t, "Bearer", resp.Session.TokenType)
	assert.Equal(t, utils.AccessTokenTTLSeconds, resp.Session.ExpiresIn)
}

func TestLoginFallsThroughToCustomerOnTailorPasswordMismatch(t *testing.T) {
	f := newAuthFixture()

	email := "shared@example.com"
	tailor := sartortesting.NewTestTailor(email)
	tailor.PasswordHash = utils.ToPtr(sartortesting.HashTestPassword("TailorOnlySecret"))
	f.tailors.Add(tailor)
	customer := f.customers.Add(sartortesting.NewTestCustomer(email))

	resp, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    email,
		Password: sartortesting.DefaultTestPassword,
	}, testMetadata())

	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, resp.Account.Role)
	assert.Equal(t, customer.UUID.String(), resp.Account.UUID)
}

func TestLoginNormalizesEmail(t *testing.T) {
	f := newAuthFixture()
	f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	resp, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "  Sara@Example.COM ",
		Password: sartortesting.DefaultTestPassword,
	}, testMetadata())

	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, resp.Account.Role)
}

func TestLoginFailureIsUniform(t *testing.T) {
	f := newAuthFixture()

	active := sartortesting.NewTestCustomer("known@example.com")
	f.customers.Add(active)

	inactive := sartortesting.NewTestCustomer("inactive@example.com")
	inactive.IsActive = utils.ToPtr(false)
	f.customers.Add(inactive)

	googleOnly := sartortesting.NewTestGoogleCustomer("federated@example.com", "google-sub-1")
	f.customers.Add(googleOnly)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", sartortesting.DefaultTestPassword},
		{"wrong password", "known@example.com", "WrongPass123"},
		{"inactive account", "inactive@example.com", sartortesting.DefaultTestPassword},
		{"passwordless account", "federated@example.com", sartortesting.DefaultTestPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
				Email:    tc.email,
				Password: tc.password,
			}, testMetadata())

			require.Error(t, err)
			var bizErr *BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "INVALID_CREDENTIALS", bizErr.Code)
			assert.Equal(t, "Invalid email or password", bizErr.Message)
		})
	}

	assert.Empty(t, f.tokens.issued)
}

func TestLoginRecordsAuditTrail(t *testing.T) {
	f := newAuthFixture()
	f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "sara@example.com",
		Password: sartortesting.DefaultTestPassword,
	}, testMetadata())
	require.NoError(t, err)

	_, err = f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "sara@example.com",
		Password: "WrongPass123",
	}, testMetadata())
	require.Error(t, err)

	assert.Equal(t, []string{
		models.AuditActionLoginSuccess,
		models.AuditActionLoginFailed,
	}, f.audits.ActionsLogged())
}

func TestGoogleAuthExistingLinkedAccount(t *testing.T) {
	f := newAuthFixture()
	customer := f.customers.Add(sartortesting.NewTestGoogleCustomer("sara@example.com", "google-sub-1"))
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "sara@example.com",
		Name:          "Sara Mohammadi",
		EmailVerified: true,
	}

	result, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())

	require.NoError(t, err)
	require.NotNil(t, result.Login)
	assert.Nil(t, result.Registration)
	assert.Equal(t, customer.UUID.String(), result.Login.Account.UUID)
}

func TestGoogleAuthLinksOnFirstUse(t *testing.T) {
	f := newAuthFixture()
	customer := f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))
	require.Nil(t, customer.GoogleID)

	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "sara@example.com",
		Name:          "Sara Mohammadi",
		EmailVerified: true,
	}

	result, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())

	require.NoError(t, err)
	require.NotNil(t, result.Login)
	require.NotNil(t, customer.GoogleID)
	assert.Equal(t, "google-sub-1", *customer.GoogleID)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionIdentityLinked)
}

func TestGoogleAuthRejectsConflictingSubject(t *testing.T) {
	f := newAuthFixture()
	customer := f.customers.Add(sartortesting.NewTestGoogleCustomer("sara@example.com", "google-sub-1"))

	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-other",
		Email:         "sara@example.com",
		EmailVerified: true,
	}

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "IDENTITY_VERIFICATION_FAILED", bizErr.Code)
	assert.True(t, IsIdentityMismatch(err))
	assert.Equal(t, "google-sub-1", *customer.GoogleID)
	assert.Empty(t, f.tokens.issued)
}

func TestGoogleAuthInactiveAccountFailsVerification(t *testing.T) {
	f := newAuthFixture()
	customer := sartortesting.NewTestGoogleCustomer("sara@example.com", "google-sub-1")
	customer.IsActive = utils.ToPtr(false)
	f.customers.Add(customer)

	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "sara@example.com",
		EmailVerified: true,
	}

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "IDENTITY_VERIFICATION_FAILED", bizErr.Code)
}

func TestGoogleAuthBackfillsMissingProfilePicture(t *testing.T) {
	f := newAuthFixture()
	customer := f.customers.Add(sartortesting.NewTestGoogleCustomer("sara@example.com", "google-sub-1"))

	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "sara@example.com",
		Picture:       "https://lh3.example.com/photo.jpg",
		EmailVerified: true,
	}

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())
	require.NoError(t, err)
	require.NotNil(t, customer.ProfilePicture)
	assert.Equal(t, "https://lh3.example.com/photo.jpg", *customer.ProfilePicture)
}

func TestGoogleAuthKeepsExistingProfilePicture(t *testing.T) {
	f := newAuthFixture()
	customer := sartortesting.NewTestGoogleCustomer("sara@example.com", "google-sub-1")
	customer.ProfilePicture = utils.ToPtr("https://cdn.example.com/existing.jpg")
	f.customers.Add(customer)

	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "sara@example.com",
		Picture:       "https://lh3.example.com/new.jpg",
		EmailVerified: true,
	}

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/existing.jpg", *customer.ProfilePicture)
}

func TestGoogleAuthUnknownEmailTailorRoleRequiresRegistration(t *testing.T) {
	f := newAuthFixture()
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-2",
		Email:         "newtailor@example.com",
		Name:          "Dariush Kazemi",
		Picture:       "https://lh3.example.com/dk.jpg",
		EmailVerified: true,
	}

	result, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{
		IDToken: "raw",
		Role:    models.RoleTailor,
	}, testMetadata())

	require.NoError(t, err)
	assert.Nil(t, result.Login)
	require.NotNil(t, result.Registration)
	assert.True(t, result.Registration.RequiresRegistration)
	assert.Equal(t, models.RoleTailor, result.Registration.Role)
	assert.Equal(t, "newtailor@example.com", result.Registration.Email)
	assert.Equal(t, "google-sub-2", result.Registration.GoogleID)

	// No account was created and no token issued.
	assert.Empty(t, f.tailors.Tailors)
	assert.Empty(t, f.tokens.issued)
}

func TestGoogleAuthUnknownEmailCustomerRoleProvisionsAccount(t *testing.T) {
	f := newAuthFixture()
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-3",
		Email:         "newcustomer@example.com",
		Name:          "Leila Ahmadi Tehrani",
		Picture:       "https://lh3.example.com/la.jpg",
		EmailVerified: true,
	}

	result, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{
		IDToken: "raw",
		Role:    models.RoleCustomer,
	}, testMetadata())

	require.NoError(t, err)
	require.NotNil(t, result.Login)
	assert.Equal(t, models.RoleCustomer, result.Login.Account.Role)

	require.Len(t, f.customers.Customers, 1)
	created := f.customers.Customers[0]
	assert.Equal(t, "newcustomer@example.com", created.Email)
	assert.Equal(t, "Leila", created.FirstName)
	assert.Equal(t, "Ahmadi Tehrani", created.LastName)
	require.NotNil(t, created.GoogleID)
	assert.Equal(t, "google-sub-3", *created.GoogleID)
	require.NotNil(t, created.ProfilePicture)
	assert.Nil(t, created.PasswordHash)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionAccountProvisioned)
}

func TestGoogleAuthUnknownEmailWithoutRoleIsRefused(t *testing.T) {
	f := newAuthFixture()
	f.verifier.identity = &services.GoogleIdentity{
		Subject:       "google-sub-4",
		Email:         "nobody@example.com",
		EmailVerified: true,
	}

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "raw"}, testMetadata())

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", bizErr.Code)
	assert.Equal(t, "User not found. Please register.", bizErr.Message)
	assert.Empty(t, f.customers.Customers)
	assert.Empty(t, f.tailors.Tailors)
}

func TestGoogleAuthVerifierFailure(t *testing.T) {
	f := newAuthFixture()
	f.verifier.err = fmt.Errorf("token signature invalid")

	_, err := f.flow.GoogleAuth(context.Background(), &dto.GoogleAuthRequest{IDToken: "garbage"}, testMetadata())

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "IDENTITY_VERIFICATION_FAILED", bizErr.Code)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionGoogleLoginFailed)
}

func TestResolveAccountDerivesRoleFromStorage(t *testing.T) {
	f := newAuthFixture()
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	customer := f.customers.Add(sartortesting.NewTestCustomer("customer@example.com"))

	resolved, err := f.flow.ResolveAccount(context.Background(), tailor.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RoleTailor, resolved.Role)
	assert.Equal(t, tailor.ID, resolved.ID())

	resolved, err = f.flow.ResolveAccount(context.Background(), customer.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, resolved.Role)
	assert.Equal(t, customer.ID, resolved.ID())
}

func TestResolveAccountUnknownOrInactive(t *testing.T) {
	f := newAuthFixture()

	inactive := sartortesting.NewTestCustomer("inactive@example.com")
	inactive.IsActive = utils.ToPtr(false)
	f.customers.Add(inactive)

	_, err := f.flow.ResolveAccount(context.Background(), "not-a-uuid")
	assert.True(t, IsAccountNotFound(err))

	_, err = f.flow.ResolveAccount(context.Background(), "0e9a4a8e-7e2e-4e93-a7a8-16cb6fdfdfdf")
	assert.True(t, IsAccountNotFound(err))

	_, err = f.flow.ResolveAccount(context.Background(), inactive.UUID.String())
	assert.True(t, IsAccountInactive(err))
}
