// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/app/services"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RolePrecedence fixes the lookup order across the two account collections.
// An email existing in both always resolves to the tailor identity first.
var RolePrecedence = []string{models.RoleTailor, models.RoleCustomer}

// ResolvedAccount is the unified view over the two account collections.
// Exactly one of Tailor or Customer is set, matching Role.
type ResolvedAccount struct {
	Role     string
	Tailor   *models.Tailor
	Customer *models.Customer
}

// ID returns the database id of the underlying account
func (ra *ResolvedAccount) ID() uint {
	if ra.Role == models.RoleTailor {
		return ra.Tailor.ID
	}
	return ra.Customer.ID
}

// UUID returns the public UUID of the underlying account
func (ra *ResolvedAccount) UUID() uuid.UUID {
	if ra.Role == models.RoleTailor {
		return ra.Tailor.UUID
	}
	return ra.Customer.UUID
}

// GoogleID returns the linked provider subject id, if any
func (ra *ResolvedAccount) GoogleID() *string {
	if ra.Role == models.RoleTailor {
		return ra.Tailor.GoogleID
	}
	return ra.Customer.GoogleID
}

// IsActive reports whether the underlying account is active
func (ra *ResolvedAccount) IsActive() bool {
	if ra.Role == models.RoleTailor {
		return utils.IsTrue(ra.Tailor.IsActive)
	}
	return utils.IsTrue(ra.Customer.IsActive)
}

// AccountDTO converts the resolved account to its authentication payload
func (ra *ResolvedAccount) AccountDTO() dto.AuthAccountDTO {
	if ra.Role == models.RoleTailor {
		return ToAuthTailorDTO(*ra.Tailor)
	}
	return ToAuthCustomerDTO(*ra.Customer)
}

// GoogleAuthResult is the outcome of a federated login attempt. Exactly one
// of Login or Registration is set: Registration carries the pre-fill payload
// for a tailor identity that has no account yet.
type GoogleAuthResult struct {
	Login        *dto.LoginResponse
	Registration *dto.RegistrationRequiredDTO
}

// AuthFlow resolves identities across the two account collections and issues tokens
type AuthFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	GoogleAuth(ctx context.Context, request *dto.GoogleAuthRequest, metadata *ClientMetadata) (*GoogleAuthResult, error)
	ResolveAccount(ctx context.Context, accountUUID string) (*ResolvedAccount, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	tailorRepo       repository.TailorRepository
	customerRepo     repository.CustomerRepository
	auditRepo        repository.AuditLogRepository
	tokenService     services.TokenService
	identityVerifier services.IdentityVerifier
	db               *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	tailorRepo repository.TailorRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	identityVerifier services.IdentityVerifier,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		tailorRepo:       tailorRepo,
		customerRepo:     customerRepo,
		auditRepo:        auditRepo,
		tokenService:     tokenService,
		identityVerifier: identityVerifier,
		db:               db,
	}
}

// Login authenticates a caller with email and password. The lookup walks
// RolePrecedence and resolves to the first account whose stored hash
// verifies; the failure message never reveals which stage failed.
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if request.Email == "" || request.Password == "" {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", ErrInvalidCredentials)
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))

	var account *ResolvedAccount
	for _, role := range RolePrecedence {
		candidate, err := af.findByEmail(ctx, role, email)
		if err != nil {
			return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
		}
		if candidate == nil {
			continue
		}
		if !af.passwordMatches(candidate, request.Password) {
			continue
		}
		account = candidate
		break
	}

	if account == nil {
		errMsg := "Credential login failed: no account resolved"
		_ = af.logAuthAttempt(ctx, nil, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrInvalidCredentials)
	}

	if !account.IsActive() {
		errMsg := fmt.Sprintf("Credential login rejected: account %d is inactive", account.ID())
		_ = af.logAuthAttempt(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrAccountInactive)
	}

	accessToken, err := af.tokenService.GenerateToken(account.UUID().String())
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("Account logged in successfully: %s %d", account.Role, account.ID())
	_ = af.logAuthAttempt(ctx, account, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return &dto.LoginResponse{
		Account: account.AccountDTO(),
		Session: ToSessionDTO(accessToken),
	}, nil
}

// GoogleAuth authenticates or provisions a caller from a verified identity
// token. Lookup order matches credential login. When no account exists, a
// declared tailor role yields a registration pre-fill payload, a declared
// customer role provisions an account, and no declared role is refused.
func (af *AuthFlowImpl) GoogleAuth(ctx context.Context, request *dto.GoogleAuthRequest, metadata *ClientMetadata) (*GoogleAuthResult, error) {
	identity, err := af.identityVerifier.Verify(ctx, request.IDToken)
	if err != nil {
		errMsg := fmt.Sprintf("Identity verification failed: %s", err.Error())
		_ = af.logAuthAttempt(ctx, nil, models.AuditActionGoogleLoginFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("IDENTITY_VERIFICATION_FAILED", "Identity verification failed", ErrInvalidCredentials)
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))

	var account *ResolvedAccount

	result, err := af.WithGoogleAuthTransaction(ctx, func(ctx context.Context) (*GoogleAuthResult, error) {
		var err error
		for _, role := range RolePrecedence {
			account, err = af.findByEmail(ctx, role, email)
			if err != nil {
				return nil, err
			}
			if account != nil {
				break
			}
		}

		if account == nil {
			return af.handleUnknownIdentity(ctx, request.Role, email, identity, metadata)
		}

		if !account.IsActive() {
			return nil, ErrAccountInactive
		}

		// Link-on-first-use: an existing linkage is never overwritten, and a
		// conflicting subject id fails closed.
		if linked := account.GoogleID(); linked != nil {
			if *linked != identity.Subject {
				return nil, ErrIdentityMismatch
			}
		} else {
			if err := af.linkIdentity(ctx, account, identity.Subject, metadata); err != nil {
				return nil, err
			}
		}

		if account.Role == models.RoleCustomer && identity.Picture != "" {
			if pic := account.Customer.ProfilePicture; pic == nil || *pic == "" {
				if err := af.customerRepo.UpdateProfilePicture(ctx, account.Customer.ID, identity.Picture); err != nil {
					return nil, err
				}
				account.Customer.ProfilePicture = &identity.Picture
			}
		}

		accessToken, err := af.tokenService.GenerateToken(account.UUID().String())
		if err != nil {
			return nil, err
		}

		return &GoogleAuthResult{
			Login: &dto.LoginResponse{
				Account: account.AccountDTO(),
				Session: ToSessionDTO(accessToken),
			},
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Federated login failed: %s", err.Error())
		_ = af.logAuthAttempt(ctx, account, models.AuditActionGoogleLoginFailed, errMsg, false, &errMsg, metadata)

		switch {
		case IsAccountNotFound(err):
			return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "User not found. Please register.", err)
		case IsIdentityMismatch(err), IsAccountInactive(err):
			return nil, NewBusinessError("IDENTITY_VERIFICATION_FAILED", "Identity verification failed", err)
		default:
			return nil, NewBusinessError("GOOGLE_LOGIN_FAILED", "Google login failed", err)
		}
	}

	if result.Login != nil {
		msg := fmt.Sprintf("Federated login succeeded for %s", result.Login.Account.Role)
		_ = af.logAuthAttempt(ctx, account, models.AuditActionGoogleLoginSuccess, msg, true, nil, metadata)
	}

	return result, nil
}

// ResolveAccount re-derives the current role and account for a token subject.
// Used by the authorization middleware: tokens carry identity only, so the
// role is looked up in storage on every authenticated request.
func (af *AuthFlowImpl) ResolveAccount(ctx context.Context, accountUUID string) (*ResolvedAccount, error) {
	id, err := uuid.Parse(accountUUID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	for _, role := range RolePrecedence {
		account, err := af.findByUUID(ctx, role, id)
		if err != nil {
			return nil, err
		}
		if account != nil {
			if !account.IsActive() {
				return nil, ErrAccountInactive
			}
			return account, nil
		}
	}

	return nil, ErrAccountNotFound
}

// Private helper methods

func (af *AuthFlowImpl) findByEmail(ctx context.Context, role, email string) (*ResolvedAccount, error) {
	switch role {
	case models.RoleTailor:
		tailor, err := af.tailorRepo.ByEmail(ctx, email)
		if err != nil || tailor == nil {
			return nil, err
		}
		return &ResolvedAccount{Role: models.RoleTailor, Tailor: tailor}, nil
	case models.RoleCustomer:
		customer, err := af.customerRepo.ByEmail(ctx, email)
		if err != nil || customer == nil {
			return nil, err
		}
		return &ResolvedAccount{Role: models.RoleCustomer, Customer: customer}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (af *AuthFlowImpl) findByUUID(ctx context.Context, role string, id uuid.UUID) (*ResolvedAccount, error) {
	switch role {
	case models.RoleTailor:
		tailor, err := af.tailorRepo.ByUUID(ctx, id)
		if err != nil || tailor == nil {
			return nil, err
		}
		return &ResolvedAccount{Role: models.RoleTailor, Tailor: tailor}, nil
	case models.RoleCustomer:
		customer, err := af.customerRepo.ByUUID(ctx, id)
		if err != nil || customer == nil {
			return nil, err
		}
		return &ResolvedAccount{Role: models.RoleCustomer, Customer: customer}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (af *AuthFlowImpl) passwordMatches(account *ResolvedAccount, password string) bool {
	var hash *string
	if account.Role == models.RoleTailor {
		hash = account.Tailor.PasswordHash
	} else {
		hash = account.Customer.PasswordHash
	}
	if hash == nil || *hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}

func (af *AuthFlowImpl) linkIdentity(ctx context.Context, account *ResolvedAccount, subject string, metadata *ClientMetadata) error {
	var err error
	if account.Role == models.RoleTailor {
		err = af.tailorRepo.UpdateGoogleID(ctx, account.Tailor.ID, subject)
		if err == nil {
			account.Tailor.GoogleID = &subject
		}
	} else {
		err = af.customerRepo.UpdateGoogleID(ctx, account.Customer.ID, subject)
		if err == nil {
			account.Customer.GoogleID = &subject
		}
	}
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Linked provider identity to %s %d", account.Role, account.ID())
	_ = af.logAuthAttempt(ctx, account, models.AuditActionIdentityLinked, msg, true, nil, metadata)
	return nil
}

// handleUnknownIdentity decides what happens when a verified identity has no
// account in either collection.
func (af *AuthFlowImpl) handleUnknownIdentity(ctx context.Context, declaredRole, email string, identity *services.GoogleIdentity, metadata *ClientMetadata) (*GoogleAuthResult, error) {
	switch declaredRole {
	case models.RoleTailor:
		// Tailor accounts need shop profile data the identity assertion does
		// not carry, so no account is created here.
		return &GoogleAuthResult{
			Registration: &dto.RegistrationRequiredDTO{
				RequiresRegistration: true,
				Role:                 models.RoleTailor,
				Email:                email,
				Name:                 identity.Name,
				GoogleID:             identity.Subject,
				Picture:              identity.Picture,
			},
		}, nil

	case models.RoleCustomer:
		customer, err := af.provisionCustomer(ctx, email, identity, metadata)
		if err != nil {
			return nil, err
		}

		accessToken, err := af.tokenService.GenerateToken(customer.UUID.String())
		if err != nil {
			return nil, err
		}

		return &GoogleAuthResult{
			Login: &dto.LoginResponse{
				Account: ToAuthCustomerDTO(*customer),
				Session: ToSessionDTO(accessToken),
			},
		}, nil

	default:
		// A bare identity assertion with no account and no declared role is
		// refused rather than guessing intent.
		return nil, ErrAccountNotFound
	}
}

func (af *AuthFlowImpl) provisionCustomer(ctx context.Context, email string, identity *services.GoogleIdentity, metadata *ClientMetadata) (*models.Customer, error) {
	firstName, lastName := splitName(identity.Name)

	customer := &models.Customer{
		UUID:      uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		GoogleID:  &identity.Subject,
		IsActive:  utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if identity.Picture != "" {
		customer.ProfilePicture = &identity.Picture
	}

	if err := af.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Provisioned customer account %d from federated identity", customer.ID)
	account := &ResolvedAccount{Role: models.RoleCustomer, Customer: customer}
	_ = af.logAuthAttempt(ctx, account, models.AuditActionAccountProvisioned, msg, true, nil, metadata)

	return customer, nil
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (af *AuthFlowImpl) logAuthAttempt(ctx context.Context, account *ResolvedAccount, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	var accountRole *string
	if account != nil {
		accountID = utils.ToPtr(account.ID())
		accountRole = utils.ToPtr(account.Role)
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountID,
		AccountRole:  accountRole,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return af.auditRepo.Save(ctx, audit)
}

func (af *AuthFlowImpl) WithGoogleAuthTransaction(ctx context.Context, fn func(context.Context) (*GoogleAuthResult, error)) (*GoogleAuthResult, error) {
	var result *GoogleAuthResult
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
