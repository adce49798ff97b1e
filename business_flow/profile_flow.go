// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
)

// DirectoryCacheInvalidator drops cached directory pages after a change that
// affects public listings.
type DirectoryCacheInvalidator interface {
	InvalidateDirectoryCache(ctx context.Context)
}

// ProfileFlow handles account profile management for both roles, including
// the services a tailor offers.
type ProfileFlow interface {
	GetCustomerProfile(ctx context.Context, customerID uint) (*dto.CustomerProfileDTO, error)
	UpdateCustomerProfile(ctx context.Context, customerID uint, request *dto.UpdateCustomerProfileRequest, metadata *ClientMetadata) (*dto.CustomerProfileDTO, error)
	GetTailorProfile(ctx context.Context, tailorID uint) (*dto.TailorProfileDTO, error)
	UpdateTailorProfile(ctx context.Context, tailorID uint, request *dto.UpdateTailorProfileRequest, metadata *ClientMetadata) (*dto.TailorProfileDTO, error)
	CreateService(ctx context.Context, tailorID uint, request *dto.CreateTailorServiceRequest) (*dto.TailorServiceDTO, error)
	UpdateService(ctx context.Context, tailorID uint, serviceUUID string, request *dto.UpdateTailorServiceRequest) (*dto.TailorServiceDTO, error)
	ListOwnServices(ctx context.Context, tailorID uint) ([]dto.TailorServiceDTO, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	customerRepo   repository.CustomerRepository
	tailorRepo     repository.TailorRepository
	serviceRepo    repository.TailorServiceRepository
	auditRepo      repository.AuditLogRepository
	directoryCache DirectoryCacheInvalidator
}

// NewProfileFlow creates a new profile flow instance. A nil directoryCache
// disables directory cache invalidation.
func NewProfileFlow(
	customerRepo repository.CustomerRepository,
	tailorRepo repository.TailorRepository,
	serviceRepo repository.TailorServiceRepository,
	auditRepo repository.AuditLogRepository,
	directoryCache DirectoryCacheInvalidator,
) ProfileFlow {
	return &ProfileFlowImpl{
		customerRepo:   customerRepo,
		tailorRepo:     tailorRepo,
		serviceRepo:    serviceRepo,
		auditRepo:      auditRepo,
		directoryCache: directoryCache,
	}
}

// invalidateDirectory drops cached directory pages so edits show up without
// waiting out the TTL.
func (pf *ProfileFlowImpl) invalidateDirectory(ctx context.Context) {
	if pf.directoryCache != nil {
		pf.directoryCache.InvalidateDirectoryCache(ctx)
	}
}

// GetCustomerProfile returns the authenticated customer's own profile
func (pf *ProfileFlowImpl) GetCustomerProfile(ctx context.Context, customerID uint) (*dto.CustomerProfileDTO, error) {
	customer, err := pf.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Profile lookup failed", err)
	}
	if customer == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	result := toCustomerProfileDTO(*customer)
	return &result, nil
}

// UpdateCustomerProfile applies partial changes to the customer's profile
func (pf *ProfileFlowImpl) UpdateCustomerProfile(ctx context.Context, customerID uint, request *dto.UpdateCustomerProfileRequest, metadata *ClientMetadata) (*dto.CustomerProfileDTO, error) {
	customer, err := pf.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Profile lookup failed", err)
	}
	if customer == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	if request.FirstName != nil {
		customer.FirstName = *request.FirstName
	}
	if request.LastName != nil {
		customer.LastName = *request.LastName
	}
	if request.Phone != nil {
		customer.Phone = request.Phone
	}
	if request.City != nil {
		customer.City = request.City
	}
	if request.Address != nil {
		customer.Address = request.Address
	}
	customer.UpdatedAt = utils.UTCNow()

	if err := pf.customerRepo.Update(ctx, customer); err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Profile update failed", err)
	}

	msg := fmt.Sprintf("Customer %d updated profile", customer.ID)
	_ = pf.logProfileUpdate(ctx, models.RoleCustomer, customer.ID, msg, metadata)

	result := toCustomerProfileDTO(*customer)
	return &result, nil
}

// GetTailorProfile returns the authenticated tailor's own profile
func (pf *ProfileFlowImpl) GetTailorProfile(ctx context.Context, tailorID uint) (*dto.TailorProfileDTO, error) {
	tailor, err := pf.tailorRepo.ByID(ctx, tailorID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Profile lookup failed", err)
	}
	if tailor == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	result := toTailorProfileDTO(*tailor)
	return &result, nil
}

// UpdateTailorProfile applies partial changes to the tailor's profile
func (pf *ProfileFlowImpl) UpdateTailorProfile(ctx context.Context, tailorID uint, request *dto.UpdateTailorProfileRequest, metadata *ClientMetadata) (*dto.TailorProfileDTO, error) {
	tailor, err := pf.tailorRepo.ByID(ctx, tailorID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Profile lookup failed", err)
	}
	if tailor == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	if request.FirstName != nil {
		tailor.FirstName = *request.FirstName
	}
	if request.LastName != nil {
		tailor.LastName = *request.LastName
	}
	if request.ShopName != nil {
		tailor.ShopName = *request.ShopName
	}
	if request.Bio != nil {
		tailor.Bio = request.Bio
	}
	if request.City != nil {
		tailor.City = *request.City
	}
	if request.Address != nil {
		tailor.Address = request.Address
	}
	if request.PostalCode != nil {
		tailor.PostalCode = request.PostalCode
	}
	if request.Phone != nil {
		tailor.Phone = request.Phone
	}
	if request.Specialties != nil {
		tailor.Specialties = request.Specialties
	}
	if request.ExperienceYears != nil {
		tailor.ExperienceYears = *request.ExperienceYears
	}
	tailor.UpdatedAt = utils.UTCNow()

	if err := pf.tailorRepo.Update(ctx, tailor); err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Profile update failed", err)
	}

	msg := fmt.Sprintf("Tailor %d updated profile", tailor.ID)
	_ = pf.logProfileUpdate(ctx, models.RoleTailor, tailor.ID, msg, metadata)

	pf.invalidateDirectory(ctx)

	result := toTailorProfileDTO(*tailor)
	return &result, nil
}

// CreateService adds a service to the tailor's offering
func (pf *ProfileFlowImpl) CreateService(ctx context.Context, tailorID uint, request *dto.CreateTailorServiceRequest) (*dto.TailorServiceDTO, error) {
	service := &models.TailorService{
		UUID:         uuid.New(),
		TailorID:     tailorID,
		Name:         request.Name,
		Description:  request.Description,
		Price:        request.Price,
		DurationDays: request.DurationDays,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := pf.serviceRepo.Save(ctx, service); err != nil {
		return nil, NewBusinessError("SERVICE_CREATION_FAILED", "Service creation failed", err)
	}

	pf.invalidateDirectory(ctx)

	result := ToTailorServiceDTO(*service)
	return &result, nil
}

// UpdateService applies partial changes to a service owned by the tailor
func (pf *ProfileFlowImpl) UpdateService(ctx context.Context, tailorID uint, serviceUUID string, request *dto.UpdateTailorServiceRequest) (*dto.TailorServiceDTO, error) {
	id, err := uuid.Parse(serviceUUID)
	if err != nil {
		return nil, NewBusinessError("SERVICE_NOT_FOUND", "Service not found", ErrServiceNotFound)
	}

	service, err := pf.serviceRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("SERVICE_LOOKUP_FAILED", "Service lookup failed", err)
	}
	if service == nil {
		return nil, NewBusinessError("SERVICE_NOT_FOUND", "Service not found", ErrServiceNotFound)
	}
	if service.TailorID != tailorID {
		return nil, NewBusinessError("SERVICE_ACCESS_DENIED", "Service access denied", ErrServiceNotFound)
	}

	if request.Name != nil {
		service.Name = *request.Name
	}
	if request.Description != nil {
		service.Description = request.Description
	}
	if request.Price != nil {
		service.Price = *request.Price
	}
	if request.DurationDays != nil {
		service.DurationDays = *request.DurationDays
	}
	if request.IsActive != nil {
		service.IsActive = request.IsActive
	}
	service.UpdatedAt = utils.UTCNow()

	if err := pf.serviceRepo.Update(ctx, service); err != nil {
		return nil, NewBusinessError("SERVICE_UPDATE_FAILED", "Service update failed", err)
	}

	pf.invalidateDirectory(ctx)

	result := ToTailorServiceDTO(*service)
	return &result, nil
}

// ListOwnServices returns all services of the tailor, active or not
func (pf *ProfileFlowImpl) ListOwnServices(ctx context.Context, tailorID uint) ([]dto.TailorServiceDTO, error) {
	services, err := pf.serviceRepo.ListByTailor(ctx, tailorID, false)
	if err != nil {
		return nil, NewBusinessError("SERVICE_LIST_FAILED", "Service list failed", err)
	}

	result := make([]dto.TailorServiceDTO, 0, len(services))
	for _, service := range services {
		result = append(result, ToTailorServiceDTO(*service))
	}
	return result, nil
}

func toCustomerProfileDTO(customer models.Customer) dto.CustomerProfileDTO {
	return dto.CustomerProfileDTO{
		UUID:           customer.UUID.String(),
		Email:          customer.Email,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
		Phone:          customer.Phone,
		City:           customer.City,
		Address:        customer.Address,
		ProfilePicture: customer.ProfilePicture,
		CreatedAt:      customer.CreatedAt.Format(time.RFC3339),
	}
}

func toTailorProfileDTO(tailor models.Tailor) dto.TailorProfileDTO {
	return dto.TailorProfileDTO{
		UUID:            tailor.UUID.String(),
		Email:           tailor.Email,
		FirstName:       tailor.FirstName,
		LastName:        tailor.LastName,
		ShopName:        tailor.ShopName,
		Bio:             tailor.Bio,
		City:            tailor.City,
		Address:         tailor.Address,
		PostalCode:      tailor.PostalCode,
		Phone:           tailor.Phone,
		ProfilePicture:  tailor.ProfilePicture,
		Specialties:     tailor.Specialties,
		ExperienceYears: tailor.ExperienceYears,
		AvgRating:       tailor.AvgRating,
		ReviewCount:     tailor.ReviewCount,
		IsVerified:      tailor.IsVerified,
		CreatedAt:       tailor.CreatedAt.Format(time.RFC3339),
	}
}

func (pf *ProfileFlowImpl) logProfileUpdate(ctx context.Context, role string, accountID uint, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:   &accountID,
		AccountRole: &role,
		Action:      models.AuditActionProfileUpdated,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return pf.auditRepo.Save(ctx, audit)
}
