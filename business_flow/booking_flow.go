// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/app/services"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// allowedTransitions maps a booking status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	models.BookingStatusPending:    {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed:  {models.BookingStatusInProgress, models.BookingStatusCancelled},
	models.BookingStatusInProgress: {models.BookingStatusCompleted, models.BookingStatusCancelled},
}

// BookingFlow handles the booking lifecycle between customers and tailors
type BookingFlow interface {
	CreateBooking(ctx context.Context, customerID uint, request *dto.CreateBookingRequest, metadata *ClientMetadata) (*dto.BookingDTO, error)
	ListCustomerBookings(ctx context.Context, customerID uint, page, pageSize int) (*dto.BookingListResponse, error)
	ListTailorBookings(ctx context.Context, tailorID uint, page, pageSize int) (*dto.BookingListResponse, error)
	UpdateBookingStatus(ctx context.Context, role string, accountID uint, bookingUUID string, request *dto.UpdateBookingStatusRequest, metadata *ClientMetadata) (*dto.BookingDTO, error)
	ExportTailorBookings(ctx context.Context, tailorID uint) (string, []byte, error)
}

// BookingFlowImpl implements the booking business flow
type BookingFlowImpl struct {
	bookingRepo     repository.BookingRepository
	serviceRepo     repository.TailorServiceRepository
	tailorRepo      repository.TailorRepository
	customerRepo    repository.CustomerRepository
	auditRepo       repository.AuditLogRepository
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewBookingFlow creates a new booking flow instance
func NewBookingFlow(
	bookingRepo repository.BookingRepository,
	serviceRepo repository.TailorServiceRepository,
	tailorRepo repository.TailorRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditLogRepository,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) BookingFlow {
	return &BookingFlowImpl{
		bookingRepo:     bookingRepo,
		serviceRepo:     serviceRepo,
		tailorRepo:      tailorRepo,
		customerRepo:    customerRepo,
		auditRepo:       auditRepo,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// CreateBooking places a pending booking for an active service. The service
// price is snapshotted into the booking.
func (bf *BookingFlowImpl) CreateBooking(ctx context.Context, customerID uint, request *dto.CreateBookingRequest, metadata *ClientMetadata) (*dto.BookingDTO, error) {
	if request.ScheduledAt.Before(utils.UTCNow()) {
		return nil, NewBusinessError("BOOKING_VALIDATION_FAILED", "Scheduled time must be in the future", ErrScheduleTimeInPast)
	}

	tailorUUID, err := uuid.Parse(request.TailorUUID)
	if err != nil {
		return nil, NewBusinessError("TAILOR_NOT_FOUND", "Tailor not found", ErrTailorNotFound)
	}
	serviceUUID, err := uuid.Parse(request.ServiceUUID)
	if err != nil {
		return nil, NewBusinessError("SERVICE_NOT_FOUND", "Service not found", ErrServiceNotFound)
	}

	var booking *models.Booking
	var service *models.TailorService

	err = repository.WithTransaction(ctx, bf.db, func(ctx context.Context) error {
		tailor, err := bf.tailorRepo.ByUUID(ctx, tailorUUID)
		if err != nil {
			return err
		}
		if tailor == nil || !utils.IsTrue(tailor.IsActive) {
			return ErrTailorNotFound
		}

		service, err = bf.serviceRepo.ByUUID(ctx, serviceUUID)
		if err != nil {
			return err
		}
		if service == nil || service.TailorID != tailor.ID {
			return ErrServiceNotFound
		}
		if !utils.IsTrue(service.IsActive) {
			return ErrServiceInactive
		}

		booking = &models.Booking{
			UUID:        uuid.New(),
			CustomerID:  customerID,
			TailorID:    tailor.ID,
			ServiceID:   service.ID,
			Status:      models.BookingStatusPending,
			ScheduledAt: request.ScheduledAt,
			Notes:       request.Notes,
			Price:       service.Price,
			CreatedAt:   utils.UTCNow(),
			UpdatedAt:   utils.UTCNow(),
		}

		return bf.bookingRepo.Save(ctx, booking)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Booking creation failed: %s", err.Error())
		_ = bf.logBookingAction(ctx, models.RoleCustomer, customerID, models.AuditActionBookingCreated, errMsg, false, &errMsg, metadata)

		switch {
		case IsTailorNotFound(err), IsServiceNotFound(err), IsServiceInactive(err):
			return nil, NewBusinessError("BOOKING_TARGET_NOT_FOUND", "Booking target not found", err)
		default:
			return nil, NewBusinessError("BOOKING_CREATION_FAILED", "Booking creation failed", err)
		}
	}

	msg := fmt.Sprintf("Booking %s created for tailor %d", booking.UUID, booking.TailorID)
	_ = bf.logBookingAction(ctx, models.RoleCustomer, customerID, models.AuditActionBookingCreated, msg, true, nil, metadata)

	bf.notifyBookingCreated(ctx, booking, service.Name)

	result := ToBookingDTO(*booking, service.Name)
	return &result, nil
}

// ListCustomerBookings returns a page of the customer's bookings
func (bf *BookingFlowImpl) ListCustomerBookings(ctx context.Context, customerID uint, page, pageSize int) (*dto.BookingListResponse, error) {
	page, pageSize, err := normalizePaging(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	filter := models.BookingFilter{CustomerID: &customerID}
	total, err := bf.bookingRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	bookings, err := bf.bookingRepo.ListByCustomer(ctx, customerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	return bf.buildListResponse(ctx, bookings, page, pageSize, total)
}

// ListTailorBookings returns a page of the tailor's received bookings
func (bf *BookingFlowImpl) ListTailorBookings(ctx context.Context, tailorID uint, page, pageSize int) (*dto.BookingListResponse, error) {
	page, pageSize, err := normalizePaging(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	filter := models.BookingFilter{TailorID: &tailorID}
	total, err := bf.bookingRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	bookings, err := bf.bookingRepo.ListByTailor(ctx, tailorID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("BOOKING_LIST_FAILED", "Booking list failed", err)
	}

	return bf.buildListResponse(ctx, bookings, page, pageSize, total)
}

// UpdateBookingStatus moves a booking along its lifecycle. Tailors drive the
// booking forward; customers may only cancel bookings that have not started.
func (bf *BookingFlowImpl) UpdateBookingStatus(ctx context.Context, role string, accountID uint, bookingUUID string, request *dto.UpdateBookingStatusRequest, metadata *ClientMetadata) (*dto.BookingDTO, error) {
	id, err := uuid.Parse(bookingUUID)
	if err != nil {
		return nil, NewBusinessError("BOOKING_NOT_FOUND", "Booking not found", ErrBookingNotFound)
	}

	var booking *models.Booking
	var serviceName string

	err = repository.WithTransaction(ctx, bf.db, func(ctx context.Context) error {
		var err error
		booking, err = bf.bookingRepo.ByUUID(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		if err := authorizeTransition(role, accountID, booking, request.Status); err != nil {
			return err
		}

		if booking.IsTerminal() {
			return ErrBookingAlreadyTerminal
		}
		if !transitionAllowed(booking.Status, request.Status) {
			return ErrInvalidStatusTransition
		}

		booking.Status = request.Status
		booking.UpdatedAt = utils.UTCNow()
		switch request.Status {
		case models.BookingStatusCompleted:
			booking.CompletedAt = utils.UTCNowPtr()
		case models.BookingStatusCancelled:
			booking.CancelledAt = utils.UTCNowPtr()
		}

		if err := bf.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}

		if service, err := bf.serviceRepo.ByID(ctx, booking.ServiceID); err == nil && service != nil {
			serviceName = service.Name
		}

		return nil
	})

	action := models.AuditActionBookingUpdated
	if request.Status == models.BookingStatusCancelled {
		action = models.AuditActionBookingCancelled
	}

	if err != nil {
		errMsg := fmt.Sprintf("Booking status update failed: %s", err.Error())
		_ = bf.logBookingAction(ctx, role, accountID, action, errMsg, false, &errMsg, metadata)

		switch {
		case IsBookingNotFound(err):
			return nil, NewBusinessError("BOOKING_NOT_FOUND", "Booking not found", err)
		case IsBookingAccessDenied(err):
			return nil, NewBusinessError("BOOKING_ACCESS_DENIED", "Booking access denied", err)
		case IsInvalidStatusTransition(err), IsBookingAlreadyTerminal(err):
			return nil, NewBusinessError("INVALID_STATUS_TRANSITION", "Invalid booking status transition", err)
		default:
			return nil, NewBusinessError("BOOKING_UPDATE_FAILED", "Booking update failed", err)
		}
	}

	msg := fmt.Sprintf("Booking %s moved to %s", booking.UUID, booking.Status)
	_ = bf.logBookingAction(ctx, role, accountID, action, msg, true, nil, metadata)

	bf.notifyStatusChange(ctx, booking)

	result := ToBookingDTO(*booking, serviceName)
	return &result, nil
}

// ExportTailorBookings renders all bookings of a tailor as an xlsx workbook
func (bf *BookingFlowImpl) ExportTailorBookings(ctx context.Context, tailorID uint) (string, []byte, error) {
	bookings, err := bf.bookingRepo.ListByTailor(ctx, tailorID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("BOOKING_EXPORT_FAILED", "Failed to fetch bookings for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)

	header := []string{"uuid", "status", "customer", "service", "price", "scheduled_at", "created_at", "completed_at", "cancelled_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, booking := range bookings {
		customerName := ""
		if customer, err := bf.customerRepo.ByID(ctx, booking.CustomerID); err == nil && customer != nil {
			customerName = customer.FullName()
		}
		serviceName := ""
		if service, err := bf.serviceRepo.ByID(ctx, booking.ServiceID); err == nil && service != nil {
			serviceName = service.Name
		}
		completedAt := ""
		if booking.CompletedAt != nil {
			completedAt = booking.CompletedAt.UTC().Format(time.RFC3339)
		}
		cancelledAt := ""
		if booking.CancelledAt != nil {
			cancelledAt = booking.CancelledAt.UTC().Format(time.RFC3339)
		}

		record := []string{
			booking.UUID.String(),
			booking.Status,
			customerName,
			serviceName,
			strconv.FormatInt(booking.Price, 10),
			booking.ScheduledAt.UTC().Format(time.RFC3339),
			booking.CreatedAt.UTC().Format(time.RFC3339),
			completedAt,
			cancelledAt,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", utils.UTCNow().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// Private helper methods

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func authorizeTransition(role string, accountID uint, booking *models.Booking, target string) error {
	switch role {
	case models.RoleTailor:
		if booking.TailorID != accountID {
			return ErrBookingAccessDenied
		}
		return nil
	case models.RoleCustomer:
		if booking.CustomerID != accountID {
			return ErrBookingAccessDenied
		}
		// Customers may only cancel, and only before work starts.
		if target != models.BookingStatusCancelled {
			return ErrBookingAccessDenied
		}
		if booking.Status == models.BookingStatusInProgress {
			return ErrInvalidStatusTransition
		}
		return nil
	default:
		return ErrBookingAccessDenied
	}
}

func normalizePaging(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

func (bf *BookingFlowImpl) buildListResponse(ctx context.Context, bookings []*models.Booking, page, pageSize int, total int64) (*dto.BookingListResponse, error) {
	serviceNames := make(map[uint]string)

	response := &dto.BookingListResponse{
		Bookings: make([]dto.BookingDTO, 0, len(bookings)),
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}

	for _, booking := range bookings {
		name, ok := serviceNames[booking.ServiceID]
		if !ok {
			if service, err := bf.serviceRepo.ByID(ctx, booking.ServiceID); err == nil && service != nil {
				name = service.Name
			}
			serviceNames[booking.ServiceID] = name
		}
		response.Bookings = append(response.Bookings, ToBookingDTO(*booking, name))
	}

	return response, nil
}

func (bf *BookingFlowImpl) notifyStatusChange(ctx context.Context, booking *models.Booking) {
	customer, err := bf.customerRepo.ByID(ctx, booking.CustomerID)
	if err != nil || customer == nil {
		return
	}

	subject := fmt.Sprintf("Booking %s update", booking.UUID)
	message := fmt.Sprintf("Your booking is now %s.", booking.Status)
	// Notification failures never fail the booking update.
	_ = bf.notificationSvc.SendEmail(customer.Email, subject, message)
	if customer.Phone != nil && *customer.Phone != "" {
		_ = bf.notificationSvc.SendSMS(*customer.Phone, message)
	}
}

// notifyBookingCreated tells the tailor a new booking arrived. Notification
// failures never fail the booking creation.
func (bf *BookingFlowImpl) notifyBookingCreated(ctx context.Context, booking *models.Booking, serviceName string) {
	tailor, err := bf.tailorRepo.ByID(ctx, booking.TailorID)
	if err != nil || tailor == nil {
		return
	}

	subject := fmt.Sprintf("New booking %s", booking.UUID)
	message := fmt.Sprintf("You received a booking for %s scheduled at %s.", serviceName, booking.ScheduledAt.UTC().Format(time.RFC3339))
	_ = bf.notificationSvc.SendEmail(tailor.Email, subject, message)
	if tailor.Phone != nil && *tailor.Phone != "" {
		_ = bf.notificationSvc.SendSMS(*tailor.Phone, message)
	}
}

func (bf *BookingFlowImpl) logBookingAction(ctx context.Context, role string, accountID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    &accountID,
		AccountRole:  &role,
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

	return bf.auditRepo.Save(ctx, audit)
}
