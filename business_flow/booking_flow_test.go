package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

// recordingNotifier captures outgoing notifications
type recordingNotifier struct {
	emails []string
	sms    []string
}

func (n *recordingNotifier) SendSMS(mobile, message string) error {
	n.sms = append(n.sms, mobile)
	return nil
}

func (n *recordingNotifier) SendEmail(email, subject, message string) error {
	n.emails = append(n.emails, email)
	return nil
}

type bookingFixture struct {
	flow      BookingFlow
	bookings  *sartortesting.FakeBookingRepository
	services  *sartortesting.FakeTailorServiceRepository
	tailors   *sartortesting.FakeTailorRepository
	customers *sartortesting.FakeCustomerRepository
	audits    *sartortesting.FakeAuditLogRepository
	notifier  *recordingNotifier

	tailor   *models.Tailor
	customer *models.Customer
	service  *models.TailorService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  sartortesting.NewFakeBookingRepository(),
		services:  sartortesting.NewFakeTailorServiceRepository(),
		tailors:   sartortesting.NewFakeTailorRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
		audits:    sartortesting.NewFakeAuditLogRepository(),
		notifier:  &recordingNotifier{},
	}
	f.flow = NewBookingFlow(f.bookings, f.services, f.tailors, f.customers, f.audits, f.notifier, nil)

	f.tailor = f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	f.customer = f.customers.Add(sartortesting.NewTestCustomer("customer@example.com"))
	f.service = f.services.Add(sartortesting.NewTestService(f.tailor.ID, "Bespoke suit", 12_000_000))
	return f
}

func (f *bookingFixture) createRequest() *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		TailorUUID:  f.tailor.UUID.String(),
		ServiceUUID: f.service.UUID.String(),
		ScheduledAt: utils.UTCNow().Add(72 * time.Hour),
	}
}

func TestCreateBookingSnapshotsServicePrice(t *testing.T) {
	f := newBookingFixture()

	result, err := f.flow.CreateBooking(context.Background(), f.customer.ID, f.createRequest(), testMetadata())
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, result.Status)
	assert.Equal(t, int64(12_000_000), result.Price)
	assert.Equal(t, "Bespoke suit", result.ServiceName)

	require.Len(t, f.bookings.Bookings, 1)
	stored := f.bookings.Bookings[0]
	assert.Equal(t, f.service.Price, stored.Price)

	// A later price change never touches existing bookings.
	f.service.Price = 20_000_000
	assert.Equal(t, int64(12_000_000), stored.Price)
}

func TestCreateBookingNotifiesTailor(t *testing.T) {
	f := newBookingFixture()
	f.tailor.Phone = utils.ToPtr("+989121234567")

	_, err := f.flow.CreateBooking(context.Background(), f.customer.ID, f.createRequest(), testMetadata())
	require.NoError(t, err)

	assert.Equal(t, []string{f.tailor.Email}, f.notifier.emails)
	assert.Equal(t, []string{"+989121234567"}, f.notifier.sms)
}

func TestCreateBookingWithoutTailorPhoneSkipsSMS(t *testing.T) {
	f := newBookingFixture()

	_, err := f.flow.CreateBooking(context.Background(), f.customer.ID, f.createRequest(), testMetadata())
	require.NoError(t, err)

	assert.Equal(t, []string{f.tailor.Email}, f.notifier.emails)
	assert.Empty(t, f.notifier.sms)
}

func TestCreateBookingRejectsPastSchedule(t *testing.T) {
	f := newBookingFixture()

	request := f.createRequest()
	request.ScheduledAt = utils.UTCNow().Add(-time.Hour)

	_, err := f.flow.CreateBooking(context.Background(), f.customer.ID, request, testMetadata())
	require.Error(t, err)
	assert.True(t, IsScheduleTimeInPast(err))
	assert.Empty(t, f.bookings.Bookings)
}

func TestCreateBookingRejectsInactiveService(t *testing.T) {
	f := newBookingFixture()
	f.service.IsActive = utils.ToPtr(false)

	_, err := f.flow.CreateBooking(context.Background(), f.customer.ID, f.createRequest(), testMetadata())
	require.Error(t, err)
	assert.True(t, IsServiceInactive(err))
}

func TestCreateBookingRejectsForeignService(t *testing.T) {
	f := newBookingFixture()
	other := f.tailors.Add(sartortesting.NewTestTailor("other@example.com"))
	foreign := f.services.Add(sartortesting.NewTestService(other.ID, "Alterations", 900_000))

	request := f.createRequest()
	request.ServiceUUID = foreign.UUID.String()

	_, err := f.flow.CreateBooking(context.Background(), f.customer.ID, request, testMetadata())
	require.Error(t, err)
	assert.True(t, IsServiceNotFound(err))
}

func TestUpdateBookingStatusTailorLifecycle(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	for _, next := range []string{
		models.BookingStatusConfirmed,
		models.BookingStatusInProgress,
		models.BookingStatusCompleted,
	} {
		result, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleTailor, f.tailor.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: next}, testMetadata())
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, result.Status)
	}

	assert.NotNil(t, booking.CompletedAt)
	// The customer got an email per status change.
	assert.Len(t, f.notifier.emails, 3)
}

func TestUpdateBookingStatusSendsSMSWhenCustomerHasPhone(t *testing.T) {
	f := newBookingFixture()
	f.customer.Phone = utils.ToPtr("+989125550000")
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleTailor, f.tailor.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusConfirmed}, testMetadata())
	require.NoError(t, err)

	assert.Equal(t, []string{f.customer.Email}, f.notifier.emails)
	assert.Equal(t, []string{"+989125550000"}, f.notifier.sms)
}

func TestUpdateBookingStatusRejectsSkippedStage(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleTailor, f.tailor.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusCompleted}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsInvalidStatusTransition(err))
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestUpdateBookingStatusTerminalIsFinal(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusCancelled))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleTailor, f.tailor.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusConfirmed}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingAlreadyTerminal(err))
}

func TestUpdateBookingStatusCustomerMayOnlyCancel(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleCustomer, f.customer.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusConfirmed}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingAccessDenied(err))

	result, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleCustomer, f.customer.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusCancelled}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, result.Status)
	assert.NotNil(t, booking.CancelledAt)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionBookingCancelled)
}

func TestUpdateBookingStatusCustomerCannotCancelInProgress(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusInProgress))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleCustomer, f.customer.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusCancelled}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsInvalidStatusTransition(err))
}

func TestUpdateBookingStatusStrangerIsDenied(t *testing.T) {
	f := newBookingFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))
	stranger := f.tailors.Add(sartortesting.NewTestTailor("stranger@example.com"))

	_, err := f.flow.UpdateBookingStatus(context.Background(), models.RoleTailor, stranger.ID, booking.UUID.String(), &dto.UpdateBookingStatusRequest{Status: models.BookingStatusConfirmed}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingAccessDenied(err))
}

func TestListCustomerBookingsPaginates(t *testing.T) {
	f := newBookingFixture()
	for i := 0; i < 25; i++ {
		f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))
	}
	otherCustomer := f.customers.Add(sartortesting.NewTestCustomer("other@example.com"))
	f.bookings.Add(sartortesting.NewTestBooking(otherCustomer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	page1, err := f.flow.ListCustomerBookings(context.Background(), f.customer.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page1.Bookings, 20)
	assert.Equal(t, int64(25), page1.Pagination.Total)
	assert.Equal(t, "Bespoke suit", page1.Bookings[0].ServiceName)

	page2, err := f.flow.ListCustomerBookings(context.Background(), f.customer.ID, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page2.Bookings, 5)
}

func TestListBookingsRejectsBadPaging(t *testing.T) {
	f := newBookingFixture()

	_, err := f.flow.ListCustomerBookings(context.Background(), f.customer.ID, -1, 20)
	assert.Error(t, err)

	_, err = f.flow.ListTailorBookings(context.Background(), f.tailor.ID, 1, utils.MaxPageSize+1)
	assert.Error(t, err)
}

func TestExportTailorBookings(t *testing.T) {
	f := newBookingFixture()
	f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusCompleted))
	f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, f.service.ID, models.BookingStatusPending))

	filename, data, err := f.flow.ExportTailorBookings(context.Background(), f.tailor.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")
	assert.NotEmpty(t, data)
	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
