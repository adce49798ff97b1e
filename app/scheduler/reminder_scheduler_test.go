package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

type captureSender struct {
	mu     sync.Mutex
	emails []string
	err    error
}

func (c *captureSender) SendEmail(email, subject, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.emails = append(c.emails, email)
	return nil
}

func (c *captureSender) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.emails...)
}

func (c *captureSender) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

type schedulerFixture struct {
	scheduler *ReminderScheduler
	bookings  *sartortesting.FakeBookingRepository
	customers *sartortesting.FakeCustomerRepository
	tailors   *sartortesting.FakeTailorRepository
	sender    *captureSender

	tailor   *models.Tailor
	customer *models.Customer
}

func newSchedulerFixture() *schedulerFixture {
	f := &schedulerFixture{
		bookings:  sartortesting.NewFakeBookingRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
		tailors:   sartortesting.NewFakeTailorRepository(),
		sender:    &captureSender{},
	}
	f.scheduler = NewReminderScheduler(f.bookings, f.customers, f.tailors, f.sender, log.New(log.Writer(), "", 0), time.Minute, 24*time.Hour)

	f.tailor = f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	f.customer = f.customers.Add(sartortesting.NewTestCustomer("customer@example.com"))
	return f
}

func (f *schedulerFixture) confirmedBookingIn(offset time.Duration) *models.Booking {
	booking := sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, 1, models.BookingStatusConfirmed)
	booking.ScheduledAt = utils.UTCNow().Add(offset)
	return f.bookings.Add(booking)
}

func TestRunOnceRemindsUpcomingConfirmedBookings(t *testing.T) {
	f := newSchedulerFixture()
	due := f.confirmedBookingIn(6 * time.Hour)
	f.confirmedBookingIn(72 * time.Hour)

	pending := sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, 1, models.BookingStatusPending)
	pending.ScheduledAt = utils.UTCNow().Add(6 * time.Hour)
	f.bookings.Add(pending)

	f.scheduler.runOnce(context.Background())

	emails := f.sender.sent()
	require.Len(t, emails, 1)
	assert.Equal(t, f.customer.Email, emails[0])
	assert.NotNil(t, due.ReminderSentAt)
	assert.Nil(t, pending.ReminderSentAt)
}

func TestRunOnceNeverRemindsTwice(t *testing.T) {
	f := newSchedulerFixture()
	f.confirmedBookingIn(6 * time.Hour)

	f.scheduler.runOnce(context.Background())
	f.scheduler.runOnce(context.Background())

	assert.Len(t, f.sender.sent(), 1)
}

func TestRunOnceRetriesFailedSendNextTick(t *testing.T) {
	f := newSchedulerFixture()
	booking := f.confirmedBookingIn(6 * time.Hour)

	f.sender.setErr(errors.New("smtp unavailable"))
	f.scheduler.runOnce(context.Background())
	assert.Nil(t, booking.ReminderSentAt)

	f.sender.setErr(nil)
	f.scheduler.runOnce(context.Background())
	assert.Len(t, f.sender.sent(), 1)
	assert.NotNil(t, booking.ReminderSentAt)
}

func TestStartStopsOnCancel(t *testing.T) {
	f := newSchedulerFixture()
	f.confirmedBookingIn(6 * time.Hour)

	stop := f.scheduler.Start(context.Background())
	defer stop()

	// The first pass runs synchronously enough to observe shortly after start.
	require.Eventually(t, func() bool {
		return len(f.sender.sent()) == 1
	}, time.Second, 10*time.Millisecond)

	stop()
}
