// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
)

// ReminderScheduler periodically looks for confirmed bookings approaching
// their appointment time and emails the customer a reminder.
type ReminderScheduler struct {
	bookingRepo  repository.BookingRepository
	customerRepo repository.CustomerRepository
	tailorRepo   repository.TailorRepository
	notifier     ReminderSender
	logger       *log.Logger
	interval     time.Duration
	leadTime     time.Duration
	batchSize    int
}

// ReminderSender is a minimal interface extracted from NotificationService for email
// This keeps the scheduler independent and easy to test
type ReminderSender interface {
	SendEmail(email, subject, message string) error
}

func NewReminderScheduler(
	bookingRepo repository.BookingRepository,
	customerRepo repository.CustomerRepository,
	tailorRepo repository.TailorRepository,
	notifier ReminderSender,
	logger *log.Logger,
	interval time.Duration,
	leadTime time.Duration,
) *ReminderScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if leadTime <= 0 {
		leadTime = 24 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ReminderScheduler{
		bookingRepo:  bookingRepo,
		customerRepo: customerRepo,
		tailorRepo:   tailorRepo,
		notifier:     notifier,
		logger:       logger,
		interval:     interval,
		leadTime:     leadTime,
		batchSize:    100,
	}
}

// Start launches the reminder loop. The returned cancel function stops it.
func (s *ReminderScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ReminderScheduler) runOnce(ctx context.Context) {
	horizon := utils.UTCNow().Add(s.leadTime)

	due, err := s.bookingRepo.ListDueForReminder(ctx, horizon, s.batchSize)
	if err != nil {
		s.logger.Printf("scheduler: list due reminders failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	sent := 0
	for _, booking := range due {
		if ctx.Err() != nil {
			return
		}

		if err := s.remind(ctx, booking.ID, booking.CustomerID, booking.TailorID, booking.ScheduledAt); err != nil {
			s.logger.Printf("scheduler: reminder for booking %d failed: %v", booking.ID, err)
			continue
		}
		sent++
	}

	s.logger.Printf("scheduler: sent %d of %d due reminders", sent, len(due))
}

func (s *ReminderScheduler) remind(ctx context.Context, bookingID, customerID, tailorID uint, scheduledAt time.Time) error {
	customer, err := s.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("customer lookup: %w", err)
	}
	if customer == nil {
		return fmt.Errorf("customer %d not found", customerID)
	}

	shopName := "your tailor"
	if tailor, err := s.tailorRepo.ByID(ctx, tailorID); err == nil && tailor != nil {
		shopName = tailor.ShopName
	}

	subject := "Upcoming appointment reminder"
	message := fmt.Sprintf("Hi %s, this is a reminder of your appointment with %s on %s.",
		customer.FirstName, shopName, scheduledAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST"))

	if err := s.notifier.SendEmail(customer.Email, subject, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	// Marking after the send means a crashed send is retried next tick.
	if err := s.bookingRepo.MarkReminderSent(ctx, bookingID); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	return nil
}
