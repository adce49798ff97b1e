package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

type reviewFixture struct {
	flow      ReviewFlow
	reviews   *sartortesting.FakeReviewRepository
	bookings  *sartortesting.FakeBookingRepository
	tailors   *sartortesting.FakeTailorRepository
	customers *sartortesting.FakeCustomerRepository
	audits    *sartortesting.FakeAuditLogRepository

	tailor   *models.Tailor
	customer *models.Customer
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:   sartortesting.NewFakeReviewRepository(),
		bookings:  sartortesting.NewFakeBookingRepository(),
		tailors:   sartortesting.NewFakeTailorRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
		audits:    sartortesting.NewFakeAuditLogRepository(),
	}
	f.flow = NewReviewFlow(f.reviews, f.bookings, f.tailors, f.customers, f.audits, nil)

	f.tailor = f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	f.customer = f.customers.Add(sartortesting.NewTestCustomer("customer@example.com"))
	return f
}

func (f *reviewFixture) completedBooking() *models.Booking {
	return f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, 1, models.BookingStatusCompleted))
}

func TestCreateReviewUpdatesRatingAggregates(t *testing.T) {
	f := newReviewFixture()

	first := f.completedBooking()
	second := f.completedBooking()

	result, err := f.flow.CreateReview(context.Background(), f.customer.ID, &dto.CreateReviewRequest{
		BookingUUID: first.UUID.String(),
		Rating:      5,
		Comment:     utils.ToPtr("Perfect fit"),
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Rating)
	assert.Equal(t, "Sara Mohammadi", result.CustomerName)

	assert.Equal(t, float64(5), f.tailor.AvgRating)
	assert.Equal(t, 1, f.tailor.ReviewCount)

	_, err = f.flow.CreateReview(context.Background(), f.customer.ID, &dto.CreateReviewRequest{
		BookingUUID: second.UUID.String(),
		Rating:      3,
	}, testMetadata())
	require.NoError(t, err)

	assert.Equal(t, float64(4), f.tailor.AvgRating)
	assert.Equal(t, 2, f.tailor.ReviewCount)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionReviewCreated)
}

func TestCreateReviewRequiresCompletedBooking(t *testing.T) {
	f := newReviewFixture()
	booking := f.bookings.Add(sartortesting.NewTestBooking(f.customer.ID, f.tailor.ID, 1, models.BookingStatusConfirmed))

	_, err := f.flow.CreateReview(context.Background(), f.customer.ID, &dto.CreateReviewRequest{
		BookingUUID: booking.UUID.String(),
		Rating:      4,
	}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingNotCompleted(err))
	assert.Empty(t, f.reviews.Reviews)
}

func TestCreateReviewRequiresBookingOwnership(t *testing.T) {
	f := newReviewFixture()
	booking := f.completedBooking()
	other := f.customers.Add(sartortesting.NewTestCustomer("other@example.com"))

	_, err := f.flow.CreateReview(context.Background(), other.ID, &dto.CreateReviewRequest{
		BookingUUID: booking.UUID.String(),
		Rating:      1,
	}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingNotOwned(err))
}

func TestCreateReviewOncePerBooking(t *testing.T) {
	f := newReviewFixture()
	booking := f.completedBooking()

	request := &dto.CreateReviewRequest{BookingUUID: booking.UUID.String(), Rating: 4}
	_, err := f.flow.CreateReview(context.Background(), f.customer.ID, request, testMetadata())
	require.NoError(t, err)

	_, err = f.flow.CreateReview(context.Background(), f.customer.ID, request, testMetadata())
	require.Error(t, err)
	assert.True(t, IsReviewAlreadyExists(err))
	assert.Len(t, f.reviews.Reviews, 1)
}

func TestCreateReviewUnknownBooking(t *testing.T) {
	f := newReviewFixture()

	_, err := f.flow.CreateReview(context.Background(), f.customer.ID, &dto.CreateReviewRequest{
		BookingUUID: "11111111-2222-4333-8444-555555555555",
		Rating:      4,
	}, testMetadata())
	require.Error(t, err)
	assert.True(t, IsBookingNotFound(err))
}

func TestListTailorReviews(t *testing.T) {
	f := newReviewFixture()
	for i := 0; i < 3; i++ {
		booking := f.completedBooking()
		f.reviews.Add(sartortesting.NewTestReview(f.customer.ID, f.tailor.ID, booking.ID, 4))
	}
	f.tailor.AvgRating = 4
	f.tailor.ReviewCount = 3

	response, err := f.flow.ListTailorReviews(context.Background(), f.tailor.UUID.String(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, response.Reviews, 3)
	assert.Equal(t, float64(4), response.AvgRating)
	assert.Equal(t, int64(3), response.Pagination.Total)
	assert.Equal(t, "Sara Mohammadi", response.Reviews[0].CustomerName)
}

func TestListTailorReviewsUnknownTailor(t *testing.T) {
	f := newReviewFixture()

	_, err := f.flow.ListTailorReviews(context.Background(), "11111111-2222-4333-8444-555555555555", 1, 20)
	require.Error(t, err)
	assert.True(t, IsTailorNotFound(err))
}
