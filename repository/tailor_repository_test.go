package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/models"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

// setupRepoTest provisions an isolated database, skipping when no Postgres
// instance is reachable (TEST_DB_* env vars configure the connection).
func setupRepoTest(t *testing.T) *sartortesting.TestDB {
	t.Helper()

	tdb, err := sartortesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = tdb.TeardownTestDB()
	})
	return tdb
}

func TestTailorRepositoryRoundTrip(t *testing.T) {
	tdb := setupRepoTest(t)
	repo := NewTailorRepository(tdb.DB)
	ctx := context.Background()

	tailor := sartortesting.NewTestTailor("dariush@example.com")
	require.NoError(t, repo.Save(ctx, tailor))
	require.NotZero(t, tailor.ID)

	byEmail, err := repo.ByEmail(ctx, "dariush@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, tailor.UUID, byEmail.UUID)
	assert.Equal(t, []string{"suits", "shirts"}, []string(byEmail.Specialties))

	byUUID, err := repo.ByUUID(ctx, tailor.UUID)
	require.NoError(t, err)
	require.NotNil(t, byUUID)
	assert.Equal(t, tailor.ID, byUUID.ID)

	missing, err := repo.ByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTailorRepositoryUpdateGoogleIDLinksOnce(t *testing.T) {
	tdb := setupRepoTest(t)
	repo := NewTailorRepository(tdb.DB)
	ctx := context.Background()

	tailor := sartortesting.NewTestTailor("dariush@example.com")
	require.NoError(t, repo.Save(ctx, tailor))

	require.NoError(t, repo.UpdateGoogleID(ctx, tailor.ID, "google-sub-1"))

	// The first link wins; a second write never overwrites it.
	require.NoError(t, repo.UpdateGoogleID(ctx, tailor.ID, "google-sub-other"))

	reloaded, err := repo.ByID(ctx, tailor.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.GoogleID)
	assert.Equal(t, "google-sub-1", *reloaded.GoogleID)
}

func TestTailorRepositoryFilterAndRating(t *testing.T) {
	tdb := setupRepoTest(t)
	repo := NewTailorRepository(tdb.DB)
	ctx := context.Background()

	tehran := sartortesting.NewTestTailor("tehran@example.com")
	require.NoError(t, repo.Save(ctx, tehran))

	shiraz := sartortesting.NewTestTailor("shiraz@example.com")
	shiraz.City = "Shiraz"
	require.NoError(t, repo.Save(ctx, shiraz))

	require.NoError(t, repo.UpdateRating(ctx, shiraz.ID, 4.5, 12))

	filter := models.TailorFilter{City: utils.ToPtr("Shiraz"), IsActive: utils.ToPtr(true)}
	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	matched, err := repo.ByFilter(ctx, filter, "avg_rating DESC", 10, 0)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, 4.5, matched[0].AvgRating)
	assert.Equal(t, 12, matched[0].ReviewCount)
}

func TestBookingRepositoryReminderQueries(t *testing.T) {
	tdb := setupRepoTest(t)
	ctx := context.Background()

	tailorRepo := NewTailorRepository(tdb.DB)
	customerRepo := NewCustomerRepository(tdb.DB)
	serviceRepo := NewTailorServiceRepository(tdb.DB)
	bookingRepo := NewBookingRepository(tdb.DB)

	tailor := sartortesting.NewTestTailor("tailor@example.com")
	require.NoError(t, tailorRepo.Save(ctx, tailor))
	customer := sartortesting.NewTestCustomer("customer@example.com")
	require.NoError(t, customerRepo.Save(ctx, customer))
	service := sartortesting.NewTestService(tailor.ID, "Bespoke suit", 12_000_000)
	require.NoError(t, serviceRepo.Save(ctx, service))

	soon := sartortesting.NewTestBooking(customer.ID, tailor.ID, service.ID, models.BookingStatusConfirmed)
	soon.ScheduledAt = utils.UTCNowAdd(6 * time.Hour)
	require.NoError(t, bookingRepo.Save(ctx, soon))

	far := sartortesting.NewTestBooking(customer.ID, tailor.ID, service.ID, models.BookingStatusConfirmed)
	require.NoError(t, bookingRepo.Save(ctx, far))

	horizon := utils.UTCNowAdd(24 * time.Hour)
	due, err := bookingRepo.ListDueForReminder(ctx, horizon, 100)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	require.NoError(t, bookingRepo.MarkReminderSent(ctx, soon.ID))

	due, err = bookingRepo.ListDueForReminder(ctx, horizon, 100)
	require.NoError(t, err)
	assert.Empty(t, due)
}
