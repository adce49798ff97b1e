package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

type directoryFixture struct {
	flow     TailorDirectoryFlow
	tailors  *sartortesting.FakeTailorRepository
	services *sartortesting.FakeTailorServiceRepository
}

func newDirectoryFixture() *directoryFixture {
	f := &directoryFixture{
		tailors:  sartortesting.NewFakeTailorRepository(),
		services: sartortesting.NewFakeTailorServiceRepository(),
	}
	// nil redis client: caching disabled
	f.flow = NewTailorDirectoryFlow(f.tailors, f.services, nil)
	return f
}

func TestDirectorySearchRanksByRating(t *testing.T) {
	f := newDirectoryFixture()

	low := sartortesting.NewTestTailor("low@example.com")
	low.AvgRating = 3.2
	f.tailors.Add(low)

	high := sartortesting.NewTestTailor("high@example.com")
	high.AvgRating = 4.9
	f.tailors.Add(high)

	response, err := f.flow.Search(context.Background(), &dto.TailorSearchRequest{})
	require.NoError(t, err)
	require.Len(t, response.Tailors, 2)
	assert.Equal(t, high.UUID.String(), response.Tailors[0].UUID)
	assert.Equal(t, int64(2), response.Pagination.Total)
}

func TestDirectorySearchFilters(t *testing.T) {
	f := newDirectoryFixture()

	tehran := sartortesting.NewTestTailor("tehran@example.com")
	f.tailors.Add(tehran)

	shiraz := sartortesting.NewTestTailor("shiraz@example.com")
	shiraz.City = "Shiraz"
	shiraz.Specialties = []string{"dresses"}
	f.tailors.Add(shiraz)

	inactive := sartortesting.NewTestTailor("gone@example.com")
	inactive.IsActive = utils.ToPtr(false)
	f.tailors.Add(inactive)

	response, err := f.flow.Search(context.Background(), &dto.TailorSearchRequest{City: "Shiraz"})
	require.NoError(t, err)
	require.Len(t, response.Tailors, 1)
	assert.Equal(t, shiraz.UUID.String(), response.Tailors[0].UUID)

	response, err = f.flow.Search(context.Background(), &dto.TailorSearchRequest{Specialty: "suits"})
	require.NoError(t, err)
	// Inactive tailors never show up, whatever their specialties.
	require.Len(t, response.Tailors, 1)
	assert.Equal(t, tehran.UUID.String(), response.Tailors[0].UUID)
}

func TestDirectorySearchClampsPaging(t *testing.T) {
	f := newDirectoryFixture()
	f.tailors.Add(sartortesting.NewTestTailor("one@example.com"))

	response, err := f.flow.Search(context.Background(), &dto.TailorSearchRequest{Page: -3, PageSize: 10_000})
	require.NoError(t, err)
	assert.Equal(t, 1, response.Pagination.Page)
	assert.Equal(t, utils.MaxPageSize, response.Pagination.PageSize)
}

func TestGetTailorIncludesActiveServices(t *testing.T) {
	f := newDirectoryFixture()
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))
	f.services.Add(sartortesting.NewTestService(tailor.ID, "Bespoke suit", 12_000_000))

	retired := sartortesting.NewTestService(tailor.ID, "Retired service", 1_000_000)
	retired.IsActive = utils.ToPtr(false)
	f.services.Add(retired)

	detail, err := f.flow.GetTailor(context.Background(), tailor.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, "Kazemi Atelier", detail.ShopName)
	require.Len(t, detail.Services, 1)
	assert.Equal(t, "Bespoke suit", detail.Services[0].Name)
}

func TestGetTailorHidesInactiveProfiles(t *testing.T) {
	f := newDirectoryFixture()
	tailor := sartortesting.NewTestTailor("gone@example.com")
	tailor.IsActive = utils.ToPtr(false)
	f.tailors.Add(tailor)

	_, err := f.flow.GetTailor(context.Background(), tailor.UUID.String())
	require.Error(t, err)
	assert.True(t, IsTailorNotFound(err))

	_, err = f.flow.GetTailor(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, IsTailorNotFound(err))
}
