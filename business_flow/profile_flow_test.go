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

// recordingDirectoryCache counts cache invalidations
type recordingDirectoryCache struct {
	invalidations int
}

func (c *recordingDirectoryCache) InvalidateDirectoryCache(ctx context.Context) {
	c.invalidations++
}

type profileFixture struct {
	flow      ProfileFlow
	customers *sartortesting.FakeCustomerRepository
	tailors   *sartortesting.FakeTailorRepository
	services  *sartortesting.FakeTailorServiceRepository
	audits    *sartortesting.FakeAuditLogRepository
	cache     *recordingDirectoryCache
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		customers: sartortesting.NewFakeCustomerRepository(),
		tailors:   sartortesting.NewFakeTailorRepository(),
		services:  sartortesting.NewFakeTailorServiceRepository(),
		audits:    sartortesting.NewFakeAuditLogRepository(),
		cache:     &recordingDirectoryCache{},
	}
	f.flow = NewProfileFlow(f.customers, f.tailors, f.services, f.audits, f.cache)
	return f
}

func TestUpdateCustomerProfilePartial(t *testing.T) {
	f := newProfileFixture()
	customer := f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	result, err := f.flow.UpdateCustomerProfile(context.Background(), customer.ID, &dto.UpdateCustomerProfileRequest{
		City:  utils.ToPtr("Isfahan"),
		Phone: utils.ToPtr("+989121234567"),
	}, testMetadata())
	require.NoError(t, err)

	// Untouched fields stay as they were.
	assert.Equal(t, "Sara", result.FirstName)
	require.NotNil(t, result.City)
	assert.Equal(t, "Isfahan", *result.City)
	assert.Contains(t, f.audits.ActionsLogged(), models.AuditActionProfileUpdated)
}

func TestGetProfileUnknownAccount(t *testing.T) {
	f := newProfileFixture()

	_, err := f.flow.GetCustomerProfile(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))

	_, err = f.flow.GetTailorProfile(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))
}

func TestUpdateTailorProfile(t *testing.T) {
	f := newProfileFixture()
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))

	result, err := f.flow.UpdateTailorProfile(context.Background(), tailor.ID, &dto.UpdateTailorProfileRequest{
		ShopName:    utils.ToPtr("Kazemi & Sons"),
		Specialties: []string{"suits", "coats"},
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "Kazemi & Sons", result.ShopName)
	assert.Equal(t, []string{"suits", "coats"}, []string(result.Specialties))
	assert.Equal(t, "Tehran", result.City)
}

func TestCreateAndListOwnServices(t *testing.T) {
	f := newProfileFixture()
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))

	created, err := f.flow.CreateService(context.Background(), tailor.ID, &dto.CreateTailorServiceRequest{
		Name:         "Wedding suit",
		Price:        18_000_000,
		DurationDays: 21,
	})
	require.NoError(t, err)
	assert.True(t, utils.IsTrue(created.IsActive))

	// Deactivated services still show up in the tailor's own list.
	_, err = f.flow.UpdateService(context.Background(), tailor.ID, created.UUID, &dto.UpdateTailorServiceRequest{
		IsActive: utils.ToPtr(false),
	})
	require.NoError(t, err)

	services, err := f.flow.ListOwnServices(context.Background(), tailor.ID)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.False(t, utils.IsTrue(services[0].IsActive))
}

func TestDirectoryVisibleEditsDropCachedPages(t *testing.T) {
	f := newProfileFixture()
	tailor := f.tailors.Add(sartortesting.NewTestTailor("tailor@example.com"))

	_, err := f.flow.UpdateTailorProfile(context.Background(), tailor.ID, &dto.UpdateTailorProfileRequest{
		City: utils.ToPtr("Shiraz"),
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.invalidations)

	created, err := f.flow.CreateService(context.Background(), tailor.ID, &dto.CreateTailorServiceRequest{
		Name:         "Alterations",
		Price:        900_000,
		DurationDays: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.invalidations)

	_, err = f.flow.UpdateService(context.Background(), tailor.ID, created.UUID, &dto.UpdateTailorServiceRequest{
		Price: utils.ToPtr(int64(1_000_000)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.cache.invalidations)
}

func TestFailedEditsKeepCachedPages(t *testing.T) {
	f := newProfileFixture()

	_, err := f.flow.UpdateTailorProfile(context.Background(), 42, &dto.UpdateTailorProfileRequest{
		City: utils.ToPtr("Shiraz"),
	}, testMetadata())
	require.Error(t, err)
	assert.Zero(t, f.cache.invalidations)
}

func TestUpdateServiceOwnershipEnforced(t *testing.T) {
	f := newProfileFixture()
	owner := f.tailors.Add(sartortesting.NewTestTailor("owner@example.com"))
	intruder := f.tailors.Add(sartortesting.NewTestTailor("intruder@example.com"))
	service := f.services.Add(sartortesting.NewTestService(owner.ID, "Bespoke suit", 12_000_000))

	_, err := f.flow.UpdateService(context.Background(), intruder.ID, service.UUID.String(), &dto.UpdateTailorServiceRequest{
		Price: utils.ToPtr(int64(1)),
	})
	require.Error(t, err)
	assert.True(t, IsServiceNotFound(err))
	assert.Equal(t, int64(12_000_000), service.Price)
}
