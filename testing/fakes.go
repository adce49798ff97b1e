package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/utils"
)

// The fake repositories below hold entities in memory and implement the
// repository interfaces far enough for the business flows. They are not safe
// for concurrent use.

// FakeTailorRepository is an in-memory TailorRepository
type FakeTailorRepository struct {
	Tailors []*models.Tailor
	nextID  uint
}

func NewFakeTailorRepository() *FakeTailorRepository {
	return &FakeTailorRepository{}
}

func (r *FakeTailorRepository) Add(t *models.Tailor) *models.Tailor {
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	r.Tailors = append(r.Tailors, t)
	return t
}

func (r *FakeTailorRepository) ByID(ctx context.Context, id uint) (*models.Tailor, error) {
	for _, t := range r.Tailors {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorRepository) ByEmail(ctx context.Context, email string) (*models.Tailor, error) {
	for _, t := range r.Tailors {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.Tailor, error) {
	for _, t := range r.Tailors {
		if t.UUID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorRepository) ByGoogleID(ctx context.Context, googleID string) (*models.Tailor, error) {
	for _, t := range r.Tailors {
		if t.GoogleID != nil && *t.GoogleID == googleID {
			return t, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorRepository) ByFilter(ctx context.Context, filter models.TailorFilter, orderBy string, limit, offset int) ([]*models.Tailor, error) {
	matched := r.match(filter)

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].AvgRating != matched[j].AvgRating {
			return matched[i].AvgRating > matched[j].AvgRating
		}
		return matched[i].ID > matched[j].ID
	})

	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *FakeTailorRepository) Count(ctx context.Context, filter models.TailorFilter) (int64, error) {
	return int64(len(r.match(filter))), nil
}

func (r *FakeTailorRepository) match(filter models.TailorFilter) []*models.Tailor {
	var matched []*models.Tailor
	for _, t := range r.Tailors {
		if filter.IsActive != nil && utils.IsTrue(t.IsActive) != *filter.IsActive {
			continue
		}
		if filter.IsVerified != nil && utils.IsTrue(t.IsVerified) != *filter.IsVerified {
			continue
		}
		if filter.City != nil && t.City != *filter.City {
			continue
		}
		if filter.Email != nil && t.Email != *filter.Email {
			continue
		}
		if filter.UUID != nil && t.UUID != *filter.UUID {
			continue
		}
		if filter.Specialty != nil && !containsString(t.Specialties, *filter.Specialty) {
			continue
		}
		if filter.Query != nil {
			q := strings.ToLower(*filter.Query)
			if !strings.Contains(strings.ToLower(t.ShopName), q) &&
				!strings.Contains(strings.ToLower(t.FullName()), q) {
				continue
			}
		}
		matched = append(matched, t)
	}
	return matched
}

func (r *FakeTailorRepository) Save(ctx context.Context, entity *models.Tailor) error {
	r.Add(entity)
	return nil
}

func (r *FakeTailorRepository) Update(ctx context.Context, entity *models.Tailor) error {
	for i, t := range r.Tailors {
		if t.ID == entity.ID {
			r.Tailors[i] = entity
			return nil
		}
	}
	return fmt.Errorf("tailor %d not found", entity.ID)
}

func (r *FakeTailorRepository) UpdateGoogleID(ctx context.Context, tailorID uint, googleID string) error {
	for _, t := range r.Tailors {
		if t.ID == tailorID && t.GoogleID == nil {
			t.GoogleID = utils.ToPtr(googleID)
		}
	}
	return nil
}

func (r *FakeTailorRepository) UpdateRating(ctx context.Context, tailorID uint, avgRating float64, reviewCount int) error {
	for _, t := range r.Tailors {
		if t.ID == tailorID {
			t.AvgRating = avgRating
			t.ReviewCount = reviewCount
		}
	}
	return nil
}

// FakeCustomerRepository is an in-memory CustomerRepository
type FakeCustomerRepository struct {
	Customers []*models.Customer
	nextID    uint
}

func NewFakeCustomerRepository() *FakeCustomerRepository {
	return &FakeCustomerRepository{}
}

func (r *FakeCustomerRepository) Add(c *models.Customer) *models.Customer {
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if c.ID > r.nextID {
		r.nextID = c.ID
	}
	r.Customers = append(r.Customers, c)
	return c
}

func (r *FakeCustomerRepository) ByID(ctx context.Context, id uint) (*models.Customer, error) {
	for _, c := range r.Customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *FakeCustomerRepository) ByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, c := range r.Customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *FakeCustomerRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	for _, c := range r.Customers {
		if c.UUID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *FakeCustomerRepository) ByGoogleID(ctx context.Context, googleID string) (*models.Customer, error) {
	for _, c := range r.Customers {
		if c.GoogleID != nil && *c.GoogleID == googleID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *FakeCustomerRepository) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	var matched []*models.Customer
	for _, c := range r.Customers {
		if filter.UUID != nil && c.UUID != *filter.UUID {
			continue
		}
		if filter.Email != nil && c.Email != *filter.Email {
			continue
		}
		if filter.IsActive != nil && utils.IsTrue(c.IsActive) != *filter.IsActive {
			continue
		}
		matched = append(matched, c)
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *FakeCustomerRepository) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *FakeCustomerRepository) Save(ctx context.Context, entity *models.Customer) error {
	r.Add(entity)
	return nil
}

func (r *FakeCustomerRepository) Update(ctx context.Context, entity *models.Customer) error {
	for i, c := range r.Customers {
		if c.ID == entity.ID {
			r.Customers[i] = entity
			return nil
		}
	}
	return fmt.Errorf("customer %d not found", entity.ID)
}

func (r *FakeCustomerRepository) UpdateGoogleID(ctx context.Context, customerID uint, googleID string) error {
	for _, c := range r.Customers {
		if c.ID == customerID && c.GoogleID == nil {
			c.GoogleID = utils.ToPtr(googleID)
		}
	}
	return nil
}

func (r *FakeCustomerRepository) UpdateProfilePicture(ctx context.Context, customerID uint, pictureURL string) error {
	for _, c := range r.Customers {
		if c.ID == customerID {
			c.ProfilePicture = utils.ToPtr(pictureURL)
		}
	}
	return nil
}

// FakeTailorServiceRepository is an in-memory TailorServiceRepository
type FakeTailorServiceRepository struct {
	Services []*models.TailorService
	nextID   uint
}

func NewFakeTailorServiceRepository() *FakeTailorServiceRepository {
	return &FakeTailorServiceRepository{}
}

func (r *FakeTailorServiceRepository) Add(s *models.TailorService) *models.TailorService {
	if s.ID == 0 {
		r.nextID++
		s.ID = r.nextID
	} else if s.ID > r.nextID {
		r.nextID = s.ID
	}
	r.Services = append(r.Services, s)
	return s
}

func (r *FakeTailorServiceRepository) ByID(ctx context.Context, id uint) (*models.TailorService, error) {
	for _, s := range r.Services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorServiceRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.TailorService, error) {
	for _, s := range r.Services {
		if s.UUID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *FakeTailorServiceRepository) ListByTailor(ctx context.Context, tailorID uint, activeOnly bool) ([]*models.TailorService, error) {
	var matched []*models.TailorService
	for _, s := range r.Services {
		if s.TailorID != tailorID {
			continue
		}
		if activeOnly && !utils.IsTrue(s.IsActive) {
			continue
		}
		matched = append(matched, s)
	}
	return matched, nil
}

func (r *FakeTailorServiceRepository) ByFilter(ctx context.Context, filter models.TailorServiceFilter, orderBy string, limit, offset int) ([]*models.TailorService, error) {
	var matched []*models.TailorService
	for _, s := range r.Services {
		if filter.TailorID != nil && s.TailorID != *filter.TailorID {
			continue
		}
		if filter.UUID != nil && s.UUID != *filter.UUID {
			continue
		}
		if filter.IsActive != nil && utils.IsTrue(s.IsActive) != *filter.IsActive {
			continue
		}
		matched = append(matched, s)
	}
	return matched, nil
}

func (r *FakeTailorServiceRepository) Count(ctx context.Context, filter models.TailorServiceFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *FakeTailorServiceRepository) Save(ctx context.Context, entity *models.TailorService) error {
	r.Add(entity)
	return nil
}

func (r *FakeTailorServiceRepository) Update(ctx context.Context, entity *models.TailorService) error {
	for i, s := range r.Services {
		if s.ID == entity.ID {
			r.Services[i] = entity
			return nil
		}
	}
	return fmt.Errorf("service %d not found", entity.ID)
}

// FakeBookingRepository is an in-memory BookingRepository
type FakeBookingRepository struct {
	Bookings []*models.Booking
	nextID   uint
}

func NewFakeBookingRepository() *FakeBookingRepository {
	return &FakeBookingRepository{}
}

func (r *FakeBookingRepository) Add(b *models.Booking) *models.Booking {
	if b.ID == 0 {
		r.nextID++
		b.ID = r.nextID
	} else if b.ID > r.nextID {
		r.nextID = b.ID
	}
	r.Bookings = append(r.Bookings, b)
	return b
}

func (r *FakeBookingRepository) ByID(ctx context.Context, id uint) (*models.Booking, error) {
	for _, b := range r.Bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *FakeBookingRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	for _, b := range r.Bookings {
		if b.UUID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *FakeBookingRepository) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Booking, error) {
	filter := models.BookingFilter{CustomerID: &customerID}
	return r.page(r.matchFilter(filter), limit, offset), nil
}

func (r *FakeBookingRepository) ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Booking, error) {
	filter := models.BookingFilter{TailorID: &tailorID}
	return r.page(r.matchFilter(filter), limit, offset), nil
}

func (r *FakeBookingRepository) ListDueForReminder(ctx context.Context, horizon time.Time, limit int) ([]*models.Booking, error) {
	now := utils.UTCNow()
	var matched []*models.Booking
	for _, b := range r.Bookings {
		if b.Status != models.BookingStatusConfirmed || b.ReminderSentAt != nil {
			continue
		}
		if b.ScheduledAt.After(now) && !b.ScheduledAt.After(horizon) {
			matched = append(matched, b)
		}
	}
	return r.page(matched, limit, 0), nil
}

func (r *FakeBookingRepository) MarkReminderSent(ctx context.Context, bookingID uint) error {
	for _, b := range r.Bookings {
		if b.ID == bookingID && b.ReminderSentAt == nil {
			b.ReminderSentAt = utils.UTCNowPtr()
		}
	}
	return nil
}

func (r *FakeBookingRepository) ByFilter(ctx context.Context, filter models.BookingFilter, orderBy string, limit, offset int) ([]*models.Booking, error) {
	return r.page(r.matchFilter(filter), limit, offset), nil
}

func (r *FakeBookingRepository) Count(ctx context.Context, filter models.BookingFilter) (int64, error) {
	return int64(len(r.matchFilter(filter))), nil
}

func (r *FakeBookingRepository) matchFilter(filter models.BookingFilter) []*models.Booking {
	var matched []*models.Booking
	for _, b := range r.Bookings {
		if filter.CustomerID != nil && b.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.TailorID != nil && b.TailorID != *filter.TailorID {
			continue
		}
		if filter.UUID != nil && b.UUID != *filter.UUID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		matched = append(matched, b)
	}
	return matched
}

func (r *FakeBookingRepository) page(bookings []*models.Booking, limit, offset int) []*models.Booking {
	if offset > 0 {
		if offset >= len(bookings) {
			return nil
		}
		bookings = bookings[offset:]
	}
	if limit > 0 && limit < len(bookings) {
		bookings = bookings[:limit]
	}
	return bookings
}

func (r *FakeBookingRepository) Save(ctx context.Context, entity *models.Booking) error {
	r.Add(entity)
	return nil
}

func (r *FakeBookingRepository) Update(ctx context.Context, entity *models.Booking) error {
	for i, b := range r.Bookings {
		if b.ID == entity.ID {
			r.Bookings[i] = entity
			return nil
		}
	}
	return fmt.Errorf("booking %d not found", entity.ID)
}

// FakeMeasurementPresetRepository is an in-memory MeasurementPresetRepository
type FakeMeasurementPresetRepository struct {
	Presets []*models.MeasurementPreset
	nextID  uint
}

func NewFakeMeasurementPresetRepository() *FakeMeasurementPresetRepository {
	return &FakeMeasurementPresetRepository{}
}

func (r *FakeMeasurementPresetRepository) Add(p *models.MeasurementPreset) *models.MeasurementPreset {
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.Presets = append(r.Presets, p)
	return p
}

func (r *FakeMeasurementPresetRepository) ByID(ctx context.Context, id uint) (*models.MeasurementPreset, error) {
	for _, p := range r.Presets {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *FakeMeasurementPresetRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.MeasurementPreset, error) {
	for _, p := range r.Presets {
		if p.UUID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *FakeMeasurementPresetRepository) ListByTailor(ctx context.Context, tailorID uint) ([]*models.MeasurementPreset, error) {
	var matched []*models.MeasurementPreset
	for _, p := range r.Presets {
		if p.TailorID == tailorID {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})
	return matched, nil
}

func (r *FakeMeasurementPresetRepository) DeleteByID(ctx context.Context, presetID uint) error {
	for i, p := range r.Presets {
		if p.ID == presetID {
			r.Presets = append(r.Presets[:i], r.Presets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *FakeMeasurementPresetRepository) ByFilter(ctx context.Context, filter models.MeasurementPresetFilter, orderBy string, limit, offset int) ([]*models.MeasurementPreset, error) {
	var matched []*models.MeasurementPreset
	for _, p := range r.Presets {
		if filter.TailorID != nil && p.TailorID != *filter.TailorID {
			continue
		}
		if filter.UUID != nil && p.UUID != *filter.UUID {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (r *FakeMeasurementPresetRepository) Count(ctx context.Context, filter models.MeasurementPresetFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *FakeMeasurementPresetRepository) Save(ctx context.Context, entity *models.MeasurementPreset) error {
	r.Add(entity)
	return nil
}

func (r *FakeMeasurementPresetRepository) Update(ctx context.Context, entity *models.MeasurementPreset) error {
	for i, p := range r.Presets {
		if p.ID == entity.ID {
			r.Presets[i] = entity
			return nil
		}
	}
	return fmt.Errorf("preset %d not found", entity.ID)
}

// FakeReviewRepository is an in-memory ReviewRepository
type FakeReviewRepository struct {
	Reviews []*models.Review
	nextID  uint
}

func NewFakeReviewRepository() *FakeReviewRepository {
	return &FakeReviewRepository{}
}

func (r *FakeReviewRepository) Add(rev *models.Review) *models.Review {
	if rev.ID == 0 {
		r.nextID++
		rev.ID = r.nextID
	} else if rev.ID > r.nextID {
		r.nextID = rev.ID
	}
	r.Reviews = append(r.Reviews, rev)
	return rev
}

func (r *FakeReviewRepository) ByID(ctx context.Context, id uint) (*models.Review, error) {
	for _, rev := range r.Reviews {
		if rev.ID == id {
			return rev, nil
		}
	}
	return nil, nil
}

func (r *FakeReviewRepository) ByBookingID(ctx context.Context, bookingID uint) (*models.Review, error) {
	for _, rev := range r.Reviews {
		if rev.BookingID == bookingID {
			return rev, nil
		}
	}
	return nil, nil
}

func (r *FakeReviewRepository) ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Review, error) {
	var matched []*models.Review
	for _, rev := range r.Reviews {
		if rev.TailorID == tailorID {
			matched = append(matched, rev)
		}
	}
	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *FakeReviewRepository) AggregateByTailor(ctx context.Context, tailorID uint) (float64, int, error) {
	sum, count := 0, 0
	for _, rev := range r.Reviews {
		if rev.TailorID == tailorID {
			sum += rev.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *FakeReviewRepository) ByFilter(ctx context.Context, filter models.ReviewFilter, orderBy string, limit, offset int) ([]*models.Review, error) {
	var matched []*models.Review
	for _, rev := range r.Reviews {
		if filter.TailorID != nil && rev.TailorID != *filter.TailorID {
			continue
		}
		if filter.CustomerID != nil && rev.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.BookingID != nil && rev.BookingID != *filter.BookingID {
			continue
		}
		matched = append(matched, rev)
	}
	return matched, nil
}

func (r *FakeReviewRepository) Count(ctx context.Context, filter models.ReviewFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *FakeReviewRepository) Save(ctx context.Context, entity *models.Review) error {
	r.Add(entity)
	return nil
}

func (r *FakeReviewRepository) Update(ctx context.Context, entity *models.Review) error {
	for i, rev := range r.Reviews {
		if rev.ID == entity.ID {
			r.Reviews[i] = entity
			return nil
		}
	}
	return fmt.Errorf("review %d not found", entity.ID)
}

// FakeAuditLogRepository is an in-memory AuditLogRepository
type FakeAuditLogRepository struct {
	Logs   []*models.AuditLog
	nextID uint
}

func NewFakeAuditLogRepository() *FakeAuditLogRepository {
	return &FakeAuditLogRepository{}
}

func (r *FakeAuditLogRepository) ByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	for _, l := range r.Logs {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *FakeAuditLogRepository) ListByAccount(ctx context.Context, role string, accountID uint, limit, offset int) ([]*models.AuditLog, error) {
	var matched []*models.AuditLog
	for _, l := range r.Logs {
		if l.AccountRole != nil && *l.AccountRole == role && l.AccountID != nil && *l.AccountID == accountID {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (r *FakeAuditLogRepository) ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error) {
	var matched []*models.AuditLog
	for _, l := range r.Logs {
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		matched = append(matched, l)
	}
	return matched, nil
}

func (r *FakeAuditLogRepository) Count(ctx context.Context, filter models.AuditLogFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *FakeAuditLogRepository) Save(ctx context.Context, entity *models.AuditLog) error {
	if entity.ID == 0 {
		r.nextID++
		entity.ID = r.nextID
	}
	r.Logs = append(r.Logs, entity)
	return nil
}

func (r *FakeAuditLogRepository) Update(ctx context.Context, entity *models.AuditLog) error {
	for i, l := range r.Logs {
		if l.ID == entity.ID {
			r.Logs[i] = entity
			return nil
		}
	}
	return fmt.Errorf("audit log %d not found", entity.ID)
}

// ActionsLogged returns the audit actions recorded so far, in order
func (r *FakeAuditLogRepository) ActionsLogged() []string {
	actions := make([]string, 0, len(r.Logs))
	for _, l := range r.Logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
