package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/domain/discount"
	"github.com/drivehub/service-booking/internal/domain/fleet"
	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/reservation"
	"github.com/drivehub/service-booking/internal/domain/shared"
	"github.com/drivehub/service-booking/internal/domain/tenant"
	"github.com/drivehub/service-booking/internal/kafka"
)

// fakeTxRunner runs the closure directly; the in-memory fakes below are
// guarded by their own mutexes.
type fakeTxRunner struct{}

func (fakeTxRunner) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTenantRepo struct {
	tenant        *tenant.Tenant
	methods       map[uuid.UUID]*tenant.PaymentMethod
	bookingsCount int
}

func (f *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if f.tenant == nil || f.tenant.ID != id {
		return nil, shared.NewNotFoundError("tenant", id.String())
	}
	return f.tenant, nil
}

func (f *fakeTenantRepo) FindPaymentMethod(_ context.Context, tenantID, methodID uuid.UUID) (*tenant.PaymentMethod, error) {
	m, ok := f.methods[methodID]
	if !ok || m.TenantID != tenantID {
		return nil, shared.NewNotFoundError("payment method", methodID.String())
	}
	return m, nil
}

func (f *fakeTenantRepo) CountBookingsInMonth(_ context.Context, _ uuid.UUID, _ time.Time) (int, error) {
	return f.bookingsCount, nil
}

type fakeFleetRepo struct {
	vehicles map[uuid.UUID]*fleet.Vehicle
}

func (f *fakeFleetRepo) FindByID(_ context.Context, tenantID, vehicleID uuid.UUID) (*fleet.Vehicle, error) {
	v, ok := f.vehicles[vehicleID]
	if !ok || v.TenantID != tenantID {
		return nil, shared.NewNotFoundError("vehicle", vehicleID.String())
	}
	return v, nil
}

type fakePricingRepo struct {
	rules     []*pricing.Rule
	extras    map[uuid.UUID]*pricing.ExtraOption
	insurance map[uuid.UUID]*pricing.InsuranceType
	locations map[uuid.UUID]*pricing.Location
}

func (f *fakePricingRepo) FindRulesIntersecting(_ context.Context, tenantID, vehicleID, categoryID uuid.UUID, rng shared.DateRange) ([]*pricing.Rule, error) {
	var out []*pricing.Rule
	for _, r := range f.rules {
		if r.TenantID != tenantID {
			continue
		}
		if r.VehicleID != nil && *r.VehicleID != vehicleID {
			continue
		}
		if r.CategoryID != nil && *r.CategoryID != categoryID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakePricingRepo) FindExtras(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*pricing.ExtraOption, error) {
	out := make(map[uuid.UUID]*pricing.ExtraOption)
	for _, id := range ids {
		if opt, ok := f.extras[id]; ok && opt.TenantID == tenantID {
			out[id] = opt
		}
	}
	return out, nil
}

func (f *fakePricingRepo) FindInsurance(_ context.Context, tenantID, insuranceID uuid.UUID) (*pricing.InsuranceType, error) {
	ins, ok := f.insurance[insuranceID]
	if !ok || ins.TenantID != tenantID {
		return nil, nil
	}
	return ins, nil
}

func (f *fakePricingRepo) FindLocation(_ context.Context, tenantID, locationID uuid.UUID) (*pricing.Location, error) {
	loc, ok := f.locations[locationID]
	if !ok || loc.TenantID != tenantID {
		return nil, shared.NewNotFoundError("location", locationID.String())
	}
	return loc, nil
}

type fakeDiscountRepo struct {
	mu        sync.Mutex
	codes     map[uuid.UUID]*discount.Code
	used      map[uuid.UUID]int
	redeemErr error
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{
		codes: make(map[uuid.UUID]*discount.Code),
		used:  make(map[uuid.UUID]int),
	}
}

func (f *fakeDiscountRepo) add(c *discount.Code) {
	f.codes[c.ID()] = c
	f.used[c.ID()] = c.TimesUsed()
}

func (f *fakeDiscountRepo) Save(_ context.Context, c *discount.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(c)
	return nil
}

func (f *fakeDiscountRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*discount.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.TenantID() == tenantID && strings.EqualFold(c.CodeString(), code) {
			return f.snapshot(c), nil
		}
	}
	return nil, nil
}

func (f *fakeDiscountRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*discount.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[id]
	if !ok || c.TenantID() != tenantID {
		return nil, shared.NewNotFoundError("discount code", id.String())
	}
	return f.snapshot(c), nil
}

func (f *fakeDiscountRepo) Redeem(_ context.Context, codeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redeemErr != nil {
		return f.redeemErr
	}
	c, ok := f.codes[codeID]
	if !ok {
		return shared.NewNotFoundError("discount code", codeID.String())
	}
	if c.MaxUses() > 0 && f.used[codeID] >= c.MaxUses() {
		return shared.NewConflictError("discount code usage limit reached")
	}
	f.used[codeID]++
	return nil
}

// snapshot rebuilds the aggregate with the current usage counter.
func (f *fakeDiscountRepo) snapshot(c *discount.Code) *discount.Code {
	return discount.Reconstruct(
		c.ID(), c.TenantID(), c.CodeString(), c.Kind(), c.Value(),
		c.ValidFrom(), c.ValidUntil(), c.MaxUses(), f.used[c.ID()],
		c.IsActive(), c.CreatedAt(), c.UpdatedAt(),
	)
}

type storedReservation struct {
	res   *reservation.Reservation
	lines []reservation.ExtraLine
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*storedReservation
	blocks       map[uuid.UUID]*reservation.AvailabilityBlock
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[uuid.UUID]*storedReservation),
		blocks:       make(map[uuid.UUID]*reservation.AvailabilityBlock),
	}
}

func (f *fakeReservationRepo) Create(_ context.Context, r *reservation.Reservation, lines []reservation.ExtraLine, block *reservation.AvailabilityBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations[r.ID()] = &storedReservation{res: r, lines: lines}
	f.blocks[block.ID] = block
	return nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sr, ok := f.reservations[id]
	if !ok || sr.res.TenantID() != tenantID {
		return nil, shared.NewNotFoundError("reservation", id.String())
	}
	return sr.res, nil
}

func (f *fakeReservationRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sr := range f.reservations {
		if sr.res.TenantID() == tenantID && sr.res.Number() == number {
			return sr.res, nil
		}
	}
	return nil, shared.NewNotFoundError("reservation", number)
}

func (f *fakeReservationRepo) FindLines(_ context.Context, reservationID uuid.UUID) ([]reservation.ExtraLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sr, ok := f.reservations[reservationID]; ok {
		return sr.lines, nil
	}
	return nil, nil
}

func (f *fakeReservationRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, status reservation.Status, _, _ int) ([]*reservation.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*reservation.Reservation
	for _, sr := range f.reservations {
		if sr.res.TenantID() != tenantID {
			continue
		}
		if status != "" && sr.res.Status() != status {
			continue
		}
		out = append(out, sr.res)
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) Update(_ context.Context, r *reservation.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sr, ok := f.reservations[r.ID()]
	if !ok {
		return shared.NewNotFoundError("reservation", r.ID().String())
	}
	sr.res = r
	return nil
}

func (f *fakeReservationRepo) LockVehicle(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (f *fakeReservationRepo) FindConflicts(_ context.Context, tenantID, vehicleID uuid.UUID, period shared.DateRange, now time.Time) ([]reservation.Conflict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []reservation.Conflict
	for _, b := range f.blocks {
		if b.TenantID != tenantID || b.VehicleID != vehicleID || !b.Period.Overlaps(period) {
			continue
		}
		if b.ReservationID != nil {
			sr := f.reservations[*b.ReservationID]
			if sr == nil || !sr.res.Status().Blocking() || sr.res.IsExpired(now) {
				continue
			}
			out = append(out, reservation.Conflict{
				ReservationID: sr.res.ID(),
				BookingNumber: sr.res.Number(),
				Period:        b.Period,
			})
			continue
		}
		out = append(out, reservation.Conflict{Period: b.Period})
	}
	return out, nil
}

func (f *fakeReservationRepo) FindDuplicate(_ context.Context, tenantID, vehicleID uuid.UUID, customerEmail string, period shared.DateRange) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sr := range f.reservations {
		r := sr.res
		if r.TenantID() == tenantID && r.VehicleID() == vehicleID &&
			strings.EqualFold(r.Customer().Email, customerEmail) &&
			r.Period().Overlaps(period) && r.Status().Blocking() {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) ReleaseBlock(_ context.Context, reservationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, b := range f.blocks {
		if b.ReservationID != nil && *b.ReservationID == reservationID {
			delete(f.blocks, id)
		}
	}
	return nil
}

func (f *fakeReservationRepo) FindExpiredPending(_ context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*reservation.Reservation
	for _, sr := range f.reservations {
		if sr.res.IsExpired(now) {
			out = append(out, sr.res)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakePublisher struct {
	mu         sync.Mutex
	events     []publishedEvent
	publishErr error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic string, ce kafka.CloudEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, publishedEvent{topic: topic, event: ce})
	return nil
}

func (f *fakePublisher) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
