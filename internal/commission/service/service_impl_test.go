package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/dealerstack/vaahan/internal/audit/domain"
	bookingrepo "github.com/dealerstack/vaahan/internal/booking/repository"
	"github.com/dealerstack/vaahan/internal/clock"
	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	commissionrepo "github.com/dealerstack/vaahan/internal/commission/repository"
	"github.com/dealerstack/vaahan/internal/config"
	"github.com/dealerstack/vaahan/internal/reference"
	"github.com/dealerstack/vaahan/pkg/db"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditStub struct{}

func (auditStub) Record(context.Context, string, string, string, string, map[string]any) error {
	return nil
}

func (auditStub) List(context.Context, auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	return nil, nil
}

const testSchema = `
CREATE TABLE subdealers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	code TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME
);
CREATE TABLE vehicle_models (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME
);
CREATE TABLE price_headers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	is_discount_only BOOLEAN NOT NULL DEFAULT FALSE,
	is_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME
);
CREATE TABLE bookings (
	id INTEGER PRIMARY KEY,
	booking_number TEXT NOT NULL UNIQUE,
	customer_name TEXT NOT NULL,
	model_id INTEGER NOT NULL,
	subdealer_id INTEGER,
	financer_id INTEGER,
	total_amount NUMERIC NOT NULL,
	discounted_amount NUMERIC NOT NULL,
	received_amount NUMERIC NOT NULL DEFAULT 0,
	balance_amount NUMERIC NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	created_by TEXT NOT NULL,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE booking_price_components (
	id INTEGER PRIMARY KEY,
	booking_id INTEGER NOT NULL,
	header_id INTEGER NOT NULL,
	original_value NUMERIC NOT NULL,
	discounted_value NUMERIC,
	is_discountable BOOLEAN NOT NULL DEFAULT FALSE,
	is_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE commission_masters (
	id INTEGER PRIMARY KEY,
	subdealer_id INTEGER NOT NULL,
	model_id INTEGER NOT NULL,
	applicable_from DATETIME NOT NULL,
	applicable_to DATETIME,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_by TEXT NOT NULL,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (subdealer_id, model_id, applicable_from)
);
CREATE TABLE commission_rates (
	id INTEGER PRIMARY KEY,
	master_id INTEGER NOT NULL,
	header_id INTEGER NOT NULL,
	rate NUMERIC NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (master_id, header_id)
);
CREATE TABLE commission_rate_history (
	id INTEGER PRIMARY KEY,
	master_id INTEGER NOT NULL,
	header_id INTEGER NOT NULL,
	change_type TEXT NOT NULL,
	old_rate NUMERIC,
	new_rate NUMERIC,
	old_applicable_from DATETIME,
	old_applicable_to DATETIME,
	new_applicable_from DATETIME,
	new_applicable_to DATETIME,
	changed_by TEXT NOT NULL,
	changed_at DATETIME NOT NULL
);
`

type fixture struct {
	svc         commissiondomain.Service
	db          *gorm.DB
	node        *snowflake.Node
	subdealerID snowflake.ID
	modelID     snowflake.ID
	exShowroom  snowflake.ID
	rto         snowflake.ID
	discount    snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, conn.Exec(testSchema).Error)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	f := &fixture{
		db:          conn,
		node:        node,
		subdealerID: node.Generate(),
		modelID:     node.Generate(),
		exShowroom:  node.Generate(),
		rto:         node.Generate(),
		discount:    node.Generate(),
	}

	require.NoError(t, conn.Exec(
		`INSERT INTO subdealers (id, name, code, is_active) VALUES (?, 'Highway Motors', 'HWM', TRUE)`,
		f.subdealerID,
	).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO vehicle_models (id, name, product_type, is_active) VALUES (?, 'Sprint 125', 'TWO_WHEELER', TRUE)`,
		f.modelID,
	).Error)
	require.NoError(t, conn.Exec(
		`INSERT INTO price_headers (id, name, product_type, is_discount_only, is_mandatory, is_active) VALUES
			(?, 'Ex-Showroom', 'TWO_WHEELER', FALSE, TRUE, TRUE),
			(?, 'RTO', 'TWO_WHEELER', FALSE, TRUE, TRUE),
			(?, 'Special Discount', 'TWO_WHEELER', TRUE, FALSE, TRUE)`,
		f.exShowroom, f.rto, f.discount,
	).Error)

	log := zap.NewNop()
	f.svc = New(Params{
		DB:          conn,
		TxRunner:    db.NewTxRunner(conn, config.Config{}, log),
		Log:         log,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)),
		Repo:        commissionrepo.Provide(),
		BookingRepo: bookingrepo.Provide(),
		RefRepo:     reference.NewRepository(conn),
		AuditSvc:    auditStub{},
	})
	return f
}

func (f *fixture) addBooking(t *testing.T, number string, bookedAt time.Time, exShowroomValue int64) {
	t.Helper()
	bookingID := f.node.Generate()
	require.NoError(t, f.db.Exec(
		`INSERT INTO bookings (
			id, booking_number, customer_name, model_id, subdealer_id,
			total_amount, discounted_amount, received_amount, balance_amount,
			version, created_by, created_at, updated_at
		) VALUES (?, ?, 'Customer', ?, ?, ?, ?, 0, ?, 1, 'tester', ?, ?)`,
		bookingID, number, f.modelID, f.subdealerID,
		exShowroomValue, exShowroomValue, exShowroomValue, bookedAt, bookedAt,
	).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO booking_price_components (
			id, booking_id, header_id, original_value, is_discountable, is_mandatory, position
		) VALUES (?, ?, ?, ?, TRUE, TRUE, 0)`,
		f.node.Generate(), bookingID, f.exShowroom, exShowroomValue,
	).Error)
}

func (f *fixture) upsert(t *testing.T, from time.Time, rates []commissiondomain.RateInput) *commissiondomain.UpsertRatesResponse {
	t.Helper()
	resp, err := f.svc.UpsertRates(context.Background(), commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		Rates:          rates,
		Actor:          "sales-head",
	})
	require.NoError(t, err)
	return resp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUpsertRatesLifecycle(t *testing.T) {
	f := setup(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := f.upsert(t, from, []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
		{HeaderID: f.rto.String(), Rate: dec("1.00")},
	})
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.Equal(t, 0, first.Deactivated)

	// Same window again: one rate changes, one header is dropped.
	resp := f.upsert(t, from, []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.50")},
	})
	assert.Equal(t, first.MasterID, resp.MasterID)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.Deactivated)

	history, err := f.svc.ListHistory(context.Background(), f.subdealerID.String(), f.modelID.String())
	require.NoError(t, err)

	counts := map[commissiondomain.RateChangeType]int{}
	for _, h := range history {
		counts[h.ChangeType]++
	}
	assert.Equal(t, 2, counts[commissiondomain.RateChangeCreated])
	assert.Equal(t, 1, counts[commissiondomain.RateChangeUpdated])
	assert.Equal(t, 1, counts[commissiondomain.RateChangeDeactivated])
}

func TestUpsertRatesWindowEndMoveRecordsHistory(t *testing.T) {
	f := setup(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f.upsert(t, from, []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})

	// Same window start, new end date: the rates stand, the move is
	// still recorded against each of them.
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.UpsertRates(context.Background(), commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		ApplicableTo:   &to,
		Rates: []commissiondomain.RateInput{
			{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
		},
		Actor: "sales-head",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 0, resp.Updated)

	history, err := f.svc.ListHistory(context.Background(), f.subdealerID.String(), f.modelID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	moved := history[1]
	assert.Equal(t, commissiondomain.RateChangeUpdated, moved.ChangeType)
	assert.Nil(t, moved.OldRate)
	assert.Nil(t, moved.NewRate)
	require.NotNil(t, moved.OldFrom)
	assert.True(t, moved.OldFrom.Equal(from))
	assert.Nil(t, moved.OldTo)
	require.NotNil(t, moved.NewTo)
	assert.True(t, moved.NewTo.Equal(to))
}

func TestUpsertRatesDefaultsApplicableFrom(t *testing.T) {
	f := setup(t)

	// Omitted window start falls back to the current time.
	resp := f.upsert(t, time.Time{}, []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})
	assert.Equal(t, 1, resp.Created)

	var from time.Time
	require.NoError(t, f.db.Raw(
		`SELECT applicable_from FROM commission_masters WHERE id = ?`, resp.MasterID,
	).Scan(&from).Error)
	assert.True(t, from.Equal(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)))
}

func TestUpsertRatesValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.UpsertRates(ctx, commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		Actor:          "sales-head",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrEmptyRates)

	_, err = f.svc.UpsertRates(ctx, commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		Rates: []commissiondomain.RateInput{
			{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
			{HeaderID: f.exShowroom.String(), Rate: dec("3.00")},
		},
		Actor: "sales-head",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrDuplicateHeader)

	_, err = f.svc.UpsertRates(ctx, commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		Rates: []commissiondomain.RateInput{
			{HeaderID: f.exShowroom.String(), Rate: dec("101")},
		},
		Actor: "sales-head",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidRate)

	// Discount-only headers never earn commission.
	_, err = f.svc.UpsertRates(ctx, commissiondomain.UpsertRatesRequest{
		SubdealerID:    f.subdealerID.String(),
		ModelID:        f.modelID.String(),
		ApplicableFrom: from,
		Rates: []commissiondomain.RateInput{
			{HeaderID: f.discount.String(), Rate: dec("1.00")},
		},
		Actor: "sales-head",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrHeaderNotEligible)
}

func TestCalculateUsesRateInEffectAtBookingDate(t *testing.T) {
	f := setup(t)

	// 2.00% from January, superseded by 3.50% from March.
	f.upsert(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})
	f.upsert(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("3.50")},
	})

	f.addBooking(t, "BK-000001", time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), 50000)
	f.addBooking(t, "BK-000002", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), 50000)

	resp, err := f.svc.Calculate(context.Background(), commissiondomain.CalculateRequest{
		SubdealerID: f.subdealerID.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 2)

	byNumber := map[string]commissiondomain.BookingCommission{}
	for _, b := range resp.Bookings {
		byNumber[b.BookingNumber] = b
	}
	assert.Equal(t, "1000.00", byNumber["BK-000001"].Total.StringFixed(2))
	assert.Equal(t, "1750.00", byNumber["BK-000002"].Total.StringFixed(2))
	assert.Equal(t, "2750.00", resp.Total.StringFixed(2))
}

func TestCalculateNoRateCardIsExplicitZero(t *testing.T) {
	f := setup(t)

	f.upsert(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("3.50")},
	})

	// Booked before any card applies: zero commission, no fallback.
	f.addBooking(t, "BK-000001", time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), 50000)

	resp, err := f.svc.Calculate(context.Background(), commissiondomain.CalculateRequest{
		SubdealerID: f.subdealerID.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.True(t, resp.Bookings[0].NoRateCard)
	assert.Equal(t, "0.00", resp.Bookings[0].Total.StringFixed(2))
	assert.Equal(t, "0.00", resp.Total.StringFixed(2))

	// The component still shows up, flagged as carrying no rate.
	require.Len(t, resp.Bookings[0].Components, 1)
	comp := resp.Bookings[0].Components[0]
	assert.True(t, comp.NoRate)
	assert.Equal(t, "0.00", comp.Rate.StringFixed(2))
	assert.Equal(t, "0.00", comp.Commission.StringFixed(2))
}

func TestCalculateUnratedComponentReportedZero(t *testing.T) {
	f := setup(t)

	// The card rates Ex-Showroom only; RTO has no entry.
	f.upsert(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})
	f.addBooking(t, "BK-000001", time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), 50000)

	var bookingID snowflake.ID
	require.NoError(t, f.db.Raw(`SELECT id FROM bookings WHERE booking_number = 'BK-000001'`).Scan(&bookingID).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO booking_price_components (
			id, booking_id, header_id, original_value, is_discountable, is_mandatory, position
		) VALUES (?, ?, ?, 8000, FALSE, TRUE, 1)`,
		f.node.Generate(), bookingID, f.rto,
	).Error)

	resp, err := f.svc.Calculate(context.Background(), commissiondomain.CalculateRequest{
		SubdealerID: f.subdealerID.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	b := resp.Bookings[0]
	assert.False(t, b.NoRateCard)
	require.Len(t, b.Components, 2)

	byHeader := map[snowflake.ID]commissiondomain.ComponentCommission{}
	for _, c := range b.Components {
		byHeader[c.HeaderID] = c
	}
	rated := byHeader[f.exShowroom]
	assert.False(t, rated.NoRate)
	assert.Equal(t, "1000.00", rated.Commission.StringFixed(2))

	unrated := byHeader[f.rto]
	assert.True(t, unrated.NoRate)
	assert.Equal(t, "0.00", unrated.Rate.StringFixed(2))
	assert.Equal(t, "0.00", unrated.Commission.StringFixed(2))
	assert.Equal(t, "8000.00", unrated.Base.StringFixed(2))

	// The unrated line never moves the totals.
	assert.Equal(t, "1000.00", b.Total.StringFixed(2))
	assert.Equal(t, "1000.00", resp.Total.StringFixed(2))
}

func TestCalculateDateFilter(t *testing.T) {
	f := setup(t)

	f.upsert(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})
	f.addBooking(t, "BK-000001", time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), 50000)
	f.addBooking(t, "BK-000002", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), 50000)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.Calculate(context.Background(), commissiondomain.CalculateRequest{
		SubdealerID: f.subdealerID.String(),
		From:        &from,
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "BK-000002", resp.Bookings[0].BookingNumber)
}

func TestSetDateRange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.upsert(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []commissiondomain.RateInput{
		{HeaderID: f.exShowroom.String(), Rate: dec("2.00")},
	})

	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.SetDateRange(ctx, commissiondomain.SetDateRangeRequest{
		SubdealerID:    f.subdealerID.String(),
		ApplicableFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ApplicableTo:   &to,
		Actor:          "sales-head",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.Skipped)

	// The move is audited per rate row, old window against new.
	history, err := f.svc.ListHistory(ctx, f.subdealerID.String(), f.modelID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	moved := history[1]
	assert.Equal(t, commissiondomain.RateChangeUpdated, moved.ChangeType)
	assert.Equal(t, f.exShowroom, moved.HeaderID)
	require.NotNil(t, moved.OldFrom)
	assert.True(t, moved.OldFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, moved.OldTo)
	require.NotNil(t, moved.NewFrom)
	assert.True(t, moved.NewFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, moved.NewTo)
	assert.True(t, moved.NewTo.Equal(to))
	assert.Equal(t, "sales-head", moved.ChangedBy)

	// Re-applying the same window touches nothing.
	resp, err = f.svc.SetDateRange(ctx, commissiondomain.SetDateRangeRequest{
		SubdealerID:    f.subdealerID.String(),
		ApplicableFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ApplicableTo:   &to,
		Actor:          "sales-head",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Updated)
	assert.Equal(t, 1, resp.Skipped)

	// Skipped rows leave the history alone.
	history, err = f.svc.ListHistory(ctx, f.subdealerID.String(), f.modelID.String())
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = f.svc.SetDateRange(ctx, commissiondomain.SetDateRangeRequest{
		SubdealerID:    f.subdealerID.String(),
		ApplicableFrom: to,
		ApplicableTo:   &to,
		Actor:          "sales-head",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidDateRange)
}
