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
	"github.com/dealerstack/vaahan/internal/config"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	ledgerrepo "github.com/dealerstack/vaahan/internal/ledger/repository"
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
CREATE TABLE ledger_entries (
	id INTEGER PRIMARY KEY,
	booking_id INTEGER NOT NULL,
	amount NUMERIC NOT NULL,
	payment_mode TEXT,
	is_debit BOOLEAN NOT NULL DEFAULT FALSE,
	cash_location_id INTEGER,
	bank_id INTEGER,
	transaction_reference TEXT,
	remarks TEXT,
	source_kind TEXT NOT NULL,
	source_id INTEGER,
	source_collection TEXT,
	received_by TEXT NOT NULL,
	created_by TEXT NOT NULL,
	reversed_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE receipts (
	id INTEGER PRIMARY KEY,
	receipt_number TEXT NOT NULL UNIQUE,
	booking_id INTEGER NOT NULL,
	ledger_entry_id INTEGER NOT NULL UNIQUE,
	amount NUMERIC NOT NULL,
	payment_mode TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	issued_by TEXT NOT NULL,
	cancelled_by TEXT,
	cancelled_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME
);
`

type fixture struct {
	svc       ledgerdomain.Service
	db        *gorm.DB
	node      *snowflake.Node
	bookingID snowflake.ID
}

// setup prepares a booking with 10000 discounted, 9000 received and
// 1000 outstanding.
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

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	f := &fixture{db: conn, node: node, bookingID: node.Generate()}
	require.NoError(t, conn.Exec(
		`INSERT INTO bookings (
			id, booking_number, customer_name, model_id,
			total_amount, discounted_amount, received_amount, balance_amount,
			version, created_by, created_at, updated_at
		) VALUES (?, 'BK-000001', 'Ravi', 1, 10000, 10000, 9000, 1000, 1, 'tester', ?, ?)`,
		f.bookingID, time.Now().UTC(), time.Now().UTC(),
	).Error)

	log := zap.NewNop()
	f.svc = New(Params{
		DB:          conn,
		TxRunner:    db.NewTxRunner(conn, config.Config{}, log),
		Log:         log,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)),
		Settings:    config.NewStaticSettlementConfigHolder(config.DefaultSettlementConfig()),
		Repo:        ledgerrepo.Provide(),
		BookingRepo: bookingrepo.Provide(),
		AuditSvc:    auditStub{},
	})
	return f
}

func (f *fixture) bookingRow(t *testing.T) (received, balance decimal.Decimal) {
	t.Helper()
	var row struct {
		ReceivedAmount decimal.Decimal `gorm:"column:received_amount"`
		BalanceAmount  decimal.Decimal `gorm:"column:balance_amount"`
	}
	require.NoError(t, f.db.Raw(
		`SELECT received_amount, balance_amount FROM bookings WHERE id = ?`, f.bookingID,
	).Scan(&row).Error)
	return row.ReceivedAmount, row.BalanceAmount
}

// insertCredit seeds a receipt-backed credit entry directly, the way
// the receipt service would have written it.
func (f *fixture) insertCredit(t *testing.T, amount decimal.Decimal) (entryID snowflake.ID) {
	t.Helper()
	entryID = f.node.Generate()
	receiptID := f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Exec(
		`INSERT INTO ledger_entries (
			id, booking_id, amount, payment_mode, is_debit, cash_location_id,
			source_kind, source_id, source_collection,
			received_by, created_by, created_at, updated_at
		) VALUES (?, ?, ?, 'Cash', FALSE, ?, 'receipt', ?, 'receipts', 'cashier', 'cashier', ?, ?)`,
		entryID, f.bookingID, amount, f.node.Generate(), receiptID, now, now,
	).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO receipts (
			id, receipt_number, booking_id, ledger_entry_id, amount,
			payment_mode, status, issued_by, created_at, updated_at
		) VALUES (?, 'RCT-000001', ?, ?, ?, 'Cash', 'ACTIVE', 'cashier', ?, ?)`,
		receiptID, f.bookingID, entryID, amount, now, now,
	).Error)
	return entryID
}

func TestAddDebitRaisesBalanceOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry, err := f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.NewFromInt(500),
		Reason:    "RTO penalty passed through",
		Actor:     "accounts",
	})
	require.NoError(t, err)
	assert.True(t, entry.IsDebit)
	assert.Equal(t, ledgerdomain.SourceKindManualDebit, entry.SourceKind)
	assert.Empty(t, entry.PaymentMode)

	received, balance := f.bookingRow(t)
	assert.Equal(t, "9000.00", received.StringFixed(2))
	assert.Equal(t, "1500.00", balance.StringFixed(2))
}

func TestAddDebitNotCappedByBalance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// A debit far above the outstanding balance is still accepted.
	_, err := f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.NewFromInt(50000),
		Reason:    "insurance claim reversal",
		Actor:     "accounts",
	})
	require.NoError(t, err)

	_, balance := f.bookingRow(t)
	assert.Equal(t, "51000.00", balance.StringFixed(2))
}

func TestAddDebitValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.NewFromInt(100),
		Reason:    "   ",
		Actor:     "accounts",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidReason)

	_, err = f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.Zero,
		Reason:    "noop",
		Actor:     "accounts",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)

	_, err = f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.NewFromInt(100),
		Reason:    "noop",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidActor)
}

func TestUpdateCreditEntryAppliesDelta(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entryID := f.insertCredit(t, decimal.NewFromInt(4000))

	// 4000 -> 4500: only the 500 delta moves the booking.
	entry, err := f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: entryID.String(),
		Amount:  decimal.NewFromInt(4500),
		Actor:   "accounts",
	})
	require.NoError(t, err)
	assert.Equal(t, "4500.00", entry.Amount.StringFixed(2))

	received, balance := f.bookingRow(t)
	assert.Equal(t, "9500.00", received.StringFixed(2))
	assert.Equal(t, "500.00", balance.StringFixed(2))

	// The originating receipt follows the corrected amount.
	var receiptAmount decimal.Decimal
	require.NoError(t, f.db.Raw(
		`SELECT amount FROM receipts WHERE ledger_entry_id = ?`, entryID,
	).Scan(&receiptAmount).Error)
	assert.Equal(t, "4500.00", receiptAmount.StringFixed(2))
}

func TestUpdateCreditEntryLoweredAmount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entryID := f.insertCredit(t, decimal.NewFromInt(4000))

	_, err := f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: entryID.String(),
		Amount:  decimal.NewFromInt(3000),
		Actor:   "accounts",
	})
	require.NoError(t, err)

	received, balance := f.bookingRow(t)
	assert.Equal(t, "8000.00", received.StringFixed(2))
	assert.Equal(t, "2000.00", balance.StringFixed(2))
}

func TestUpdateCreditEntryDeltaOverBalance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entryID := f.insertCredit(t, decimal.NewFromInt(4000))

	// Delta of 1500 exceeds the 1000 outstanding.
	_, err := f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: entryID.String(),
		Amount:  decimal.NewFromInt(5500),
		Actor:   "accounts",
	})
	require.ErrorIs(t, err, ledgerdomain.ErrAmountExceedsBalance)

	var exceeds *ledgerdomain.AmountExceedsBalanceError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, "1000.00", exceeds.Remaining.StringFixed(2))
}

func TestUpdateDebitEntryAppliesDelta(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry, err := f.svc.AddDebit(ctx, ledgerdomain.AddDebitRequest{
		BookingID: f.bookingID.String(),
		Amount:    decimal.NewFromInt(500),
		Reason:    "handling charge",
		Actor:     "accounts",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: entry.ID.String(),
		Amount:  decimal.NewFromInt(200),
		Actor:   "accounts",
	})
	require.NoError(t, err)

	received, balance := f.bookingRow(t)
	assert.Equal(t, "9000.00", received.StringFixed(2))
	assert.Equal(t, "1200.00", balance.StringFixed(2))
}

func TestUpdateReversedEntryRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entryID := f.insertCredit(t, decimal.NewFromInt(4000))

	require.NoError(t, f.db.Exec(
		`UPDATE ledger_entries SET reversed_at = ? WHERE id = ?`, time.Now().UTC(), entryID,
	).Error)

	_, err := f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: entryID.String(),
		Amount:  decimal.NewFromInt(5000),
		Actor:   "accounts",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrEntryReversed)
}

func TestUpdateUnknownEntry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpdateEntryAmount(ctx, ledgerdomain.UpdateEntryRequest{
		EntryID: f.node.Generate().String(),
		Amount:  decimal.NewFromInt(100),
		Actor:   "accounts",
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrEntryNotFound)
}

func TestListByBookingIncludesReversed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	entryID := f.insertCredit(t, decimal.NewFromInt(4000))

	require.NoError(t, f.db.Exec(
		`UPDATE ledger_entries SET reversed_at = ? WHERE id = ?`, time.Now().UTC(), entryID,
	).Error)

	entries, err := f.svc.ListByBooking(ctx, f.bookingID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
