package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dealerstack/vaahan/internal/clock"
	"github.com/dealerstack/vaahan/internal/config"
	ledgerrepo "github.com/dealerstack/vaahan/internal/ledger/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
`

type fixture struct {
	rec  *Reconciler
	db   *gorm.DB
	node *snowflake.Node
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.Exec(testSchema).Error)

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	rec := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)),
		Settings:   config.NewStaticSettlementConfigHolder(config.DefaultSettlementConfig()),
		LedgerRepo: ledgerrepo.Provide(),
	})
	return &fixture{rec: rec, db: conn, node: node}
}

func (f *fixture) addBooking(t *testing.T, number string, received int64) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Exec(
		`INSERT INTO bookings (
			id, booking_number, customer_name, model_id,
			total_amount, discounted_amount, received_amount, balance_amount,
			version, created_by, created_at, updated_at
		) VALUES (?, ?, 'Customer', 1, 10000, 10000, ?, 0, 1, 'tester', ?, ?)`,
		id, number, received, now, now,
	).Error)
	return id
}

func (f *fixture) addCredit(t *testing.T, bookingID snowflake.ID, amount int64, reversed bool) {
	t.Helper()
	now := time.Now().UTC()
	var reversedAt *time.Time
	if reversed {
		reversedAt = &now
	}
	require.NoError(t, f.db.Exec(
		`INSERT INTO ledger_entries (
			id, booking_id, amount, payment_mode, is_debit, source_kind,
			received_by, created_by, reversed_at, created_at, updated_at
		) VALUES (?, ?, ?, 'Cash', FALSE, 'receipt', 'cashier', 'cashier', ?, ?, ?)`,
		f.node.Generate(), bookingID, amount, reversedAt, now, now,
	).Error)
}

func (f *fixture) addDebit(t *testing.T, bookingID snowflake.ID, amount int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.db.Exec(
		`INSERT INTO ledger_entries (
			id, booking_id, amount, is_debit, source_kind,
			received_by, created_by, created_at, updated_at
		) VALUES (?, ?, ?, TRUE, 'manual_debit', 'accounts', 'accounts', ?, ?)`,
		f.node.Generate(), bookingID, amount, now, now,
	).Error)
}

func TestCheckAllCleanBook(t *testing.T) {
	f := setup(t)
	id := f.addBooking(t, "BK-000001", 4000)
	f.addCredit(t, id, 4000, false)

	report, err := f.rec.CheckAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Drifts)
}

func TestCheckAllDetectsDrift(t *testing.T) {
	f := setup(t)
	id := f.addBooking(t, "BK-000001", 5000)
	f.addCredit(t, id, 4000, false)

	report, err := f.rec.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)

	drift := report.Drifts[0]
	assert.Equal(t, "BK-000001", drift.BookingNumber)
	assert.Equal(t, "5000.00", drift.Stored.StringFixed(2))
	assert.Equal(t, "4000.00", drift.FromLedger.StringFixed(2))
	assert.Equal(t, "1000.00", drift.Delta.StringFixed(2))
}

func TestCheckAllIgnoresReversedCredits(t *testing.T) {
	f := setup(t)
	id := f.addBooking(t, "BK-000001", 4000)
	f.addCredit(t, id, 4000, false)
	f.addCredit(t, id, 2500, true)

	report, err := f.rec.CheckAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Drifts)
}

func TestCheckAllIgnoresDebits(t *testing.T) {
	f := setup(t)
	id := f.addBooking(t, "BK-000001", 4000)
	f.addCredit(t, id, 4000, false)
	f.addDebit(t, id, 700)

	report, err := f.rec.CheckAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Drifts)
}
