package reconcile

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dealerstack/vaahan/internal/clock"
	"github.com/dealerstack/vaahan/internal/config"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	obsmetrics "github.com/dealerstack/vaahan/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler periodically recomputes each booking's received amount
// from the ledger and compares it against the stored column. It only
// reports: a drifted row is a bug to investigate, and auto-correcting
// it would destroy the evidence.
type Reconciler struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	settings   *config.SettlementConfigHolder
	ledgerRepo ledgerdomain.Repository
	metrics    *obsmetrics.Metrics

	stop chan struct{}
	done chan struct{}
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Settings   *config.SettlementConfigHolder
	LedgerRepo ledgerdomain.Repository
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

func New(p Params) *Reconciler {
	return &Reconciler{
		db:         p.DB,
		log:        p.Log.Named("reconcile"),
		clock:      p.Clock,
		settings:   p.Settings,
		ledgerRepo: p.LedgerRepo,
		metrics:    p.Metrics,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Drift is one booking whose stored received amount disagrees with the
// ledger sum beyond the configured tolerance.
type Drift struct {
	BookingID     snowflake.ID
	BookingNumber string
	Stored        decimal.Decimal
	FromLedger    decimal.Decimal
	Delta         decimal.Decimal
}

// Report summarizes one reconciliation sweep.
type Report struct {
	Checked int
	Drifts  []Drift
	RanAt   time.Time
}

type bookingRow struct {
	ID             snowflake.ID    `gorm:"column:id"`
	BookingNumber  string          `gorm:"column:booking_number"`
	ReceivedAmount decimal.Decimal `gorm:"column:received_amount"`
}

// CheckAll sweeps every booking once.
func (r *Reconciler) CheckAll(ctx context.Context) (*Report, error) {
	tolerance := decimal.NewFromFloat(r.settings.Get().DriftTolerance)

	var rows []bookingRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, booking_number, received_amount FROM bookings ORDER BY id ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &Report{Checked: len(rows), RanAt: r.clock.Now()}
	for i := range rows {
		row := &rows[i]
		totals, err := r.ledgerRepo.SumByBooking(ctx, r.db, row.ID)
		if err != nil {
			return nil, err
		}
		delta := row.ReceivedAmount.Sub(totals.Credits)
		if delta.Abs().LessThanOrEqual(tolerance) {
			continue
		}
		drift := Drift{
			BookingID:     row.ID,
			BookingNumber: row.BookingNumber,
			Stored:        row.ReceivedAmount,
			FromLedger:    totals.Credits,
			Delta:         delta,
		}
		report.Drifts = append(report.Drifts, drift)

		r.log.Error("balance drift detected",
			zap.String("booking_id", drift.BookingID.String()),
			zap.String("booking_number", drift.BookingNumber),
			zap.String("stored", drift.Stored.StringFixed(2)),
			zap.String("from_ledger", drift.FromLedger.StringFixed(2)),
			zap.String("delta", drift.Delta.StringFixed(2)),
		)
		if r.metrics != nil {
			r.metrics.DriftDetected.Inc()
		}
	}

	if r.metrics != nil {
		total := decimal.Zero
		for _, d := range report.Drifts {
			total = total.Add(d.Delta.Abs())
		}
		f, _ := total.Float64()
		r.metrics.DriftAmount.Set(f)
	}

	r.log.Info("reconciliation sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("drifts", len(report.Drifts)),
	)
	return report, nil
}

func (r *Reconciler) run() {
	defer close(r.done)
	for {
		interval := r.settings.Get().ReconcileInterval
		timer := time.NewTimer(interval)
		select {
		case <-r.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		if _, err := r.CheckAll(ctx); err != nil {
			r.log.Error("reconciliation sweep failed", zap.Error(err))
		}
		cancel()
	}
}

var Module = fx.Module("reconcile",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, r *Reconciler) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go r.run()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(r.stop)
				select {
				case <-r.done:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		})
	}),
)
