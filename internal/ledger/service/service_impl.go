package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/dealerstack/vaahan/internal/audit/domain"
	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"github.com/dealerstack/vaahan/internal/clock"
	"github.com/dealerstack/vaahan/internal/config"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	ledgerrepo "github.com/dealerstack/vaahan/internal/ledger/repository"
	obsmetrics "github.com/dealerstack/vaahan/internal/observability/metrics"
	"github.com/dealerstack/vaahan/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	TxRunner    *db.TxRunner
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Settings    *config.SettlementConfigHolder
	Repo        ledgerdomain.Repository
	BookingRepo bookingdomain.Repository
	AuditSvc    auditdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	txRunner    *db.TxRunner
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	settings    *config.SettlementConfigHolder
	repo        ledgerdomain.Repository
	bookingRepo bookingdomain.Repository
	auditSvc    auditdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:          p.DB,
		txRunner:    p.TxRunner,
		log:         p.Log.Named("ledger.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		settings:    p.Settings,
		repo:        p.Repo,
		bookingRepo: p.BookingRepo,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
	}
}

func (s *Service) AddDebit(ctx context.Context, req ledgerdomain.AddDebitRequest) (*ledgerdomain.EntryResponse, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ledgerdomain.ErrInvalidReason
	}
	if !req.Amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	bookingID, err := parseID(req.BookingID)
	if err != nil || bookingID == 0 {
		return nil, ledgerdomain.ErrInvalidBookingID
	}

	cfg := s.settings.Get()
	if req.Amount.GreaterThan(decimal.NewFromFloat(cfg.DebitWarnThreshold)) {
		s.log.Warn("large manual debit",
			zap.String("booking_id", bookingID.String()),
			zap.String("amount", req.Amount.StringFixed(2)),
			zap.String("actor", actor),
		)
	}

	var entry *ledgerdomain.LedgerEntry
	err = s.withBalanceRetry(cfg.BalanceRetryAttempts, func() error {
		return s.txRunner.Run(ctx, func(tx *gorm.DB) error {
			booking, err := s.bookingRepo.FindByID(ctx, tx, bookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return bookingdomain.ErrNotFound
			}

			now := s.clock.Now()
			entry = &ledgerdomain.LedgerEntry{
				ID:         s.genID.Generate(),
				BookingID:  bookingID,
				Amount:     req.Amount,
				IsDebit:    true,
				Remarks:    reason,
				SourceKind: ledgerdomain.SourceKindManualDebit,
				ReceivedBy: actor,
				CreatedBy:  actor,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := s.repo.Insert(ctx, tx, entry); err != nil {
				return err
			}

			// Debits are unbounded administrative corrections; only
			// the balance moves, receivedAmount stays put.
			booking.ApplyDebit(req.Amount)
			booking.UpdatedAt = now
			return s.bookingRepo.UpdateBalance(ctx, tx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DebitsIssued.Inc()
	}
	_ = s.auditSvc.Record(ctx, actor, "ledger.debit", "booking", bookingID.String(), map[string]any{
		"entry_id": entry.ID.String(),
		"amount":   req.Amount.StringFixed(2),
		"reason":   reason,
	})

	return toEntryResponse(entry), nil
}

func (s *Service) UpdateEntryAmount(ctx context.Context, req ledgerdomain.UpdateEntryRequest) (*ledgerdomain.EntryResponse, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	if !req.Amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	entryID, err := parseID(req.EntryID)
	if err != nil || entryID == 0 {
		return nil, ledgerdomain.ErrInvalidEntryID
	}

	cfg := s.settings.Get()
	var entry *ledgerdomain.LedgerEntry
	err = s.withBalanceRetry(cfg.BalanceRetryAttempts, func() error {
		return s.txRunner.Run(ctx, func(tx *gorm.DB) error {
			var err error
			entry, err = s.repo.FindByID(ctx, tx, entryID)
			if err != nil {
				return err
			}
			if entry == nil {
				return ledgerdomain.ErrEntryNotFound
			}
			if entry.ReversedAt != nil {
				return ledgerdomain.ErrEntryReversed
			}

			booking, err := s.bookingRepo.FindByID(ctx, tx, entry.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return bookingdomain.ErrNotFound
			}

			// The reconciler receives the delta between old and new
			// amount, not the absolute, so nothing is double-counted.
			delta := req.Amount.Sub(entry.Amount)
			if entry.IsDebit {
				booking.ApplyDebit(delta)
			} else {
				if err := entry.PaymentMode.ValidateLocation(ledgerdomain.LocationInput{
					CashLocationID: entry.CashLocationID,
					BankID:         entry.BankID,
				}); err != nil {
					return err
				}
				if delta.IsPositive() && delta.GreaterThan(booking.CurrentBalance()) {
					return &ledgerdomain.AmountExceedsBalanceError{Remaining: booking.CurrentBalance()}
				}
				booking.ApplyCredit(delta)
			}

			now := s.clock.Now()
			entry.Amount = req.Amount
			if req.TransactionReference != nil {
				entry.TransactionReference = req.TransactionReference
			}
			entry.UpdatedAt = now

			if err := s.repo.UpdateAmount(ctx, tx, entry); err != nil {
				return err
			}
			if err := ledgerrepo.SyncSourceAmount(ctx, tx, entry); err != nil {
				return err
			}
			if delta.IsZero() {
				return nil
			}
			booking.UpdatedAt = now
			return s.bookingRepo.UpdateBalance(ctx, tx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LedgerCorrections.Inc()
	}
	_ = s.auditSvc.Record(ctx, actor, "ledger.update_amount", "ledger_entry", entry.ID.String(), map[string]any{
		"booking_id": entry.BookingID.String(),
		"amount":     entry.Amount.StringFixed(2),
	})

	return toEntryResponse(entry), nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]ledgerdomain.EntryResponse, error) {
	id, err := parseID(bookingID)
	if err != nil || id == 0 {
		return nil, ledgerdomain.ErrInvalidBookingID
	}
	booking, err := s.bookingRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}

	entries, err := s.repo.ListByBooking(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := make([]ledgerdomain.EntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, *toEntryResponse(&entries[i]))
	}
	return resp, nil
}

func (s *Service) withBalanceRetry(attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, bookingdomain.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func toEntryResponse(e *ledgerdomain.LedgerEntry) *ledgerdomain.EntryResponse {
	return &ledgerdomain.EntryResponse{
		ID:                   e.ID,
		BookingID:            e.BookingID,
		Amount:               e.Amount,
		PaymentMode:          e.PaymentMode,
		IsDebit:              e.IsDebit,
		CashLocationID:       e.CashLocationID,
		BankID:               e.BankID,
		TransactionReference: e.TransactionReference,
		Remarks:              e.Remarks,
		SourceKind:           e.SourceKind,
		SourceID:             e.SourceID,
		SourceCollection:     e.SourceCollection,
		ReceivedBy:           e.ReceivedBy,
		CreatedBy:            e.CreatedBy,
		CreatedAt:            e.CreatedAt,
	}
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ParseInt64(value), nil
}
