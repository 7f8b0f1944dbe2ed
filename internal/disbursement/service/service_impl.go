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
	disbursementdomain "github.com/dealerstack/vaahan/internal/disbursement/domain"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	obsmetrics "github.com/dealerstack/vaahan/internal/observability/metrics"
	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/dealerstack/vaahan/pkg/db"
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
	Repo        disbursementdomain.Repository
	LedgerRepo  ledgerdomain.Repository
	BookingRepo bookingdomain.Repository
	RefRepo     refdomain.Repository
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
	repo        disbursementdomain.Repository
	ledgerRepo  ledgerdomain.Repository
	bookingRepo bookingdomain.Repository
	refRepo     refdomain.Repository
	auditSvc    auditdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) disbursementdomain.Service {
	return &Service{
		db:          p.DB,
		txRunner:    p.TxRunner,
		log:         p.Log.Named("disbursement.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		settings:    p.Settings,
		repo:        p.Repo,
		ledgerRepo:  p.LedgerRepo,
		bookingRepo: p.BookingRepo,
		refRepo:     p.RefRepo,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req disbursementdomain.CreateRequest) (*disbursementdomain.Response, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	if !req.Amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	reference := strings.TrimSpace(req.DisbursementReference)
	if reference == "" {
		return nil, disbursementdomain.ErrInvalidReference
	}
	bookingID, err := parseID(req.BookingID)
	if err != nil || bookingID == 0 {
		return nil, ledgerdomain.ErrInvalidBookingID
	}
	providerID, err := parseID(req.ProviderID)
	if err != nil || providerID == 0 {
		return nil, disbursementdomain.ErrInvalidProviderID
	}

	provider, err := s.refRepo.FindFinanceProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider == nil || !provider.IsActive {
		return nil, refdomain.ErrFinanceProviderNotFound
	}

	cfg := s.settings.Get()
	var (
		entry        *ledgerdomain.LedgerEntry
		disbursement *disbursementdomain.FinanceDisbursement
	)
	err = s.withBalanceRetry(cfg.BalanceRetryAttempts, func() error {
		return s.txRunner.Run(ctx, func(tx *gorm.DB) error {
			booking, err := s.bookingRepo.FindByID(ctx, tx, bookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return bookingdomain.ErrNotFound
			}
			if booking.FinancerID == nil || *booking.FinancerID == 0 {
				return disbursementdomain.ErrBookingNotFinanced
			}
			if *booking.FinancerID != providerID {
				return disbursementdomain.ErrProviderMismatch
			}

			remaining := booking.CurrentBalance()
			if req.Amount.GreaterThan(remaining) {
				return &ledgerdomain.AmountExceedsBalanceError{Remaining: remaining}
			}

			now := s.clock.Now()
			disbursementID := s.genID.Generate()
			entry = &ledgerdomain.LedgerEntry{
				ID:                   s.genID.Generate(),
				BookingID:            bookingID,
				Amount:               req.Amount,
				PaymentMode:          ledgerdomain.PaymentModeFinanceDisbursement,
				TransactionReference: &reference,
				Remarks:              strings.TrimSpace(req.Remarks),
				SourceKind:           ledgerdomain.SourceKindDisbursement,
				SourceID:             &disbursementID,
				SourceCollection:     disbursementdomain.FinanceDisbursement{}.TableName(),
				ReceivedBy:           actor,
				CreatedBy:            actor,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := s.ledgerRepo.Insert(ctx, tx, entry); err != nil {
				return err
			}

			disbursement = &disbursementdomain.FinanceDisbursement{
				ID:                    disbursementID,
				BookingID:             bookingID,
				LedgerEntryID:         entry.ID,
				ProviderID:            providerID,
				DisbursementReference: reference,
				Amount:                req.Amount,
				Status:                disbursementdomain.DisbursementStatusCompleted,
				IssuedBy:              actor,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			if err := s.repo.Insert(ctx, tx, disbursement); err != nil {
				if db.IsDuplicateKeyErr(err) {
					return disbursementdomain.ErrDuplicateReference
				}
				return err
			}

			booking.ApplyCredit(req.Amount)
			booking.UpdatedAt = now
			return s.bookingRepo.UpdateBalance(ctx, tx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DisbursementsIssued.Inc()
	}
	_ = s.auditSvc.Record(ctx, actor, "disbursement.create", "booking", bookingID.String(), map[string]any{
		"disbursement_id":        disbursement.ID.String(),
		"disbursement_reference": reference,
		"provider_id":            providerID.String(),
		"amount":                 req.Amount.StringFixed(2),
	})

	return toResponse(disbursement), nil
}

func (s *Service) Cancel(ctx context.Context, disbursementID, actor string) (*disbursementdomain.Response, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	id, err := parseID(disbursementID)
	if err != nil || id == 0 {
		return nil, disbursementdomain.ErrInvalidDisbursementID
	}

	cfg := s.settings.Get()
	var disbursement *disbursementdomain.FinanceDisbursement
	err = s.withBalanceRetry(cfg.BalanceRetryAttempts, func() error {
		return s.txRunner.Run(ctx, func(tx *gorm.DB) error {
			var err error
			disbursement, err = s.repo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if disbursement == nil {
				return disbursementdomain.ErrNotFound
			}
			if disbursement.Status == disbursementdomain.DisbursementStatusCancelled {
				return disbursementdomain.ErrAlreadyCancelled
			}

			booking, err := s.bookingRepo.FindByID(ctx, tx, disbursement.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return bookingdomain.ErrNotFound
			}

			now := s.clock.Now()
			disbursement.Status = disbursementdomain.DisbursementStatusCancelled
			disbursement.CancelledBy = &actor
			disbursement.CancelledAt = &now
			disbursement.UpdatedAt = now
			if err := s.repo.MarkCancelled(ctx, tx, disbursement); err != nil {
				return err
			}
			if err := s.ledgerRepo.MarkReversed(ctx, tx, disbursement.LedgerEntryID, now); err != nil {
				return err
			}

			booking.ApplyCredit(disbursement.Amount.Neg())
			booking.UpdatedAt = now
			return s.bookingRepo.UpdateBalance(ctx, tx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditSvc.Record(ctx, actor, "disbursement.cancel", "finance_disbursement", disbursement.ID.String(), map[string]any{
		"booking_id": disbursement.BookingID.String(),
		"amount":     disbursement.Amount.StringFixed(2),
	})

	return toResponse(disbursement), nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]disbursementdomain.Response, error) {
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

	items, err := s.repo.ListByBooking(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := make([]disbursementdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
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

func toResponse(d *disbursementdomain.FinanceDisbursement) *disbursementdomain.Response {
	return &disbursementdomain.Response{
		ID:                    d.ID,
		BookingID:             d.BookingID,
		LedgerEntryID:         d.LedgerEntryID,
		ProviderID:            d.ProviderID,
		DisbursementReference: d.DisbursementReference,
		Amount:                d.Amount,
		Status:                d.Status,
		IssuedBy:              d.IssuedBy,
		CancelledBy:           d.CancelledBy,
		CancelledAt:           d.CancelledAt,
		CreatedAt:             d.CreatedAt,
	}
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ParseInt64(value), nil
}
