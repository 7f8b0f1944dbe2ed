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
	"github.com/dealerstack/vaahan/internal/counter"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	obsmetrics "github.com/dealerstack/vaahan/internal/observability/metrics"
	receiptdomain "github.com/dealerstack/vaahan/internal/receipt/domain"
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
	Repo        receiptdomain.Repository
	LedgerRepo  ledgerdomain.Repository
	BookingRepo bookingdomain.Repository
	RefRepo     refdomain.Repository
	Counters    counter.Repository
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
	repo        receiptdomain.Repository
	ledgerRepo  ledgerdomain.Repository
	bookingRepo bookingdomain.Repository
	refRepo     refdomain.Repository
	counters    counter.Repository
	auditSvc    auditdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) receiptdomain.Service {
	return &Service{
		db:          p.DB,
		txRunner:    p.TxRunner,
		log:         p.Log.Named("receipt.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		settings:    p.Settings,
		repo:        p.Repo,
		ledgerRepo:  p.LedgerRepo,
		bookingRepo: p.BookingRepo,
		refRepo:     p.RefRepo,
		counters:    p.Counters,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
	}
}

func (s *Service) Add(ctx context.Context, req receiptdomain.AddRequest) (*receiptdomain.Response, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	if !req.Amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	if !req.PaymentMode.Valid() {
		return nil, ledgerdomain.ErrInvalidPaymentMode
	}
	bookingID, err := parseID(req.BookingID)
	if err != nil || bookingID == 0 {
		return nil, ledgerdomain.ErrInvalidBookingID
	}

	loc, err := s.resolveLocation(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg := s.settings.Get()
	var (
		entry   *ledgerdomain.LedgerEntry
		receipt *receiptdomain.Receipt
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

			// Balance is recomputed at call time; a stale client view
			// of the booking never authorizes an overpayment.
			remaining := booking.CurrentBalance()
			if req.Amount.GreaterThan(remaining) {
				return &ledgerdomain.AmountExceedsBalanceError{Remaining: remaining}
			}

			seq, err := s.counters.Next(ctx, tx, counter.SeqReceiptNumber)
			if err != nil {
				return err
			}

			now := s.clock.Now()
			receiptID := s.genID.Generate()
			entry = &ledgerdomain.LedgerEntry{
				ID:                   s.genID.Generate(),
				BookingID:            bookingID,
				Amount:               req.Amount,
				PaymentMode:          req.PaymentMode,
				CashLocationID:       loc.CashLocationID,
				BankID:               loc.BankID,
				TransactionReference: req.TransactionReference,
				Remarks:              strings.TrimSpace(req.Remarks),
				SourceKind:           ledgerdomain.SourceKindReceipt,
				SourceID:             &receiptID,
				SourceCollection:     receiptdomain.Receipt{}.TableName(),
				ReceivedBy:           actor,
				CreatedBy:            actor,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := s.ledgerRepo.Insert(ctx, tx, entry); err != nil {
				return err
			}

			receipt = &receiptdomain.Receipt{
				ID:            receiptID,
				ReceiptNumber: counter.Format("RCT", seq),
				BookingID:     bookingID,
				LedgerEntryID: entry.ID,
				Amount:        req.Amount,
				PaymentMode:   req.PaymentMode,
				Status:        receiptdomain.ReceiptStatusActive,
				IssuedBy:      actor,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.Insert(ctx, tx, receipt); err != nil {
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
		s.metrics.ReceiptsIssued.WithLabelValues(string(req.PaymentMode)).Inc()
	}
	_ = s.auditSvc.Record(ctx, actor, "receipt.add", "booking", bookingID.String(), map[string]any{
		"receipt_id":     receipt.ID.String(),
		"receipt_number": receipt.ReceiptNumber,
		"amount":         req.Amount.StringFixed(2),
		"payment_mode":   string(req.PaymentMode),
	})

	return toResponse(receipt), nil
}

func (s *Service) Cancel(ctx context.Context, receiptID, actor string) (*receiptdomain.Response, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ledgerdomain.ErrInvalidActor
	}
	id, err := parseID(receiptID)
	if err != nil || id == 0 {
		return nil, receiptdomain.ErrInvalidReceiptID
	}

	cfg := s.settings.Get()
	var receipt *receiptdomain.Receipt
	err = s.withBalanceRetry(cfg.BalanceRetryAttempts, func() error {
		return s.txRunner.Run(ctx, func(tx *gorm.DB) error {
			var err error
			receipt, err = s.repo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if receipt == nil {
				return receiptdomain.ErrNotFound
			}
			if receipt.Status == receiptdomain.ReceiptStatusCancelled {
				return receiptdomain.ErrAlreadyCancelled
			}

			booking, err := s.bookingRepo.FindByID(ctx, tx, receipt.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return bookingdomain.ErrNotFound
			}

			now := s.clock.Now()
			receipt.Status = receiptdomain.ReceiptStatusCancelled
			receipt.CancelledBy = &actor
			receipt.CancelledAt = &now
			receipt.UpdatedAt = now
			if err := s.repo.MarkCancelled(ctx, tx, receipt); err != nil {
				return err
			}
			if err := s.ledgerRepo.MarkReversed(ctx, tx, receipt.LedgerEntryID, now); err != nil {
				return err
			}

			booking.ApplyCredit(receipt.Amount.Neg())
			booking.UpdatedAt = now
			return s.bookingRepo.UpdateBalance(ctx, tx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditSvc.Record(ctx, actor, "receipt.cancel", "receipt", receipt.ID.String(), map[string]any{
		"booking_id": receipt.BookingID.String(),
		"amount":     receipt.Amount.StringFixed(2),
	})

	return toResponse(receipt), nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]receiptdomain.Response, error) {
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
	resp := make([]receiptdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

// resolveLocation checks the mode-specific location rule and that the
// referenced catalog record exists and is active.
func (s *Service) resolveLocation(ctx context.Context, req receiptdomain.AddRequest) (ledgerdomain.LocationInput, error) {
	var loc ledgerdomain.LocationInput

	if id, ok, err := parseOptionalID(req.CashLocationID); err != nil {
		return loc, refdomain.ErrCashLocationNotFound
	} else if ok {
		loc.CashLocationID = &id
	}
	if id, ok, err := parseOptionalID(req.BankID); err != nil {
		return loc, refdomain.ErrBankNotFound
	} else if ok {
		loc.BankID = &id
	}

	if err := req.PaymentMode.ValidateLocation(loc); err != nil {
		return loc, err
	}

	if loc.CashLocationID != nil {
		cl, err := s.refRepo.FindCashLocation(ctx, *loc.CashLocationID)
		if err != nil {
			return loc, err
		}
		if cl == nil || !cl.IsActive {
			return loc, refdomain.ErrCashLocationNotFound
		}
	}
	if loc.BankID != nil {
		bank, err := s.refRepo.FindBank(ctx, *loc.BankID)
		if err != nil {
			return loc, err
		}
		if bank == nil || !bank.IsActive {
			return loc, refdomain.ErrBankNotFound
		}
	}
	return loc, nil
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

func toResponse(rc *receiptdomain.Receipt) *receiptdomain.Response {
	return &receiptdomain.Response{
		ID:            rc.ID,
		ReceiptNumber: rc.ReceiptNumber,
		BookingID:     rc.BookingID,
		LedgerEntryID: rc.LedgerEntryID,
		Amount:        rc.Amount,
		PaymentMode:   rc.PaymentMode,
		Status:        rc.Status,
		IssuedBy:      rc.IssuedBy,
		CancelledBy:   rc.CancelledBy,
		CancelledAt:   rc.CancelledAt,
		CreatedAt:     rc.CreatedAt,
	}
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ParseInt64(value), nil
}

func parseOptionalID(raw *string) (snowflake.ID, bool, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return 0, false, nil
	}
	id, err := parseID(*raw)
	if err != nil || id == 0 {
		return 0, false, errors.New("invalid_id")
	}
	return id, true, nil
}
