package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"github.com/dealerstack/vaahan/internal/clock"
	"github.com/dealerstack/vaahan/internal/counter"
	referencedomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/dealerstack/vaahan/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	TxRunner *db.TxRunner
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     bookingdomain.Repository
	RefRepo  referencedomain.Repository
	Counters counter.Repository
}

type Service struct {
	db       *gorm.DB
	txRunner *db.TxRunner
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     bookingdomain.Repository
	refRepo  referencedomain.Repository
	counters counter.Repository
}

func New(p Params) bookingdomain.Service {
	return &Service{
		db:       p.DB,
		txRunner: p.TxRunner,
		log:      p.Log.Named("booking.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		refRepo:  p.RefRepo,
		counters: p.Counters,
	}
}

func (s *Service) Create(ctx context.Context, req bookingdomain.CreateRequest) (*bookingdomain.Response, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, bookingdomain.ErrInvalidActor
	}
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return nil, bookingdomain.ErrInvalidCustomer
	}

	modelID, err := parseID(req.ModelID)
	if err != nil || modelID == 0 {
		return nil, bookingdomain.ErrInvalidModel
	}
	model, err := s.refRepo.FindVehicleModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if model == nil || !model.IsActive {
		return nil, referencedomain.ErrVehicleModelNotFound
	}

	var subdealerID *snowflake.ID
	if strings.TrimSpace(req.SubdealerID) != "" {
		id, err := parseID(req.SubdealerID)
		if err != nil {
			return nil, referencedomain.ErrSubdealerNotFound
		}
		sd, err := s.refRepo.FindSubdealer(ctx, id)
		if err != nil {
			return nil, err
		}
		if sd == nil || !sd.IsActive {
			return nil, referencedomain.ErrSubdealerNotFound
		}
		subdealerID = &id
	}

	var financerID *snowflake.ID
	if strings.TrimSpace(req.FinancerID) != "" {
		id, err := parseID(req.FinancerID)
		if err != nil {
			return nil, referencedomain.ErrFinanceProviderNotFound
		}
		fp, err := s.refRepo.FindFinanceProvider(ctx, id)
		if err != nil {
			return nil, err
		}
		if fp == nil || !fp.IsActive {
			return nil, referencedomain.ErrFinanceProviderNotFound
		}
		financerID = &id
	}

	components, total, discounted, err := s.buildComponents(ctx, model.ProductType, req.Components)
	if err != nil {
		return nil, err
	}
	if discounted.GreaterThan(total) {
		return nil, bookingdomain.ErrDiscountExceedsTotal
	}

	now := s.clock.Now()
	booking := &bookingdomain.Booking{
		ID:               s.genID.Generate(),
		CustomerName:     customer,
		ModelID:          modelID,
		SubdealerID:      subdealerID,
		FinancerID:       financerID,
		TotalAmount:      total,
		DiscountedAmount: discounted,
		ReceivedAmount:   decimal.Zero,
		BalanceAmount:    discounted,
		Version:          1,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		seq, err := s.counters.Next(ctx, tx, counter.SeqBookingNumber)
		if err != nil {
			return err
		}
		booking.BookingNumber = counter.Format("BK", seq)

		if err := s.repo.Insert(ctx, tx, booking); err != nil {
			return err
		}
		for i := range components {
			components[i].BookingID = booking.ID
		}
		return s.repo.InsertComponents(ctx, tx, components)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("discounted_amount", booking.DiscountedAmount.String()),
	)

	return s.toResponse(booking, components), nil
}

func (s *Service) Get(ctx context.Context, id string) (*bookingdomain.Response, error) {
	bookingID, err := parseID(id)
	if err != nil || bookingID == 0 {
		return nil, bookingdomain.ErrInvalidID
	}
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, bookingdomain.ErrNotFound
	}
	components, err := s.repo.ListComponents(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(booking, components), nil
}

func (s *Service) buildComponents(
	ctx context.Context,
	productType referencedomain.ProductType,
	reqs []bookingdomain.ComponentRequest,
) ([]bookingdomain.PriceComponent, decimal.Decimal, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, decimal.Zero, bookingdomain.ErrInvalidComponents
	}

	seen := make(map[snowflake.ID]struct{}, len(reqs))
	components := make([]bookingdomain.PriceComponent, 0, len(reqs))
	total := decimal.Zero
	discounted := decimal.Zero

	for i, cr := range reqs {
		headerID, err := parseID(cr.HeaderID)
		if err != nil || headerID == 0 {
			return nil, total, discounted, bookingdomain.ErrInvalidComponents
		}
		if _, dup := seen[headerID]; dup {
			return nil, total, discounted, bookingdomain.ErrDuplicateComponent
		}
		seen[headerID] = struct{}{}

		header, err := s.refRepo.FindPriceHeader(ctx, headerID)
		if err != nil {
			return nil, total, discounted, err
		}
		if header == nil || !header.IsActive || header.ProductType != productType {
			return nil, total, discounted, referencedomain.ErrPriceHeaderNotFound
		}

		if cr.OriginalValue.IsNegative() {
			return nil, total, discounted, bookingdomain.ErrInvalidComponents
		}
		if cr.DiscountedValue != nil && cr.DiscountedValue.GreaterThan(cr.OriginalValue) {
			return nil, total, discounted, bookingdomain.ErrComponentOverDiscount
		}

		component := bookingdomain.PriceComponent{
			ID:              s.genID.Generate(),
			HeaderID:        headerID,
			OriginalValue:   cr.OriginalValue,
			DiscountedValue: cr.DiscountedValue,
			IsDiscountable:  !header.IsMandatory,
			IsMandatory:     header.IsMandatory,
			Position:        i,
		}
		components = append(components, component)
		total = total.Add(cr.OriginalValue)
		discounted = discounted.Add(component.EffectiveValue())
	}

	return components, total, discounted, nil
}

func (s *Service) toResponse(b *bookingdomain.Booking, components []bookingdomain.PriceComponent) *bookingdomain.Response {
	resp := &bookingdomain.Response{
		ID:               b.ID,
		BookingNumber:    b.BookingNumber,
		CustomerName:     b.CustomerName,
		ModelID:          b.ModelID,
		SubdealerID:      b.SubdealerID,
		FinancerID:       b.FinancerID,
		TotalAmount:      b.TotalAmount,
		DiscountedAmount: b.DiscountedAmount,
		ReceivedAmount:   b.ReceivedAmount,
		BalanceAmount:    b.BalanceAmount,
		CreatedBy:        b.CreatedBy,
		CreatedAt:        b.CreatedAt,
	}
	for _, c := range components {
		resp.Components = append(resp.Components, bookingdomain.ComponentResponse{
			ID:              c.ID,
			HeaderID:        c.HeaderID,
			OriginalValue:   c.OriginalValue,
			DiscountedValue: c.DiscountedValue,
			IsDiscountable:  c.IsDiscountable,
			IsMandatory:     c.IsMandatory,
		})
	}
	return resp
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ParseInt64(value), nil
}
