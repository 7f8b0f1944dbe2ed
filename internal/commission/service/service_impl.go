package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/dealerstack/vaahan/internal/audit/domain"
	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"github.com/dealerstack/vaahan/internal/clock"
	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/dealerstack/vaahan/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rateCeiling = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB          *gorm.DB
	TxRunner    *db.TxRunner
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        commissiondomain.Repository
	BookingRepo bookingdomain.Repository
	RefRepo     refdomain.Repository
	AuditSvc    auditdomain.Service
}

type Service struct {
	db          *gorm.DB
	txRunner    *db.TxRunner
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        commissiondomain.Repository
	bookingRepo bookingdomain.Repository
	refRepo     refdomain.Repository
	auditSvc    auditdomain.Service
}

func New(p Params) commissiondomain.Service {
	return &Service{
		db:          p.DB,
		txRunner:    p.TxRunner,
		log:         p.Log.Named("commission.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		bookingRepo: p.BookingRepo,
		refRepo:     p.RefRepo,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) UpsertRates(ctx context.Context, req commissiondomain.UpsertRatesRequest) (*commissiondomain.UpsertRatesResponse, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, commissiondomain.ErrInvalidActor
	}
	subdealerID, err := parseID(req.SubdealerID)
	if err != nil || subdealerID == 0 {
		return nil, commissiondomain.ErrInvalidSubdealerID
	}
	modelID, err := parseID(req.ModelID)
	if err != nil || modelID == 0 {
		return nil, commissiondomain.ErrInvalidModelID
	}
	if req.ApplicableFrom.IsZero() {
		req.ApplicableFrom = s.clock.Now()
	}
	if req.ApplicableTo != nil && !req.ApplicableTo.After(req.ApplicableFrom) {
		return nil, commissiondomain.ErrInvalidDateRange
	}
	if len(req.Rates) == 0 {
		return nil, commissiondomain.ErrEmptyRates
	}

	subdealer, err := s.refRepo.FindSubdealer(ctx, subdealerID)
	if err != nil {
		return nil, err
	}
	if subdealer == nil || !subdealer.IsActive {
		return nil, refdomain.ErrSubdealerNotFound
	}
	model, err := s.refRepo.FindVehicleModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if model == nil || !model.IsActive {
		return nil, refdomain.ErrVehicleModelNotFound
	}

	requested, err := s.validateRates(ctx, model, req.Rates)
	if err != nil {
		return nil, err
	}

	resp := &commissiondomain.UpsertRatesResponse{}
	err = s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		master, err := s.repo.FindMasterByFrom(ctx, tx, subdealerID, modelID, req.ApplicableFrom)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if master == nil {
			master = &commissiondomain.CommissionMaster{
				ID:             s.genID.Generate(),
				SubdealerID:    subdealerID,
				ModelID:        modelID,
				ApplicableFrom: req.ApplicableFrom,
				ApplicableTo:   req.ApplicableTo,
				IsActive:       true,
				CreatedBy:      actor,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.repo.InsertMaster(ctx, tx, master); err != nil {
				return err
			}
		}
		var oldTo *time.Time
		var dateMoved bool
		if !sameDate(master.ApplicableTo, req.ApplicableTo) {
			dateMoved = true
			oldTo = master.ApplicableTo
			master.ApplicableTo = req.ApplicableTo
			master.UpdatedAt = now
			if err := s.repo.UpdateMasterDates(ctx, tx, master); err != nil {
				return err
			}
		}
		resp.MasterID = master.ID

		existing, err := s.repo.ListRates(ctx, tx, master.ID)
		if err != nil {
			return err
		}
		if dateMoved {
			for i := range existing {
				if !existing[i].IsActive {
					continue
				}
				if err := s.recordWindowChange(ctx, tx, master, existing[i].HeaderID, master.ApplicableFrom, oldTo, actor, now); err != nil {
					return err
				}
			}
		}
		byHeader := make(map[snowflake.ID]*commissiondomain.CommissionRate, len(existing))
		for i := range existing {
			byHeader[existing[i].HeaderID] = &existing[i]
		}

		// One changed_at across the whole request so the edit reads as
		// a single event in the history.
		for headerID, rate := range requested {
			current, ok := byHeader[headerID]
			switch {
			case !ok:
				row := &commissiondomain.CommissionRate{
					ID:        s.genID.Generate(),
					MasterID:  master.ID,
					HeaderID:  headerID,
					Rate:      rate,
					IsActive:  true,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := s.repo.InsertRate(ctx, tx, row); err != nil {
					return err
				}
				if err := s.recordChange(ctx, tx, master.ID, headerID, commissiondomain.RateChangeCreated, nil, &rate, actor, now); err != nil {
					return err
				}
				resp.Created++
			case !current.Rate.Equal(rate) || !current.IsActive:
				old := current.Rate
				current.Rate = rate
				current.IsActive = true
				current.UpdatedAt = now
				if err := s.repo.UpdateRate(ctx, tx, current); err != nil {
					return err
				}
				if err := s.recordChange(ctx, tx, master.ID, headerID, commissiondomain.RateChangeUpdated, &old, &rate, actor, now); err != nil {
					return err
				}
				resp.Updated++
			}
		}

		// Headers dropped from the request are deactivated, not deleted.
		for i := range existing {
			current := &existing[i]
			if _, ok := requested[current.HeaderID]; ok || !current.IsActive {
				continue
			}
			old := current.Rate
			current.IsActive = false
			current.UpdatedAt = now
			if err := s.repo.UpdateRate(ctx, tx, current); err != nil {
				return err
			}
			if err := s.recordChange(ctx, tx, master.ID, current.HeaderID, commissiondomain.RateChangeDeactivated, &old, nil, actor, now); err != nil {
				return err
			}
			resp.Deactivated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditSvc.Record(ctx, actor, "commission.upsert_rates", "commission_master", resp.MasterID.String(), map[string]any{
		"subdealer_id": subdealerID.String(),
		"model_id":     modelID.String(),
		"created":      resp.Created,
		"updated":      resp.Updated,
		"deactivated":  resp.Deactivated,
	})

	return resp, nil
}

func (s *Service) SetDateRange(ctx context.Context, req commissiondomain.SetDateRangeRequest) (*commissiondomain.SetDateRangeResponse, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return nil, commissiondomain.ErrInvalidActor
	}
	subdealerID, err := parseID(req.SubdealerID)
	if err != nil || subdealerID == 0 {
		return nil, commissiondomain.ErrInvalidSubdealerID
	}
	if req.ApplicableFrom.IsZero() {
		return nil, commissiondomain.ErrInvalidDateRange
	}
	if req.ApplicableTo != nil && !req.ApplicableTo.After(req.ApplicableFrom) {
		return nil, commissiondomain.ErrInvalidDateRange
	}

	subdealer, err := s.refRepo.FindSubdealer(ctx, subdealerID)
	if err != nil {
		return nil, err
	}
	if subdealer == nil || !subdealer.IsActive {
		return nil, refdomain.ErrSubdealerNotFound
	}

	resp := &commissiondomain.SetDateRangeResponse{}
	err = s.txRunner.Run(ctx, func(tx *gorm.DB) error {
		masters, err := s.repo.ListMastersBySubdealer(ctx, tx, subdealerID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		for i := range masters {
			m := &masters[i]
			if !m.IsActive {
				continue
			}
			// Rows already on the requested window are left untouched.
			if m.ApplicableFrom.Equal(req.ApplicableFrom) && sameDate(m.ApplicableTo, req.ApplicableTo) {
				resp.Skipped++
				continue
			}
			oldFrom := m.ApplicableFrom
			oldTo := m.ApplicableTo
			m.ApplicableFrom = req.ApplicableFrom
			m.ApplicableTo = req.ApplicableTo
			m.UpdatedAt = now
			if err := s.repo.UpdateMasterDates(ctx, tx, m); err != nil {
				return err
			}
			rates, err := s.repo.ListRates(ctx, tx, m.ID)
			if err != nil {
				return err
			}
			for j := range rates {
				if !rates[j].IsActive {
					continue
				}
				if err := s.recordWindowChange(ctx, tx, m, rates[j].HeaderID, oldFrom, oldTo, actor, now); err != nil {
					return err
				}
			}
			resp.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditSvc.Record(ctx, actor, "commission.set_date_range", "subdealer", subdealerID.String(), map[string]any{
		"updated": resp.Updated,
		"skipped": resp.Skipped,
	})

	return resp, nil
}

func (s *Service) Calculate(ctx context.Context, req commissiondomain.CalculateRequest) (*commissiondomain.CalculateResponse, error) {
	subdealerID, err := parseID(req.SubdealerID)
	if err != nil || subdealerID == 0 {
		return nil, commissiondomain.ErrInvalidSubdealerID
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, commissiondomain.ErrInvalidDateRange
	}

	subdealer, err := s.refRepo.FindSubdealer(ctx, subdealerID)
	if err != nil {
		return nil, err
	}
	if subdealer == nil {
		return nil, refdomain.ErrSubdealerNotFound
	}

	bookings, err := s.bookingRepo.ListBySubdealer(ctx, s.db, subdealerID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	resp := &commissiondomain.CalculateResponse{
		SubdealerID: subdealerID,
		Bookings:    make([]commissiondomain.BookingCommission, 0, len(bookings)),
		Total:       decimal.Zero,
	}

	// Rate cards are loaded once per model across the report.
	cardsByModel := make(map[snowflake.ID][]commissiondomain.MasterWithRates)
	headerNames := make(map[snowflake.ID]string)

	for i := range bookings {
		b := &bookings[i]
		cards, ok := cardsByModel[b.ModelID]
		if !ok {
			cards, err = s.loadCards(ctx, subdealerID, b.ModelID)
			if err != nil {
				return nil, err
			}
			cardsByModel[b.ModelID] = cards
		}

		components, err := s.bookingRepo.ListComponents(ctx, s.db, b.ID)
		if err != nil {
			return nil, err
		}

		bc := commissiondomain.BookingCommission{
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			ModelID:       b.ModelID,
			BookedAt:      b.CreatedAt,
			Components:    make([]commissiondomain.ComponentCommission, 0, len(components)),
			Total:         decimal.Zero,
			NoRateCard:    true,
		}
		for j := range components {
			c := &components[j]
			rate, covered := commissiondomain.ResolveRate(cards, c.HeaderID, b.CreatedAt)
			if covered {
				bc.NoRateCard = false
			}
			name, err := s.headerName(ctx, headerNames, c.HeaderID)
			if err != nil {
				return nil, err
			}
			base := c.EffectiveValue()
			comp := commissiondomain.ComponentCommission{
				HeaderID:   c.HeaderID,
				HeaderName: name,
				Base:       base,
				Rate:       rate,
				Commission: decimal.Zero,
			}
			// A component the cards carry no rate for still shows up,
			// as an explicit zero, so the payout sheet accounts for
			// every price line.
			if rate.IsZero() {
				comp.NoRate = true
			} else {
				comp.Commission = commissiondomain.CommissionOn(base, rate)
				bc.Total = bc.Total.Add(comp.Commission)
			}
			bc.Components = append(bc.Components, comp)
		}
		resp.Bookings = append(resp.Bookings, bc)
		resp.Total = resp.Total.Add(bc.Total)
	}
	return resp, nil
}

func (s *Service) ListHistory(ctx context.Context, subdealerID, modelID string) ([]commissiondomain.HistoryResponse, error) {
	sid, err := parseID(subdealerID)
	if err != nil || sid == 0 {
		return nil, commissiondomain.ErrInvalidSubdealerID
	}
	mid, err := parseID(modelID)
	if err != nil || mid == 0 {
		return nil, commissiondomain.ErrInvalidModelID
	}

	items, err := s.repo.ListHistoryByPair(ctx, s.db, sid, mid)
	if err != nil {
		return nil, err
	}
	resp := make([]commissiondomain.HistoryResponse, 0, len(items))
	for i := range items {
		h := &items[i]
		resp = append(resp, commissiondomain.HistoryResponse{
			ID:         h.ID,
			MasterID:   h.MasterID,
			HeaderID:   h.HeaderID,
			ChangeType: h.ChangeType,
			OldRate:    h.OldRate,
			NewRate:    h.NewRate,
			OldFrom:    h.OldFrom,
			OldTo:      h.OldTo,
			NewFrom:    h.NewFrom,
			NewTo:      h.NewTo,
			ChangedBy:  h.ChangedBy,
			ChangedAt:  h.ChangedAt,
		})
	}
	return resp, nil
}

// validateRates checks each requested rate against the header catalog
// and returns the deduplicated header→rate map.
func (s *Service) validateRates(ctx context.Context, model *refdomain.VehicleModel, rates []commissiondomain.RateInput) (map[snowflake.ID]decimal.Decimal, error) {
	requested := make(map[snowflake.ID]decimal.Decimal, len(rates))
	for _, in := range rates {
		headerID, err := parseID(in.HeaderID)
		if err != nil || headerID == 0 {
			return nil, commissiondomain.ErrInvalidHeaderID
		}
		if _, dup := requested[headerID]; dup {
			return nil, commissiondomain.ErrDuplicateHeader
		}
		if in.Rate.IsNegative() || in.Rate.GreaterThan(rateCeiling) {
			return nil, commissiondomain.ErrInvalidRate
		}

		header, err := s.refRepo.FindPriceHeader(ctx, headerID)
		if err != nil {
			return nil, err
		}
		if header == nil || !header.IsActive {
			return nil, refdomain.ErrPriceHeaderNotFound
		}
		if header.IsDiscountOnly {
			return nil, commissiondomain.ErrHeaderNotEligible
		}
		if header.ProductType != model.ProductType {
			return nil, commissiondomain.ErrHeaderProductType
		}
		requested[headerID] = in.Rate
	}
	return requested, nil
}

func (s *Service) loadCards(ctx context.Context, subdealerID, modelID snowflake.ID) ([]commissiondomain.MasterWithRates, error) {
	masters, err := s.repo.ListMastersByPair(ctx, s.db, subdealerID, modelID)
	if err != nil {
		return nil, err
	}
	cards := make([]commissiondomain.MasterWithRates, 0, len(masters))
	for i := range masters {
		rates, err := s.repo.ListRates(ctx, s.db, masters[i].ID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, commissiondomain.MasterWithRates{Master: masters[i], Rates: rates})
	}
	return cards, nil
}

func (s *Service) headerName(ctx context.Context, cache map[snowflake.ID]string, headerID snowflake.ID) (string, error) {
	if name, ok := cache[headerID]; ok {
		return name, nil
	}
	header, err := s.refRepo.FindPriceHeader(ctx, headerID)
	if err != nil {
		return "", err
	}
	name := ""
	if header != nil {
		name = header.Name
	}
	cache[headerID] = name
	return name, nil
}

func (s *Service) recordChange(ctx context.Context, tx *gorm.DB, masterID, headerID snowflake.ID, change commissiondomain.RateChangeType, oldRate, newRate *decimal.Decimal, actor string, at time.Time) error {
	return s.repo.InsertHistory(ctx, tx, &commissiondomain.RateHistory{
		ID:         s.genID.Generate(),
		MasterID:   masterID,
		HeaderID:   headerID,
		ChangeType: change,
		OldRate:    oldRate,
		NewRate:    newRate,
		ChangedBy:  actor,
		ChangedAt:  at,
	})
}

// recordWindowChange appends one UPDATED history row per rate the window
// move touches, carrying the old and new effective dates. The master must
// already hold the new dates when it is called.
func (s *Service) recordWindowChange(ctx context.Context, tx *gorm.DB, master *commissiondomain.CommissionMaster, headerID snowflake.ID, oldFrom time.Time, oldTo *time.Time, actor string, at time.Time) error {
	return s.repo.InsertHistory(ctx, tx, &commissiondomain.RateHistory{
		ID:         s.genID.Generate(),
		MasterID:   master.ID,
		HeaderID:   headerID,
		ChangeType: commissiondomain.RateChangeUpdated,
		OldFrom:    &oldFrom,
		OldTo:      oldTo,
		NewFrom:    &master.ApplicableFrom,
		NewTo:      master.ApplicableTo,
		ChangedBy:  actor,
		ChangedAt:  at,
	})
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ParseInt64(value), nil
}
