package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/ledger"
	"github.com/dairyline/distributor/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Dealer manages dealers and their ledgers
type Dealer struct {
	base
	ledger *ledger.Service
}

// NewDealer creates a Dealer handler
func NewDealer(db *database.DB, svc *ledger.Service, errs *errorx.ErrorHandler, logger *zap.Logger) *Dealer {
	return &Dealer{base: base{db: db, errs: errs, logger: logger.Named("handler.dealer")}, ledger: svc}
}

// Create adds a dealer whose current balance starts at its signed opening balance
func (h *Dealer) Create(c *gin.Context) {
	var req dto.CreateDealerRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.OpeningBalance.IsNegative() {
		h.fail(c, errorx.ValidationError("openingBalance", "must not be negative"))
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	typ := database.BalanceType(req.OpeningBalanceType)
	if typ == "" {
		typ = database.BalanceDebit
	}
	dealer := &database.Dealer{
		Code:    strings.TrimSpace(req.Code),
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		FinancialInfo: database.FinancialInfo{
			OpeningBalance:     req.OpeningBalance.Round(2),
			OpeningBalanceType: typ,
			CurrentBalance:     ledger.SignedOpening(req.OpeningBalance.Round(2), typ),
			CreditLimit:        req.CreditLimit,
			CreditDays:         req.CreditDays,
		},
		IsActive: true,
	}
	if req.DiscountPercentage != nil {
		dealer.FinancialInfo.DiscountPercentage = *req.DiscountPercentage
	}
	if req.CommissionPercentage != nil {
		dealer.FinancialInfo.CommissionPercentage = *req.CommissionPercentage
	}

	err = repo.Transaction(c.Request.Context(), func(ctx context.Context) error {
		group, err := h.group(ctx, repo, req.DealerGroupID, req.DealerGroup)
		if err != nil {
			return err
		}
		dealer.DealerGroupID = group.ID
		if err := repo.CreateDealer(ctx, dealer); err != nil {
			if errors.Is(err, cnst.ErrDuplicateKey) {
				return errorx.ConflictError("dealer", "code", dealer.Code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, dealer)
}

// group picks the group of a new dealer. It always belongs to the tenant the
// dealer is stamped with.
func (h *Dealer) group(ctx context.Context, repo *repository.Repository, id uint, name string) (*database.DealerGroup, error) {
	if id != 0 {
		return dealerGroupOf(ctx, repo, id, repo.TenantID())
	}
	if name = strings.TrimSpace(name); name == "" {
		name = repository.DefaultDealerGroup
	}
	g, err := repo.EnsureDealerGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	if g.TenantID != repo.TenantID() {
		return nil, errorx.ErrCrossTenantAccess
	}
	return g, nil
}

// dealerGroupOf loads group id and requires it to belong to tenantID
func dealerGroupOf(ctx context.Context, repo *repository.Repository, id uint, tenantID string) (*database.DealerGroup, error) {
	g, err := repo.GetDealerGroup(ctx, id)
	if err != nil {
		return nil, notFound(err, "dealer group", id)
	}
	if g.TenantID != tenantID {
		return nil, errorx.NotFoundError("dealer group", id)
	}
	return g, nil
}

// List pages through the tenant's dealers
func (h *Dealer) List(c *gin.Context) {
	var q dto.ListDealersQuery
	if err := bindQuery(c, &q); err != nil {
		h.fail(c, err)
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	dealers, total, err := repo.ListDealers(c.Request.Context(), repository.DealerQuery{
		Search:   q.Search,
		GroupID:  q.GroupID,
		Active:   q.Active,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, dto.Page[*database.Dealer]{Items: dealers, Total: total, Page: q.Page, PageSize: q.PageSize})
}

// Get returns one dealer
func (h *Dealer) Get(c *gin.Context) {
	repo, id, err := h.target(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	dealer, err := repo.GetDealer(c.Request.Context(), id)
	if err != nil {
		h.fail(c, notFound(err, "dealer", id))
		return
	}
	ok(c, dealer)
}

// Update edits profile fields and, through the ledger, the opening balance
func (h *Dealer) Update(c *gin.Context) {
	var req dto.UpdateDealerRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	repo, id, err := h.target(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var out *database.Dealer
	err = repo.Transaction(c.Request.Context(), func(ctx context.Context) error {
		dealer, err := repo.GetDealer(ctx, id)
		if err != nil {
			return notFound(err, "dealer", id)
		}

		fields, err := h.profileFields(ctx, repo, dealer, &req)
		if err != nil {
			return err
		}
		if err := repo.UpdateDealer(ctx, dealer, fields); err != nil {
			return err
		}

		if req.OpeningBalance != nil || req.OpeningBalanceType != nil {
			amount := dealer.FinancialInfo.OpeningBalance
			if req.OpeningBalance != nil {
				amount = req.OpeningBalance.Round(2)
			}
			typ := dealer.FinancialInfo.OpeningBalanceType
			if req.OpeningBalanceType != nil {
				typ = database.BalanceType(*req.OpeningBalanceType)
			}
			if _, err := h.ledger.EditOpening(ctx, repo, id, amount, typ); err != nil {
				return err
			}
		}

		out, err = repo.GetDealer(ctx, id)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, out)
}

func (h *Dealer) profileFields(ctx context.Context, repo *repository.Repository, dealer *database.Dealer, req *dto.UpdateDealerRequest) (map[string]any, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.CreditLimit != nil {
		fields["credit_limit"] = *req.CreditLimit
	}
	if req.CreditDays != nil {
		fields["credit_days"] = *req.CreditDays
	}
	if req.DiscountPercentage != nil {
		fields["discount_percentage"] = *req.DiscountPercentage
	}
	if req.CommissionPercentage != nil {
		fields["commission_percentage"] = *req.CommissionPercentage
	}
	if req.DealerGroupID != nil {
		if _, err := dealerGroupOf(ctx, repo, *req.DealerGroupID, dealer.TenantID); err != nil {
			return nil, err
		}
		fields["dealer_group_id"] = *req.DealerGroupID
	}
	return fields, nil
}

// Deactivate soft-deletes a dealer. Dealers that still owe or are owed money
// are refused.
func (h *Dealer) Deactivate(c *gin.Context) {
	repo, id, err := h.target(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var out *database.Dealer
	err = repo.Transaction(c.Request.Context(), func(ctx context.Context) error {
		dealer, err := repo.GetDealer(ctx, id)
		if err != nil {
			return notFound(err, "dealer", id)
		}
		if balance := dealer.FinancialInfo.CurrentBalance.Round(2); !balance.IsZero() {
			return errorx.ErrOutstandingBalance.WithDetail("currentBalance", balance.StringFixed(2))
		}
		if err := repo.UpdateDealer(ctx, dealer, map[string]any{"is_active": false}); err != nil {
			return err
		}
		dealer.IsActive = false
		out = dealer
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log(c).Info("dealer deactivated", zap.Uint("dealer_id", id), zap.String("tenant_id", out.TenantID))
	ok(c, out)
}

// AddTransaction appends a manual ledger entry
func (h *Dealer) AddTransaction(c *gin.Context) {
	var req dto.DealerTransactionRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	repo, id, err := h.target(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	entry := ledger.Entry{
		Type:        database.BalanceType(req.Type),
		Amount:      req.Amount.Round(2),
		Description: req.Description,
		Reference:   database.Reference{Type: req.ReferenceType, ID: req.ReferenceID},
		CreatedBy:   actorID(c),
	}
	if entry.Reference.Type == "" {
		entry.Reference.Type = database.RefAdjustment
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}

	dealer, err := h.ledger.ApplyTransaction(c.Request.Context(), repo, id, entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, dealer)
}

// Statement returns the dealer's reconstructed ledger between from and to
func (h *Dealer) Statement(c *gin.Context) {
	var q dto.StatementQuery
	if err := bindQuery(c, &q); err != nil {
		h.fail(c, err)
		return
	}
	r, err := ParseRange(q.From, q.To)
	if err != nil {
		h.fail(c, err)
		return
	}
	repo, id, err := h.target(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	st, err := h.ledger.Statement(c.Request.Context(), repo, id, r)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, st)
}

func (h *Dealer) target(c *gin.Context) (*repository.Repository, uint, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, 0, err
	}
	repo, err := h.repo(c)
	return repo, id, err
}

// ParseRange parses YYYY-MM-DD bounds in UTC. To covers the whole day.
func ParseRange(from, to string) (ledger.Range, error) {
	var r ledger.Range
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return r, errorx.ValidationError("from", "must be YYYY-MM-DD")
		}
		r.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return r, errorx.ValidationError("to", "must be YYYY-MM-DD")
		}
		r.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, errorx.ValidationError("to", "must not be before from")
	}
	return r, nil
}
