package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/repository"
	"github.com/dairyline/distributor/pkg/metrics"
	"github.com/dairyline/distributor/pkg/trace"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Service applies balance mutations. Every mutation runs in one database
// transaction together with its log row.
//
// Balances are updated with an in-place increment, so two concurrent
// mutations of one dealer both land. The balance echoed in BalanceAfter is
// read back inside the transaction and may already include a concurrent
// writer's delta.
type Service struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a ledger Service
func NewService(logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		logger:  logger.Named("ledger"),
		metrics: m,
		now:     time.Now,
	}
}

// ApplyTransaction appends e to the dealer's log and shifts its balance,
// returning the dealer as persisted afterwards. When ctx already carries a
// transaction the metric is recorded only after that transaction commits.
func (s *Service) ApplyTransaction(ctx context.Context, repo *repository.Repository, dealerID uint, e Entry) (*database.Dealer, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	span := trace.Tracer(cnst.TraceLedger).Start(ctx, cnst.SpanLedgerApply).
		WithAttrs(trace.AttrDealerID.Int64(int64(dealerID)), attribute.String("ledger.type", string(e.Type)))
	defer span.End()

	var out *database.Dealer
	err := repo.Transaction(span.Ctx, func(ctx context.Context) error {
		dealer, err := s.loadDealer(ctx, repo, dealerID)
		if err != nil {
			return err
		}
		if err := repo.AdjustDealerBalance(ctx, dealer, Signed(e.Type, e.Amount)); err != nil {
			return err
		}
		if out, err = s.loadDealer(ctx, repo, dealerID); err != nil {
			return err
		}

		date := e.Date
		if date.IsZero() {
			date = s.now()
		}
		row := &database.DealerTransaction{
			TenantID:     dealer.TenantID,
			DealerID:     dealer.ID,
			Date:         date.UTC(),
			Type:         e.Type,
			Amount:       e.Amount,
			Description:  e.Description,
			Reference:    e.Reference,
			BalanceAfter: out.FinancialInfo.CurrentBalance,
			CreatedBy:    e.CreatedBy,
		}
		return repo.CreateDealerTransaction(ctx, row)
	})
	if err != nil {
		return nil, span.Fail(err)
	}

	database.AfterCommit(ctx, func() {
		s.metrics.LedgerTransaction(string(e.Type), e.Reference.Type)
		s.logger.Debug("ledger transaction applied",
			zap.String("tenant_id", out.TenantID),
			zap.Uint("dealer_id", dealerID),
			zap.String("type", string(e.Type)),
			zap.String("amount", e.Amount.String()),
			zap.String("balance", out.FinancialInfo.CurrentBalance.String()),
		)
	})
	return out, nil
}

// EditOpening replaces a dealer's opening balance and shifts the current
// balance by the change in its signed value. Identical values are a no-op.
func (s *Service) EditOpening(ctx context.Context, repo *repository.Repository, dealerID uint, amount decimal.Decimal, typ database.BalanceType) (*database.Dealer, error) {
	if !typ.Valid() {
		return nil, cnst.ErrInvalidBalanceType
	}
	if amount.IsNegative() {
		return nil, errorx.ValidationError("openingBalance", "must not be negative")
	}
	span := trace.Tracer(cnst.TraceLedger).Start(ctx, cnst.SpanLedgerEditOpening).
		WithAttrs(trace.AttrDealerID.Int64(int64(dealerID)))
	defer span.End()

	var out *database.Dealer
	err := repo.Transaction(span.Ctx, func(ctx context.Context) error {
		dealer, err := s.loadDealer(ctx, repo, dealerID)
		if err != nil {
			return err
		}
		fin := dealer.FinancialInfo
		delta, changed := OpeningEditDelta(fin.OpeningBalance, fin.OpeningBalanceType, amount, typ)
		if !changed {
			out = dealer
			return nil
		}
		if err := repo.SetDealerOpening(ctx, dealer, amount, typ, delta); err != nil {
			return err
		}
		s.logger.Info("opening balance edited",
			zap.String("tenant_id", dealer.TenantID),
			zap.Uint("dealer_id", dealerID),
			zap.String("delta", delta.String()),
		)
		out, err = s.loadDealer(ctx, repo, dealerID)
		return err
	})
	if err != nil {
		return nil, span.Fail(err)
	}
	return out, nil
}

// Statement reconstructs a dealer's ledger over r
func (s *Service) Statement(ctx context.Context, repo *repository.Repository, dealerID uint, r Range) (*Statement, error) {
	span := trace.Tracer(cnst.TraceLedger).Start(ctx, cnst.SpanLedgerStatement).
		WithAttrs(trace.AttrDealerID.Int64(int64(dealerID)))
	defer span.End()
	ctx = span.Ctx

	dealer, err := s.loadDealer(ctx, repo, dealerID)
	if err != nil {
		return nil, span.Fail(err)
	}
	txs, err := repo.ListDealerTransactions(ctx, dealerID)
	if err != nil {
		return nil, span.Fail(err)
	}
	orders, err := repo.ListDealerOrders(ctx, dealerID)
	if err != nil {
		return nil, span.Fail(err)
	}

	st := BuildStatement(StatementInput{Dealer: dealer, Transactions: txs, Orders: orders, Range: r})
	return &st, nil
}

// InvoiceOrder stores order and debits its dealer in one transaction
func (s *Service) InvoiceOrder(ctx context.Context, repo *repository.Repository, order *database.Order) (*database.Dealer, error) {
	if !order.TotalAmount.IsPositive() {
		return nil, cnst.ErrNonPositiveAmount
	}
	var dealer *database.Dealer
	err := repo.Transaction(ctx, func(ctx context.Context) error {
		d, err := s.loadDealer(ctx, repo, order.DealerID)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return errorx.ValidationError("dealerId", "dealer is inactive")
		}
		order.TenantID = d.TenantID
		if order.Status == "" {
			order.Status = database.OrderPending
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		dealer, err = s.ApplyTransaction(ctx, repo, d.ID, Entry{
			Type:        database.BalanceDebit,
			Amount:      order.TotalAmount,
			Description: fmt.Sprintf("Invoice %s", order.OrderNumber),
			Reference:   orderRef(order),
			Date:        order.OrderDate,
			CreatedBy:   order.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return dealer, nil
}

// RecordPayment credits the order's dealer and raises the order's paid
// amount in one transaction
func (s *Service) RecordPayment(ctx context.Context, repo *repository.Repository, orderID uint, amount decimal.Decimal, date time.Time, createdBy uint) (*database.Order, *database.Dealer, error) {
	if !amount.IsPositive() {
		return nil, nil, cnst.ErrNonPositiveAmount
	}
	var (
		order  *database.Order
		dealer *database.Dealer
	)
	err := repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = repo.GetOrder(ctx, orderID)
		if errors.Is(err, cnst.ErrNotFound) {
			return errorx.NotFoundError("order", orderID)
		}
		if err != nil {
			return err
		}
		if order.Status == database.OrderCancelled {
			return errorx.ValidationError("orderId", "order is cancelled")
		}
		if amount.GreaterThan(order.Outstanding()) {
			return errorx.ValidationError("amount", "exceeds outstanding amount "+order.Outstanding().StringFixed(2))
		}

		paid := order.PaidAmount.Add(amount)
		status := database.OrderPartial
		if paid.GreaterThanOrEqual(order.TotalAmount) {
			status = database.OrderPaid
		}
		if err := repo.RecordOrderPayment(ctx, order, paid, status); err != nil {
			return err
		}
		dealer, err = s.ApplyTransaction(ctx, repo, order.DealerID, Entry{
			Type:        database.BalanceCredit,
			Amount:      amount,
			Description: fmt.Sprintf("Payment against %s", order.OrderNumber),
			Reference:   orderRef(order),
			Date:        date,
			CreatedBy:   createdBy,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return order, dealer, nil
}

func (s *Service) loadDealer(ctx context.Context, repo *repository.Repository, id uint) (*database.Dealer, error) {
	d, err := repo.GetDealer(ctx, id)
	if errors.Is(err, cnst.ErrNotFound) {
		return nil, errorx.NotFoundError("dealer", id)
	}
	if err != nil {
		return nil, err
	}
	d.FinancialInfo.CurrentBalance = d.FinancialInfo.CurrentBalance.Round(2)
	return d, nil
}

func orderRef(o *database.Order) database.Reference {
	return database.Reference{Type: database.RefOrder, ID: strconv.FormatUint(uint64(o.ID), 10)}
}
