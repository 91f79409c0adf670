package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Order invoices dealers and records payments against invoices
type Order struct {
	base
	ledger *ledger.Service
	now    func() time.Time
}

// NewOrder creates an Order handler
func NewOrder(db *database.DB, svc *ledger.Service, errs *errorx.ErrorHandler, logger *zap.Logger) *Order {
	return &Order{base: base{db: db, errs: errs, logger: logger.Named("handler.order")}, ledger: svc, now: time.Now}
}

// Create stores an order and debits its dealer
func (h *Order) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	order := &database.Order{
		OrderNumber: strings.TrimSpace(req.OrderNumber),
		DealerID:    req.DealerID,
		OrderDate:   h.now(),
		TotalAmount: req.TotalAmount.Round(2),
		Notes:       req.Notes,
		CreatedBy:   actorID(c),
	}
	if order.OrderNumber == "" {
		order.OrderNumber = NewOrderNumber()
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}

	dealer, err := h.ledger.InvoiceOrder(c.Request.Context(), repo, order)
	if err != nil {
		if errors.Is(err, cnst.ErrDuplicateKey) {
			err = errorx.ConflictError("order", "orderNumber", order.OrderNumber)
		}
		h.fail(c, err)
		return
	}
	created(c, dto.OrderResponse{Order: order, DealerBalance: dealer.FinancialInfo.CurrentBalance})
}

// RecordPayment credits the dealer for money received against an order
func (h *Order) RecordPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	date := h.now()
	if req.Date != nil {
		date = *req.Date
	}
	order, dealer, err := h.ledger.RecordPayment(c.Request.Context(), repo, id, req.Amount.Round(2), date, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, dto.OrderResponse{Order: order, DealerBalance: dealer.FinancialInfo.CurrentBalance})
}

// NewOrderNumber returns a random order number such as ORD-1A2B3C4D5E6F
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:12])
}
