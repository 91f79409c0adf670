package handler

import (
	"errors"
	"strings"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/catalog"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Product manages the tenant's catalog
type Product struct {
	base
}

// NewProduct creates a Product handler
func NewProduct(db *database.DB, errs *errorx.ErrorHandler, logger *zap.Logger) *Product {
	return &Product{base: base{db: db, errs: errs, logger: logger.Named("handler.product")}}
}

// Create prices and stores a product
func (h *Product) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	pricing, err := catalog.ComputePricing(req.MRP, req.DiscountPercentage, req.DiscountAmount)
	if err != nil {
		field := "discount"
		if errors.Is(err, catalog.ErrInvalidMRP) {
			field = "mrp"
		}
		h.fail(c, errorx.ValidationError(field, err.Error()))
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	product := &database.Product{
		Code:     strings.TrimSpace(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Unit:     req.Unit,
		IsActive: true,
	}
	pricing.Apply(product)
	if err := repo.CreateProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, cnst.ErrDuplicateKey) {
			err = errorx.ConflictError("product", "code", product.Code)
		}
		h.fail(c, err)
		return
	}
	created(c, product)
}

// List pages through the catalog
func (h *Product) List(c *gin.Context) {
	var q dto.ListProductsQuery
	if err := bindQuery(c, &q); err != nil {
		h.fail(c, err)
		return
	}
	repo, err := h.repo(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	products, total, err := repo.ListProducts(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, dto.Page[*database.Product]{Items: products, Total: total, Page: q.Page, PageSize: q.PageSize})
}
