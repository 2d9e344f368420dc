package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// ProductService manages the catalog: product metadata, condition records
// and the stock row created alongside each product. Quantity changes are
// delegated to StockService so every path shares the same locking rules.
type ProductService struct {
	products repository.ProductRepository
	stocks   repository.StockRepository
	sales    repository.SaleRepository
	misc     repository.MiscRepository
	clients  repository.ClientRepository
	stats    repository.StatsRepository
	stockSvc *StockService
	recorder ActivityRecorder
	nowFn    nowFunc
}

func NewProductService(
	products repository.ProductRepository,
	stocks repository.StockRepository,
	sales repository.SaleRepository,
	misc repository.MiscRepository,
	clients repository.ClientRepository,
	stats repository.StatsRepository,
	stockSvc *StockService,
	recorder ActivityRecorder,
) *ProductService {
	return &ProductService{
		products: products,
		stocks:   stocks,
		sales:    sales,
		misc:     misc,
		clients:  clients,
		stats:    stats,
		stockSvc: stockSvc,
		recorder: recorder,
		nowFn:    time.Now,
	}
}

// productRefs carries the lookup rows resolved during validation so the
// response can be assembled without re-querying.
type productRefs struct {
	category  *repository.LookupRow
	brand     *repository.LookupRow
	auth      *repository.LookupRow
	consignor *model.Client
}

// validateRefs checks every reference of a product payload and fails on
// the first missing one. Nothing is written until all pass.
func (s *ProductService) validateRefs(ctx context.Context, categoryExtID, brandExtID string, authExtID, consignorExtID *string, isConsigned bool) (*productRefs, error) {
	refs := &productRefs{}

	var err error
	if refs.category, err = s.misc.FindByExtID(ctx, repository.TableCategories, categoryExtID); err != nil {
		return nil, refErr(err, "category", categoryExtID)
	}
	if refs.brand, err = s.misc.FindByExtID(ctx, repository.TableBrands, brandExtID); err != nil {
		return nil, refErr(err, "brand", brandExtID)
	}
	if authExtID != nil {
		if refs.auth, err = s.misc.FindByExtID(ctx, repository.TableAuthenticators, *authExtID); err != nil {
			return nil, refErr(err, "authenticator", *authExtID)
		}
	}

	if isConsigned {
		if consignorExtID == nil {
			return nil, fmt.Errorf("%w: consigned products require a consignor", ErrValidation)
		}
		if refs.consignor, err = s.clients.FindByExtID(ctx, *consignorExtID); err != nil {
			return nil, refErr(err, "consignor", *consignorExtID)
		}
		if !refs.consignor.IsConsignor {
			return nil, fmt.Errorf("%w: client %s is not a consignor", ErrValidation, *consignorExtID)
		}
	} else if consignorExtID != nil {
		return nil, fmt.Errorf("%w: consignor is only valid on consigned products", ErrValidation)
	}

	return refs, nil
}

func refErr(err error, kind, extID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, extID)
	}
	return err
}

// Create registers a product with its condition record, stock row and
// opening inbound movement, all in one transaction.
func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	refs, err := s.validateRefs(ctx, req.CategoryExtID, req.BrandExtID, req.AuthExtID, req.ConsignorExtID, req.IsConsigned)
	if err != nil {
		return nil, err
	}

	dup, err := s.products.FindDuplicate(ctx, req.Name, req.CategoryExtID, req.BrandExtID, "")
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: product %q already exists for this category and brand", ErrConflict, req.Name)
	}

	product := &model.Product{
		ExternalID:     ids.New(ids.PrefixProduct),
		CategoryExtID:  req.CategoryExtID,
		BrandExtID:     req.BrandExtID,
		AuthExtID:      req.AuthExtID,
		Name:           req.Name,
		Material:       req.Material,
		Hardware:       req.Hardware,
		Code:           req.Code,
		Measurement:    req.Measurement,
		Model:          req.Model,
		Inclusions:     req.Inclusions,
		ConditionExtID: ids.New(ids.PrefixCondition),
		Cost:           req.Cost,
		Price:          req.Price,
		IsConsigned:    req.IsConsigned,
		CreatedBy:      req.CreatedBy,
	}
	if req.IsConsigned {
		product.ConsignorExtID = req.ConsignorExtID
		product.ConsignorSellingPrice = req.ConsignorSellingPrice
	}

	var stock *model.Stock
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.CreateTx(tx, product); err != nil {
			return err
		}
		cond := &model.ProductCondition{
			ExternalID:   product.ConditionExtID,
			ProductExtID: product.ExternalID,
			Interior:     req.Condition.Interior,
			Exterior:     req.Condition.Exterior,
			Overall:      req.Condition.Overall,
			Description:  req.Condition.Description,
			CreatedBy:    req.CreatedBy,
		}
		if err := s.products.CreateConditionTx(tx, cond); err != nil {
			return err
		}

		stock, err = s.stockSvc.CreateInitialTx(tx, product.ExternalID, req.Stock, req.IsConsigned, req.ConsignedDate, req.CreatedBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(req.CreatedBy, "products", "create",
		fmt.Sprintf("Product %s (%s) added with %d in stock", product.ExternalID, product.Name, req.Stock.QtyInStock),
		product.ExternalID)
	return s.assemble(ctx, product, stock, refs)
}

// FindOne returns the denormalized catalog view of one product.
func (s *ProductService) FindOne(ctx context.Context, productExtID string) (*dto.ProductResponse, error) {
	product, err := s.products.FindByExtID(ctx, productExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productExtID)
		}
		return nil, err
	}
	return s.assemble(ctx, product, nil, nil)
}

// FindAll lists products matching the filter as denormalized views.
func (s *ProductService) FindAll(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.assembleList(ctx, products, total, filter.Page, filter.Limit)
}

// FindConsignorItems lists the consigned products supplied by one client.
func (s *ProductService) FindConsignorItems(ctx context.Context, consignorExtID string, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if _, err := s.clients.FindByExtID(ctx, consignorExtID); err != nil {
		return nil, refErr(err, "consignor", consignorExtID)
	}
	products, total, err := s.products.ListByConsignor(ctx, consignorExtID, filter)
	if err != nil {
		return nil, err
	}
	return s.assembleList(ctx, products, total, filter.Page, filter.Limit)
}

// Update rewrites a product's metadata and condition. Stock quantities are
// untouched; use UpdateStock for those.
func (s *ProductService) Update(ctx context.Context, productExtID string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.products.FindByExtID(ctx, productExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productExtID)
		}
		return nil, err
	}

	refs, err := s.validateRefs(ctx, req.CategoryExtID, req.BrandExtID, req.AuthExtID, req.ConsignorExtID, req.IsConsigned)
	if err != nil {
		return nil, err
	}

	dup, err := s.products.FindDuplicate(ctx, req.Name, req.CategoryExtID, req.BrandExtID, productExtID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: product %q already exists for this category and brand", ErrConflict, req.Name)
	}

	product.CategoryExtID = req.CategoryExtID
	product.BrandExtID = req.BrandExtID
	product.AuthExtID = req.AuthExtID
	product.Name = req.Name
	product.Material = req.Material
	product.Hardware = req.Hardware
	product.Code = req.Code
	product.Measurement = req.Measurement
	product.Model = req.Model
	product.Inclusions = req.Inclusions
	product.Cost = req.Cost
	product.Price = req.Price
	product.IsConsigned = req.IsConsigned
	product.UpdatedBy = &req.UpdatedBy
	if req.IsConsigned {
		product.ConsignorExtID = req.ConsignorExtID
		product.ConsignorSellingPrice = req.ConsignorSellingPrice
	} else {
		product.ConsignorExtID = nil
		product.ConsignorSellingPrice = nil
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if req.Condition != nil {
		cond, err := s.products.FindConditionByProductExtID(ctx, productExtID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if cond != nil {
			cond.Interior = req.Condition.Interior
			cond.Exterior = req.Condition.Exterior
			cond.Overall = req.Condition.Overall
			cond.Description = req.Condition.Description
			cond.UpdatedBy = &req.UpdatedBy
			if err := s.products.SaveCondition(ctx, cond); err != nil {
				return nil, err
			}
		}
	}

	s.recorder.Record(req.UpdatedBy, "products", "update",
		fmt.Sprintf("Product %s (%s) updated", product.ExternalID, product.Name), product.ExternalID)
	return s.assemble(ctx, product, nil, refs)
}

// UpdateStock applies a manual quantity adjustment to the product's stock
// unit. An optional new cost updates the product in the same call.
func (s *ProductService) UpdateStock(ctx context.Context, productExtID string, req dto.UpdateStockRequest) (*dto.ProductResponse, error) {
	product, err := s.products.FindByExtID(ctx, productExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productExtID)
		}
		return nil, err
	}
	stock, err := s.stocks.FindByProductExtID(ctx, productExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: stock for product %s", ErrNotFound, productExtID)
		}
		return nil, err
	}

	updated, err := s.stockSvc.AdjustStock(ctx, stock.ExternalID, req)
	if err != nil {
		return nil, err
	}

	if req.Cost != nil {
		product.Cost = *req.Cost
		product.UpdatedBy = &req.UpdatedBy
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
	}
	return s.assembleWithStock(ctx, product, updated)
}

// Remove soft-deletes a product with its condition and stock rows. Refused
// when any sale line references the stock unit: sales history must keep
// resolving.
func (s *ProductService) Remove(ctx context.Context, productExtID string, req dto.DeleteProductRequest) error {
	product, err := s.products.FindByExtID(ctx, productExtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, productExtID)
		}
		return err
	}

	stock, err := s.stocks.FindByProductExtID(ctx, productExtID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if stock != nil {
		used, err := s.sales.HasStockTransactions(ctx, stock.ExternalID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: product %s has sales transactions and cannot be deleted", ErrConflict, productExtID)
		}
	}

	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.SoftDeleteTx(tx, productExtID, req.DeletedBy); err != nil {
			return err
		}
		if err := s.products.SoftDeleteConditionTx(tx, productExtID, req.DeletedBy); err != nil {
			return err
		}
		if stock != nil {
			return s.stocks.SoftDeleteTx(tx, stock.ExternalID, req.DeletedBy)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.Record(req.DeletedBy, "products", "delete",
		fmt.Sprintf("Product %s (%s) deleted", product.ExternalID, product.Name), product.ExternalID)
	return nil
}

// Counts reports how many products were added over the standard windows.
func (s *ProductService) Counts(ctx context.Context) (*dto.ProductCountResponse, error) {
	now := s.nowFn()
	today := sameDate(now)
	yesterday := today.AddDate(0, 0, -1)

	out := &dto.ProductCountResponse{}
	var err error
	if out.TotalCount, err = s.stats.CountProducts(ctx, nil, nil); err != nil {
		return nil, err
	}
	if out.TodayCount, err = s.stats.CountProducts(ctx, &today, nil); err != nil {
		return nil, err
	}
	if out.YesterdayCount, err = s.stats.CountProducts(ctx, &yesterday, &today); err != nil {
		return nil, err
	}
	lastWeek := today.AddDate(0, 0, -7)
	if out.LastWeekCount, err = s.stats.CountProducts(ctx, &lastWeek, nil); err != nil {
		return nil, err
	}
	lastMonth := today.AddDate(0, -1, 0)
	if out.LastMonthCount, err = s.stats.CountProducts(ctx, &lastMonth, nil); err != nil {
		return nil, err
	}
	lastYear := today.AddDate(-1, 0, 0)
	if out.LastYearCount, err = s.stats.CountProducts(ctx, &lastYear, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// assemble builds the denormalized product view, fetching whatever parts
// the caller did not already have in hand.
func (s *ProductService) assemble(ctx context.Context, product *model.Product, stock *model.Stock, refs *productRefs) (*dto.ProductResponse, error) {
	var err error
	if stock == nil {
		stock, err = s.stocks.FindByProductExtID(ctx, product.ExternalID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if refs == nil {
		refs, err = s.resolveRefs(ctx, product)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.ProductResponse{
		ProductExtID:          product.ExternalID,
		Category:              dto.RefName{Code: product.CategoryExtID, Name: refs.category.Name},
		Brand:                 dto.RefName{Code: product.BrandExtID, Name: refs.brand.Name},
		Name:                  product.Name,
		Material:              product.Material,
		Hardware:              product.Hardware,
		Code:                  product.Code,
		Measurement:           product.Measurement,
		Model:                 product.Model,
		Inclusions:            product.Inclusions,
		Cost:                  product.Cost,
		Price:                 product.Price,
		IsConsigned:           product.IsConsigned,
		ConsignorSellingPrice: product.ConsignorSellingPrice,
		CreatedAt:             product.CreatedAt,
		CreatedBy:             product.CreatedBy,
		UpdatedAt:             product.UpdatedAt,
		UpdatedBy:             product.UpdatedBy,
	}
	if refs.auth != nil {
		resp.Authenticator = &dto.RefName{Code: *product.AuthExtID, Name: refs.auth.Name}
	}
	if refs.consignor != nil {
		resp.Consignor = &dto.ConsignorResponse{
			Code:      refs.consignor.ExternalID,
			FirstName: refs.consignor.FirstName,
			LastName:  refs.consignor.LastName,
		}
	}
	if stock != nil {
		resp.StockExtID = stock.ExternalID
		resp.ConsignedDate = stock.ConsignedDate
		resp.Stock = &dto.StockLevelResponse{
			MinQty:     stock.MinQty,
			QtyInStock: stock.AvailQty,
			SoldStock:  stock.SoldQty,
		}
	}

	cond, err := s.products.FindConditionByProductExtID(ctx, product.ExternalID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if cond != nil {
		resp.Condition = &dto.ConditionResponse{
			Interior:    cond.Interior,
			Exterior:    cond.Exterior,
			Overall:     cond.Overall,
			Description: cond.Description,
		}
	}
	return resp, nil
}

func (s *ProductService) assembleWithStock(ctx context.Context, product *model.Product, stock *model.Stock) (*dto.ProductResponse, error) {
	return s.assemble(ctx, product, stock, nil)
}

func (s *ProductService) assembleList(ctx context.Context, products []model.Product, total int64, page, limit int) (*dto.ProductListResponse, error) {
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp, err := s.assemble(ctx, &products[i], nil, nil)
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return &dto.ProductListResponse{
		Data: data,
		Meta: pageMeta(page, limit, total),
	}, nil
}

// resolveRefs loads the lookup rows for display. Missing lookups resolve
// to empty names rather than failing the read: a product must stay
// readable even if its category was later deleted.
func (s *ProductService) resolveRefs(ctx context.Context, product *model.Product) (*productRefs, error) {
	refs := &productRefs{
		category: &repository.LookupRow{ExternalID: product.CategoryExtID},
		brand:    &repository.LookupRow{ExternalID: product.BrandExtID},
	}
	if row, err := s.misc.FindByExtID(ctx, repository.TableCategories, product.CategoryExtID); err == nil {
		refs.category = row
	}
	if row, err := s.misc.FindByExtID(ctx, repository.TableBrands, product.BrandExtID); err == nil {
		refs.brand = row
	}
	if product.AuthExtID != nil {
		if row, err := s.misc.FindByExtID(ctx, repository.TableAuthenticators, *product.AuthExtID); err == nil {
			refs.auth = row
		}
	}
	if product.ConsignorExtID != nil {
		if c, err := s.clients.FindByExtID(ctx, *product.ConsignorExtID); err == nil {
			refs.consignor = c
		}
	}
	return refs, nil
}
