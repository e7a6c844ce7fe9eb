package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
)

// CatalogUseCase — справочники товаров, поставщиков и клиентов.
// Остаток товара здесь задаётся только при создании, дальше его меняет LedgerUseCase.
type CatalogUseCase struct {
	productRepo  ProductRepository
	purchaseRepo PurchaseRepository
	supplierRepo SupplierRepository
	clientRepo   ClientRepository
	locker       Locker
	logger       logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	purchaseRepo PurchaseRepository,
	supplierRepo SupplierRepository,
	clientRepo ClientRepository,
	locker Locker,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		clientRepo:   clientRepo,
		locker:       locker,
		logger:       logger,
	}
}

func (c *CatalogUseCase) ListProducts(ctx context.Context, req *ListReq) (*ProductPage, error) {
	const op = "CatalogUseCase.ListProducts"

	if err := validateListReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := c.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	found := paginate.Filter(products, req.Query, func(p domain.Product) []string {
		return []string{
			p.Name,
			p.Description,
			string(p.Kind),
			p.Price.StringFixed(pricePlaces),
			strconv.FormatInt(p.Quantity, 10),
		}
	})
	page := paginate.Slice(found, req.Page, req.PageSize)

	return &page, nil
}

// CreateProduct заводит товар с начальным остатком. У услуги остаток всегда 0.
func (c *CatalogUseCase) CreateProduct(ctx context.Context, in *ProductInput) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	if err := validateProductInput(in); err != nil {
		return nil, e.Wrap(op, err)
	}
	if in.Kind == domain.ProductKindService && in.Quantity != 0 {
		return nil, e.Wrap(op, e.NewValidationError("quantity", "must be 0 for a service"))
	}

	created, err := c.productRepo.Create(ctx, domain.NewProduct(
		strings.TrimSpace(in.Name),
		strings.TrimSpace(in.Description),
		in.Price,
		in.Quantity,
		in.Kind,
	))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("product %s created: %s (%s)", created.ID, created.Name, created.Kind)
	return created, nil
}

// UpdateProduct меняет карточку товара. Количество из входа игнорируется.
// Тип меняется только у позиции без остатка и без действующих закупок.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, id string, in *ProductInput) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	if err := validateProductInput(in); err != nil {
		return nil, e.Wrap(op, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.NewValidationError("id", "is required"))
	}

	// Под той же блокировкой, что и учёт: закупка не проскочит между проверкой и сменой типа
	release, err := lockProduct(ctx, c.locker, c.logger, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer release()

	current, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if in.Kind != current.Kind {
		if err := c.checkKindChange(ctx, current); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	updated := *current
	updated.Name = strings.TrimSpace(in.Name)
	updated.Description = strings.TrimSpace(in.Description)
	updated.Price = in.Price
	updated.Kind = in.Kind

	if err := c.productRepo.Update(ctx, &updated); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &updated, nil
}

// checkKindChange запрещает смену типа, пока остаток или действующие закупки учтены по прежнему типу.
func (c *CatalogUseCase) checkKindChange(ctx context.Context, current *domain.Product) error {
	if current.Quantity != 0 {
		return e.NewValidationError("kind", "cannot change kind of a product with stock on hand")
	}

	purchases, err := c.purchaseRepo.List(ctx)
	if err != nil {
		return err
	}
	active := 0
	for _, p := range purchases {
		if p.ProductID == current.ID && !p.Voided {
			active++
		}
	}
	if active > 0 {
		return e.NewValidationError("kind", fmt.Sprintf(
			"cannot change kind while %d active purchase(s) reference the product, void them first", active))
	}

	return nil
}

func (c *CatalogUseCase) ListSuppliers(ctx context.Context, req *ListReq) (*SupplierPage, error) {
	const op = "CatalogUseCase.ListSuppliers"

	if err := validateListReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	suppliers, err := c.supplierRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	found := paginate.Filter(suppliers, req.Query, func(s domain.Supplier) []string {
		return []string{s.FirstName, s.LastName, s.Email, s.Phone, s.Address}
	})
	page := paginate.Slice(found, req.Page, req.PageSize)

	return &page, nil
}

func (c *CatalogUseCase) CreateSupplier(ctx context.Context, in *SupplierInput) (*domain.Supplier, error) {
	const op = "CatalogUseCase.CreateSupplier"

	if err := validateStruct(in).OrNil(); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.supplierRepo.Create(ctx, supplierFromInput("", in))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

func (c *CatalogUseCase) UpdateSupplier(ctx context.Context, id string, in *SupplierInput) (*domain.Supplier, error) {
	const op = "CatalogUseCase.UpdateSupplier"

	if err := validateID(id); err != nil {
		return nil, e.Wrap(op, err)
	}
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, e.Wrap(op, err)
	}

	supplier := supplierFromInput(id, in)
	if err := c.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, e.Wrap(op, err)
	}

	return supplier, nil
}

// DeleteSupplier удаляет поставщика. Прошлые закупки хранят его имя и остаются читаемыми.
func (c *CatalogUseCase) DeleteSupplier(ctx context.Context, id string) error {
	const op = "CatalogUseCase.DeleteSupplier"

	if err := validateID(id); err != nil {
		return e.Wrap(op, err)
	}
	if err := c.supplierRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *CatalogUseCase) ListClients(ctx context.Context, req *ListReq) (*ClientPage, error) {
	const op = "CatalogUseCase.ListClients"

	if err := validateListReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	clients, err := c.clientRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	found := paginate.Filter(clients, req.Query, func(cl domain.Client) []string {
		return []string{cl.FirstName, cl.LastName, cl.Email, cl.Phone}
	})
	page := paginate.Slice(found, req.Page, req.PageSize)

	return &page, nil
}

func (c *CatalogUseCase) CreateClient(ctx context.Context, in *ClientInput) (*domain.Client, error) {
	const op = "CatalogUseCase.CreateClient"

	if err := validateStruct(in).OrNil(); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.clientRepo.Create(ctx, clientFromInput("", in))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

func (c *CatalogUseCase) UpdateClient(ctx context.Context, id string, in *ClientInput) (*domain.Client, error) {
	const op = "CatalogUseCase.UpdateClient"

	if err := validateID(id); err != nil {
		return nil, e.Wrap(op, err)
	}
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, e.Wrap(op, err)
	}

	client := clientFromInput(id, in)
	if err := c.clientRepo.Update(ctx, client); err != nil {
		return nil, e.Wrap(op, err)
	}

	return client, nil
}

func (c *CatalogUseCase) DeleteClient(ctx context.Context, id string) error {
	const op = "CatalogUseCase.DeleteClient"

	if err := validateID(id); err != nil {
		return e.Wrap(op, err)
	}
	if err := c.clientRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func validateProductInput(in *ProductInput) error {
	if in == nil {
		return e.NewValidationError("body", "is required")
	}

	verr := validateStruct(in)
	checkPrice(verr, "price", in.Price)

	return verr.OrNil()
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return e.NewValidationError("id", "is required")
	}
	return nil
}

func supplierFromInput(id string, in *SupplierInput) *domain.Supplier {
	return &domain.Supplier{
		ID:        id,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		Address:   strings.TrimSpace(in.Address),
	}
}

func clientFromInput(id string, in *ClientInput) *domain.Client {
	return &domain.Client{
		ID:        id,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
	}
}
