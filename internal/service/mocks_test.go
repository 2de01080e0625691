package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/notify"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// memStore backs every mock repository so cross-table behaviour matches the database
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*domain.Category
	brands     map[int64]*domain.Brand
	products   map[int64]*domain.Product
	images     map[int64]*domain.Image
	users      map[int64]*domain.User

	failProductWrites error
	raceDecrement     bool
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[int64]*domain.Category),
		brands:     make(map[int64]*domain.Brand),
		products:   make(map[int64]*domain.Product),
		images:     make(map[int64]*domain.Image),
		users:      make(map[int64]*domain.User),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func matches(value, search string) bool {
	search = strings.TrimSpace(search)
	return search == "" || strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func page[T any](items []T, params domain.ListParams) []T {
	if params.Skip >= len(items) {
		return []T{}
	}
	end := params.Skip + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[params.Skip:end]
}

// mockProductRepository

type mockProductRepository struct{ *memStore }

func (m mockProductRepository) withImages(p *domain.Product) *domain.Product {
	product := *p
	product.Images = []*domain.Image{}
	ids := make([]int64, 0)
	for id, image := range m.images {
		if image.ProductID == p.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		image := *m.images[id]
		product.Images = append(product.Images, &image)
	}
	return &product
}

func (m mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProductWrites != nil {
		return m.failProductWrites
	}
	product.ID = m.id()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	product.Images = []*domain.Image{}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProductWrites != nil {
		return m.failProductWrites
	}
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	product.UpdatedAt = time.Now()
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	for imageID, image := range m.images {
		if image.ProductID == id {
			delete(m.images, imageID)
		}
	}
	delete(m.products, id)
	return nil
}

func (m mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return m.withImages(product), nil
}

func (m mockProductRepository) List(ctx context.Context, params domain.ListParams) ([]*domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := []*domain.Product{}
	for _, product := range m.products {
		if matches(product.Title, params.Search) {
			found = append(found, m.withImages(product))
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return page(found, params), len(found), nil
}

func (m mockProductRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m mockProductRepository) DecrementCount(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if m.raceDecrement || product.Count < quantity {
		return nil, domain.ErrInsufficientStock
	}
	product.Count -= quantity
	return m.withImages(product), nil
}

// mockCategoryRepository

type mockCategoryRepository struct{ *memStore }

func (m mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	category.ID = m.id()
	category.CreatedAt = time.Now()
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	found := *category
	return &found, nil
}

func (m mockCategoryRepository) List(ctx context.Context, params domain.ListParams) ([]*domain.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := []*domain.Category{}
	for _, category := range m.categories {
		if matches(category.Name, params.Search) {
			c := *category
			found = append(found, &c)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return page(found, params), len(found), nil
}

func (m mockCategoryRepository) HasProducts(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// mockBrandRepository

type mockBrandRepository struct{ *memStore }

func (m mockBrandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	brand.ID = m.id()
	brand.CreatedAt = time.Now()
	stored := *brand
	m.brands[brand.ID] = &stored
	return nil
}

func (m mockBrandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[brand.ID]; !ok {
		return domain.ErrBrandNotFound
	}
	stored := *brand
	m.brands[brand.ID] = &stored
	return nil
}

func (m mockBrandRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return domain.ErrBrandNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m mockBrandRepository) FindByID(ctx context.Context, id int64) (*domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	brand, ok := m.brands[id]
	if !ok {
		return nil, domain.ErrBrandNotFound
	}
	found := *brand
	return &found, nil
}

func (m mockBrandRepository) List(ctx context.Context, params domain.ListParams) ([]*domain.Brand, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := []*domain.Brand{}
	for _, brand := range m.brands {
		if matches(brand.Name, params.Search) {
			b := *brand
			found = append(found, &b)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return page(found, params), len(found), nil
}

func (m mockBrandRepository) HasProducts(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.BrandID == id {
			return true, nil
		}
	}
	return false, nil
}

// mockImageRepository

type mockImageRepository struct{ *memStore }

func (m mockImageRepository) Create(ctx context.Context, image *domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	image.ID = m.id()
	image.CreatedAt = time.Now()
	stored := *image
	m.images[image.ID] = &stored
	return nil
}

func (m mockImageRepository) Update(ctx context.Context, image *domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[image.ID]; !ok {
		return domain.ErrImageNotFound
	}
	stored := *image
	m.images[image.ID] = &stored
	return nil
}

func (m mockImageRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[id]; !ok {
		return domain.ErrImageNotFound
	}
	delete(m.images, id)
	return nil
}

func (m mockImageRepository) FindByID(ctx context.Context, id int64) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	image, ok := m.images[id]
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	found := *image
	return &found, nil
}

func (m mockImageRepository) List(ctx context.Context, filter repository.ImageFilter) ([]*domain.Image, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := []*domain.Image{}
	for _, image := range m.images {
		if !matches(image.Name, filter.Search) {
			continue
		}
		if filter.ProductID != nil && image.ProductID != *filter.ProductID {
			continue
		}
		i := *image
		found = append(found, &i)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return page(found, filter.ListParams), len(found), nil
}

func (m mockImageRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, image := range m.images {
		if image.Name == name && image.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// mockUserRepository

type mockUserRepository struct{ *memStore }

func (m mockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// recordingPublisher keeps every published event

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.PurchaseEvent
	err    error
}

func (p *recordingPublisher) PublishPurchase(ctx context.Context, event notify.PurchaseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

var errDatabaseDown = errors.New("connection refused")

// catalog wires every service over one memStore
type catalog struct {
	store     *memStore
	files     afero.Fs
	publisher *recordingPublisher

	products   ProductService
	categories CategoryService
	brands     BrandService
	images     ImageService
	users      UserService
}

var testPages = Pagination{DefaultLimit: 10, MaxLimit: 100}

func newCatalog() *catalog {
	store := newMemStore()
	fs := afero.NewMemMapFs()
	fileStore := storage.NewFileStore(fs)
	publisher := &recordingPublisher{}
	logger := zap.NewNop()

	rules := NewRules(
		mockCategoryRepository{store},
		mockBrandRepository{store},
		mockProductRepository{store},
		mockImageRepository{store},
		fileStore,
	)

	return &catalog{
		store:      store,
		files:      fs,
		publisher:  publisher,
		products:   NewProductService(mockProductRepository{store}, rules, publisher, testPages, logger),
		categories: NewCategoryService(mockCategoryRepository{store}, testPages, logger),
		brands:     NewBrandService(mockBrandRepository{store}, testPages, logger),
		images:     NewImageService(mockImageRepository{store}, rules, fileStore, testPages, logger),
		users:      NewUserService(mockUserRepository{store}),
	}
}

// seed creates a category, a brand and one product with the given stock
func (c *catalog) seed(title string, count int) *domain.Product {
	ctx := context.Background()
	category, _ := c.categories.Create(ctx, "Shoes")
	brand, _ := c.brands.Create(ctx, "Acme")
	product, err := c.products.Create(ctx, &domain.Product{
		Title:       title,
		Description: "test product",
		Price:       decimal.RequireFromString("49.90"),
		Count:       count,
		CategoryID:  category.ID,
		BrandID:     brand.ID,
	})
	if err != nil {
		panic(err)
	}
	return product
}

func (c *catalog) storedProduct(id int64) *domain.Product {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	p, ok := c.store.products[id]
	if !ok {
		return nil
	}
	copied := *p
	return &copied
}
