package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository reads and seeds the products baseline table. The projection
// path never writes here; rows change only at seed time.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (entities.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("id = ?", productID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Product{}, domainerrors.ErrProductNotFound
		}
		return entities.Product{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListProducts(ctx context.Context) ([]entities.Product, error) {
	var rows []productModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product entities.Product) error {
	row := productModel{
		ID:              product.ID.String(),
		Name:            product.Name,
		QuantityInStock: product.QuantityInStock,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrProductAlreadyExists
		}
		return err
	}
	return nil
}

// SystemClock is the default runtime clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator creates event and entity identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (uuid.UUID, error) {
	return uuid.New(), nil
}

type productModel struct {
	ID              string `gorm:"column:id;type:uuid;primaryKey"`
	Name            string `gorm:"column:name;type:varchar(255)"`
	QuantityInStock int    `gorm:"column:quantity_in_stock"`
}

func (productModel) TableName() string {
	return "products"
}

func (m productModel) toEntity() (entities.Product, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return entities.Product{}, err
	}
	return entities.Product{
		ID:              id,
		Name:            m.Name,
		QuantityInStock: m.QuantityInStock,
	}, nil
}

// Model exposes the persisted row shape for schema migration.
func Model() any {
	return &productModel{}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
