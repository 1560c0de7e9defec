package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	ledgerservice "stockledger/internal/ledger/service"
)

type UserStore interface {
	FindActiveByRole(ctx context.Context, role string) (*domain.User, error)
	Insert(ctx context.Context, u domain.User) error
}

type ProductLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Ledger is the reconciliation engine; seeded products get their opening
// entry through it like any other product.
type Ledger interface {
	CreateProduct(ctx context.Context, in ledgerservice.NewProduct, actorID string) (*ledgerservice.ProductResult, error)
	Verify(ctx context.Context, productID string) (*ledgerservice.VerifyResult, error)
}

type UserSeed struct {
	Name  string
	Email string
	Role  string
}

var DefaultUsers = []UserSeed{
	{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
	{Name: "Employee", Email: "employee@example.com", Role: domain.RoleEmployee},
	{Name: "Manager", Email: "manager@example.com", Role: domain.RoleManager},
}

var DefaultProducts = []ledgerservice.NewProduct{
	{Name: "Beras", UniqueCode: "B001", Unit: "kg", BuyPrice: decimal.NewFromInt(10000), SellPrice: decimal.NewFromInt(15000), InitialStock: 10},
	{Name: "Gula", UniqueCode: "G001", Unit: "kg", BuyPrice: decimal.NewFromInt(5000), SellPrice: decimal.NewFromInt(8000), InitialStock: 15},
	{Name: "Telur", UniqueCode: "T001", Unit: "kg", BuyPrice: decimal.NewFromInt(20000), SellPrice: decimal.NewFromInt(30000), InitialStock: 50},
	{Name: "Minyak Goreng", UniqueCode: "M001", Unit: "liter", BuyPrice: decimal.NewFromInt(15000), SellPrice: decimal.NewFromInt(20000), InitialStock: 60},
}

type Result struct {
	Users           []domain.User
	Products        []domain.Product
	CreatedUsers    int
	CreatedProducts int
}

type Seeder struct {
	users    UserStore
	products ProductLister
	ledger   Ledger
	password string
	cost     int
	logger   *zap.Logger
}

func NewSeeder(users UserStore, products ProductLister, ledger Ledger, password string, logger *zap.Logger) *Seeder {
	return &Seeder{
		users:    users,
		products: products,
		ledger:   ledger,
		password: password,
		cost:     bcrypt.DefaultCost,
		logger:   logger,
	}
}

// Run creates one user per role and the starter catalogue. Each part is
// skipped when data of that kind already exists, so Run can be repeated.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	for _, seed := range DefaultUsers {
		user, created, err := s.ensureUser(ctx, seed)
		if err != nil {
			return nil, err
		}
		result.Users = append(result.Users, *user)
		if created {
			result.CreatedUsers++
		}
	}

	existing, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("products already exist, skipping catalogue", zap.Int("count", len(existing)))
		result.Products = existing
		return result, nil
	}

	// opening entries are attributed to the manager
	var actorID string
	for _, u := range result.Users {
		if u.Role == domain.RoleManager {
			actorID = u.ID
		}
	}

	for _, in := range DefaultProducts {
		created, err := s.ledger.CreateProduct(ctx, in, actorID)
		if err != nil {
			return nil, fmt.Errorf("creating product %s: %w", in.UniqueCode, err)
		}

		check, err := s.ledger.Verify(ctx, created.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("verifying product %s: %w", in.UniqueCode, err)
		}
		if !check.Consistent {
			return nil, fmt.Errorf("product %s: stock %d does not match ledger sum %d", in.UniqueCode, check.Stock, check.LedgerSum)
		}

		s.logger.Info("product created", zap.String("uniqueCode", in.UniqueCode), zap.Int("stock", created.Product.Stock))
		result.Products = append(result.Products, created.Product)
		result.CreatedProducts++
	}

	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, seed UserSeed) (*domain.User, bool, error) {
	existing, err := s.users.FindActiveByRole(ctx, seed.Role)
	if err == nil {
		s.logger.Info("user already exists", zap.String("role", seed.Role), zap.String("email", existing.Email))
		return existing, false, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, false, fmt.Errorf("looking up %s user: %w", seed.Role, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.password), s.cost)
	if err != nil {
		return nil, false, fmt.Errorf("hashing password: %w", err)
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: string(hash),
		Role:         seed.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, false, err
	}

	s.logger.Info("user created", zap.String("role", seed.Role), zap.String("email", seed.Email))
	return &user, true, nil
}
