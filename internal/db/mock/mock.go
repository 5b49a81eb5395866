package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appdb "posdash/internal/db"
	applog "posdash/internal/log"
	"posdash/models"
)

const (
	// AdminEmail and AdminPassword sign in to the seeded demo account.
	AdminEmail    = "admin@posdash.app"
	AdminPassword = "kasir123"
)

var sequence atomic.Int64

// New returns an in-memory sqlite database seeded with a small coffee shop.
// Every call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:posdash-mock-%d?mode=memory&cache=shared&_foreign_keys=1", sequence.Add(1))
	db, err := gorm.Open(appdb.SQLite(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps the shared in-memory database alive and
	// avoids sqlite table locks between pooled connections.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")
	tx := db.WithContext(ctx)

	password, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	confirmed := time.Now().UTC()
	identity := &models.Identity{
		ID:               uuid.NewString(),
		Email:            AdminEmail,
		PasswordHash:     string(password),
		EmailConfirmedAt: &confirmed,
	}
	if err := tx.Create(identity).Error; err != nil {
		return err
	}
	if err := tx.Create(&models.Profile{ID: identity.ID, Username: "kasir", Role: models.RoleAdmin}).Error; err != nil {
		return err
	}

	coffee := models.Category{Name: "Coffee"}
	nonCoffee := models.Category{Name: "Non-Coffee"}
	snacks := models.Category{Name: "Snacks"}
	for _, category := range []*models.Category{&coffee, &nonCoffee, &snacks} {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
	}

	beans := models.Material{Name: "Espresso Beans", Stock: 2500, Unit: models.UnitGram}
	milk := models.Material{Name: "Fresh Milk", Stock: 12000, Unit: models.UnitML}
	oatMilk := models.Material{Name: "Oat Milk", Stock: 4000, Unit: models.UnitML}
	syrup := models.Material{Name: "Palm Sugar Syrup", Stock: 1500, Unit: models.UnitML}
	cups := models.Material{Name: "Paper Cup 12oz", Stock: 300, Unit: models.UnitPieces}
	dough := models.Material{Name: "Croissant Dough", Stock: 0, Unit: models.UnitPieces}
	for _, material := range []*models.Material{&beans, &milk, &oatMilk, &syrup, &cups, &dough} {
		if err := tx.Create(material).Error; err != nil {
			return err
		}
	}

	latte := models.Product{Name: "Caffe Latte", Price: decimal.RequireFromString("28000"), CategoriesID: &coffee.ID}
	americano := models.Product{Name: "Americano", Price: decimal.RequireFromString("22000"), CategoriesID: &coffee.ID}
	oatLatte := models.Product{Name: "Oat Milk Latte", Price: decimal.RequireFromString("32000"), CategoriesID: &coffee.ID}
	croissant := models.Product{Name: "Butter Croissant", Price: decimal.RequireFromString("18500"), CategoriesID: &snacks.ID}
	for _, product := range []*models.Product{&latte, &americano, &oatLatte, &croissant} {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
	}

	recipes := []models.Recipe{
		{ProductID: latte.ID, MaterialID: beans.ID, QuantityNeeded: 18},
		{ProductID: latte.ID, MaterialID: milk.ID, QuantityNeeded: 150},
		{ProductID: latte.ID, MaterialID: cups.ID, QuantityNeeded: 1},
		{ProductID: americano.ID, MaterialID: beans.ID, QuantityNeeded: 18},
		{ProductID: americano.ID, MaterialID: cups.ID, QuantityNeeded: 1},
		{ProductID: oatLatte.ID, MaterialID: beans.ID, QuantityNeeded: 18},
		{ProductID: oatLatte.ID, MaterialID: oatMilk.ID, QuantityNeeded: 150},
		{ProductID: oatLatte.ID, MaterialID: syrup.ID, QuantityNeeded: 10},
		{ProductID: croissant.ID, MaterialID: dough.ID, QuantityNeeded: 1},
	}
	if err := tx.Create(&recipes).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
