package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/stackmart/storefront-backend/pkg/config"
	"github.com/stackmart/storefront-backend/pkg/db"
	"github.com/stackmart/storefront-backend/pkg/db/models"
	"github.com/stackmart/storefront-backend/pkg/env"
	"github.com/stackmart/storefront-backend/pkg/logger"
)

// sampleProducts is the development catalog loaded into an empty database.
var sampleProducts = []models.Product{
	{
		Name:        "Laptop Gaming",
		Description: "High-performance gaming laptop with RTX graphics",
		Price:       decimal.NewFromFloat(1299.99),
		Stock:       10,
		Category:    "Electronics",
		IsActive:    true,
	},
	{
		Name:        "Wireless Headphones",
		Description: "Premium noise-cancelling wireless headphones",
		Price:       decimal.NewFromFloat(199.99),
		Stock:       25,
		Category:    "Electronics",
		IsActive:    true,
	},
	{
		Name:        "Coffee Maker",
		Description: "Programmable coffee maker with thermal carafe",
		Price:       decimal.NewFromFloat(89.99),
		Stock:       15,
		Category:    "Home & Kitchen",
		IsActive:    true,
	},
	{
		Name:        "Running Shoes",
		Description: "Lightweight running shoes with responsive cushioning",
		Price:       decimal.NewFromFloat(129.99),
		Stock:       30,
		Category:    "Sports",
		IsActive:    true,
	},
	{
		Name:        "Smartphone",
		Description: "Latest smartphone with advanced camera system",
		Price:       decimal.NewFromFloat(799.99),
		Stock:       20,
		Category:    "Electronics",
		IsActive:    true,
	},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if cfg.App.IsProd() {
		logg.Warn(ctx, "refusing to seed a production database")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	var count int64
	if err := dbClient.DB().Model(&models.Product{}).Count(&count).Error; err != nil {
		logg.Error(ctx, "failed to inspect products table", err)
		os.Exit(1)
	}
	if count > 0 && !env.GetBool("STOREFRONT_SEED_FORCE", false) {
		logg.Info(logg.WithField(ctx, "existing_products", count), "products already present, skipping seed")
		return
	}

	for i := range sampleProducts {
		if err := dbClient.DB().Create(&sampleProducts[i]).Error; err != nil {
			logg.Error(logg.WithField(ctx, "product", sampleProducts[i].Name), "failed to seed product", err)
			os.Exit(1)
		}
	}

	logg.Info(logg.WithField(ctx, "seeded", len(sampleProducts)), "sample catalog seeded")
}
