package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  category TEXT NOT NULL,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  owner_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cart_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.NewFromFloat(price),
		Stock:       stock,
		Category:    "Electronics",
		IsActive:    active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestCreateMintsID(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	cart, err := repo.Create(context.Background(), &models.Cart{})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cart.ID)
}

func TestFindByIDPreloadsItemsInOrder(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	laptop := seedProduct(t, db, "Laptop Gaming", 1299.99, 10, true)
	shoes := seedProduct(t, db, "Running Shoes", 129.99, 30, true)

	cart, err := repo.Create(ctx, &models.Cart{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: laptop.ID, Quantity: 1}))
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: shoes.ID, Quantity: 2}))

	got, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, laptop.ID, got.Items[0].ProductID)
	assert.Equal(t, shoes.ID, got.Items[1].ProductID)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Laptop Gaming", got.Items[0].Product.Name)
}

func TestFindByOwnerReturnsOldestCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := "user-123"
	first, err := repo.Create(ctx, &models.Cart{OwnerID: &owner})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Cart{OwnerID: &owner})
	require.NoError(t, err)

	got, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestDeleteItemReportsAbsence(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	laptop := seedProduct(t, db, "Laptop Gaming", 1299.99, 10, true)
	cart, err := repo.Create(ctx, &models.Cart{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: laptop.ID, Quantity: 1}))

	removed, err := repo.DeleteItem(ctx, cart.ID, laptop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteItem(ctx, cart.ID, laptop.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	laptop := seedProduct(t, db, "Laptop Gaming", 1299.99, 10, true)
	shoes := seedProduct(t, db, "Running Shoes", 129.99, 30, true)
	cart, err := repo.Create(ctx, &models.Cart{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: laptop.ID, Quantity: 1}))
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: shoes.ID, Quantity: 2}))

	require.NoError(t, repo.ClearItems(ctx, cart.ID))

	got, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestUpdateItemQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	laptop := seedProduct(t, db, "Laptop Gaming", 1299.99, 10, true)
	cart, err := repo.Create(ctx, &models.Cart{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: laptop.ID, Quantity: 1}))

	item, err := repo.GetItem(ctx, cart.ID, laptop.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateItemQuantity(ctx, item.ID, 4))

	item, err = repo.GetItem(ctx, cart.ID, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
}
