// Package modeltest opens a migrated in-memory database for package tests.
package modeltest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// Setup points config at a fresh SQLite database with every table migrated.
// Redis is disabled so caches and locks fall through.
func Setup(t *testing.T) context.Context {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	config.SetDB(db)
	config.SetRedisDB(nil)
	config.SetLedgerSettings(nil)
	t.Cleanup(func() {
		config.SetDB(nil)
		_ = sqlDB.Close()
	})

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	return context.Background()
}

// Staff creates an active user with the given role and links an employee to it.
func Staff(t *testing.T, ctx context.Context, username string, role string) (*models.User, *models.Employee) {
	t.Helper()
	r, err := models.GetRoleByName(ctx, role)
	if err != nil {
		t.Fatalf("GetRoleByName(%s): %v", role, err)
	}
	user, err := models.CreateUser(ctx, &models.NewUser{
		Username: username,
		Password: "password123",
		RoleId:   r.ID,
		IsActive: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	employee, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Name:     username,
		Position: role,
		UserId:   user.ID,
	})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	return user, employee
}

func Product(t *testing.T, ctx context.Context, name string, price string) *models.Product {
	t.Helper()
	p, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "General",
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", name, err)
	}
	return p
}

func Customer(t *testing.T, ctx context.Context, name string) *models.Customer {
	t.Helper()
	c, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:        name,
		ContactInfo: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCustomer(%s): %v", name, err)
	}
	return c
}

// Item is a sale line priced in decimal text.
func Item(productId int, quantity int, unitPrice string) *models.NewSaleItem {
	return &models.NewSaleItem{
		ProductId: productId,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
}
