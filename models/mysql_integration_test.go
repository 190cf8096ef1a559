package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/reports"
	"github.com/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func TestConcurrentStockAdjustmentsOnMySQL(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "pos_test")
	t.Setenv("ENABLE_REPORT_CACHE", "true")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	t.Cleanup(func() {
		_ = config.GetRedisDB().Close()
		config.SetRedisDB(nil)
	})
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	ctx := context.Background()

	product, err := models.CreateProduct(ctx, &models.NewProduct{Name: "Widget", Price: decimal.NewFromInt(3)})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := models.Restock(ctx, product.ID, 5, nil); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	// 10 concurrent -1 adjustments against 5 units: the row lock lets exactly 5 through
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := models.AdjustStock(ctx, product.ID, -1, fmt.Sprintf("pick %d", i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, utils.ErrNegativeResultingStock):
				rejected++
			default:
				t.Errorf("AdjustStock: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if succeeded != 5 || rejected != 5 {
		t.Fatalf("expected 5 successes and 5 rejections, got %d and %d", succeeded, rejected)
	}
	inv, err := models.GetInventoryByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetInventoryByProduct: %v", err)
	}
	if inv.Quantity != 0 {
		t.Fatalf("expected 0 left, got %d", inv.Quantity)
	}

	// the CHECK constraint backs up the application check
	err = config.GetDB().Model(&models.Inventory{}).Where("id = ?", inv.ID).
		Update("quantity", -1).Error
	if !errors.Is(utils.TranslateDBError(err, ""), utils.ErrNegativeResultingStock) {
		t.Fatalf("expected the check constraint to reject negative stock, got %v", err)
	}

	// concurrent deliveries of one shipped order restock it once
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Acme", ContactInfo: "orders@acme.example.com"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	po, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID,
		Details:    []*models.NewPurchaseOrderDetail{{ProductId: product.ID, Quantity: 8}},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if _, err := models.UpdatePurchaseOrderStatus(ctx, po.ID, models.PurchaseOrderStatusShipped); err != nil {
		t.Fatalf("ship: %v", err)
	}
	delivered, rejectedDeliveries := deliverConcurrently(t, ctx, po.ID, 6)
	if delivered != 1 || rejectedDeliveries != 5 {
		t.Fatalf("expected 1 delivery and 5 rejections, got %d and %d", delivered, rejectedDeliveries)
	}
	inv, err = models.GetInventoryByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetInventoryByProduct: %v", err)
	}
	if inv.Quantity != 8 {
		t.Fatalf("expected 8 after one delivery, got %d", inv.Quantity)
	}

	// the stock report is served from redis on the second call
	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	first, err := reports.TopProducts(ctx, start, end, 5)
	if err != nil {
		t.Fatalf("TopProducts: %v", err)
	}
	second, err := reports.TopProducts(ctx, start, end, 5)
	if err != nil {
		t.Fatalf("TopProducts (cached): %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cached report differs: %d vs %d rows", len(first), len(second))
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pos-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "redis-cli", "ping"); err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pos-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=pos_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent"); err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// "127.0.0.1:49154\n"
	m := regexp.MustCompile(`:(\d+)`).FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	b, err := exec.Command("docker", args...).CombinedOutput()
	return string(b), err
}
