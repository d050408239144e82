// Command inventory-demo walks through the product cache lifecycle: a cold
// read populates products_all, a second read is served from the cache, and
// every write drops the product namespace so the next read is fresh.
//
// Configuration comes from an optional YAML file and INVENTORY_* variables:
//
//	inventory-demo -config inventory.yaml
//	INVENTORY_CACHE_BACKEND=redis INVENTORY_REDIS_ADDRS=localhost:6379 inventory-demo
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-inventory-cache/internal/config"
	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/goliatone/go-inventory-cache/pkg/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	showMetrics := flag.Bool("metrics", true, "print cache metrics at the end")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *configPath, *showMetrics); err != nil {
		log.Fatalf("inventory-demo: %v", err)
	}
}

func run(ctx context.Context, configPath string, showMetrics bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("🚀 Inventory cache demo")
	fmt.Println()

	fmt.Println("📦 Step 1: Building the container...")
	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			container.Logger().Warn("close container", zap.Error(err))
		}
	}()
	fmt.Printf("   ✅ db=%s cache=%s ttl=%v codec=%s\n",
		cfg.Database.Driver, cfg.Cache.Backend, cfg.Service.TTL, cfg.Service.Codec)
	fmt.Println()

	svc := container.Service()

	fmt.Println("🗄️  Step 2: Seeding products...")
	laptop, err := svc.Create(ctx, inventory.Draft{
		Name:     "Laptop",
		Category: "Electronics",
		Price:    decimal.RequireFromString("999.99"),
		Quantity: 10,
	})
	if err != nil {
		return fmt.Errorf("create laptop: %w", err)
	}
	if _, err := svc.Create(ctx, inventory.Draft{
		Name:     "Mouse",
		Category: "Electronics",
		Price:    decimal.RequireFromString("29.99"),
		Quantity: 50,
	}); err != nil {
		return fmt.Errorf("create mouse: %w", err)
	}
	fmt.Println("   ✅ Laptop and Mouse stored")
	fmt.Println()

	fmt.Println("🔍 Step 3: Reading the product list...")
	if err := timedList(ctx, svc, "First GetAll (cache MISS)"); err != nil {
		return err
	}
	if err := timedList(ctx, svc, "Second GetAll (cache HIT)"); err != nil {
		return err
	}
	fmt.Printf("   Cached keys: %v\n", cachedKeys(ctx, container, svc))
	fmt.Println()

	fmt.Println("➕ Step 4: Creating a product invalidates the cache...")
	if _, err := svc.Create(ctx, inventory.Draft{
		Name:     "Desk Chair",
		Category: "Furniture",
		Price:    decimal.RequireFromString("199.99"),
		Quantity: 15,
	}); err != nil {
		return fmt.Errorf("create desk chair: %w", err)
	}
	fmt.Printf("   Cached keys after create: %v\n", cachedKeys(ctx, container, svc))
	if err := timedList(ctx, svc, "GetAll after create (cache MISS)"); err != nil {
		return err
	}
	fmt.Println()

	fmt.Println("✏️  Step 5: Updating a product...")
	changes := laptop.Draft()
	changes.Price = changes.Price.Mul(decimal.RequireFromString("0.9"))
	updated, err := svc.Update(ctx, laptop.ID, changes)
	if err != nil {
		return fmt.Errorf("update laptop: %w", err)
	}
	fmt.Printf("   Laptop price %s -> %s\n", laptop.Price.StringFixed(2), updated.Price.StringFixed(2))
	if err := timedList(ctx, svc, "GetAll after update (cache MISS)"); err != nil {
		return err
	}
	fmt.Println()

	fmt.Println("🔎 Step 6: Searching (never cached)...")
	found, err := svc.Search(ctx, "electronics")
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	for _, p := range found {
		fmt.Printf("   • %s (%s) %s x%d\n", p.Name, p.Category, p.Price.StringFixed(2), p.Quantity)
	}
	fmt.Println()

	fmt.Println("🗑️  Step 7: Deleting a product...")
	if err := svc.Delete(ctx, laptop.ID); err != nil {
		return fmt.Errorf("delete laptop: %w", err)
	}
	if err := timedList(ctx, svc, "GetAll after delete (cache MISS)"); err != nil {
		return err
	}
	fmt.Println()

	if showMetrics && container.Metrics() != nil {
		fmt.Println("📊 Cache metrics:")
		if err := printMetrics(container.Metrics().Registry()); err != nil {
			return err
		}
		fmt.Println()
	}

	fmt.Println("🎉 Demo completed successfully!")
	return nil
}

func timedList(ctx context.Context, svc *inventory.Service, label string) error {
	start := time.Now()
	products, err := svc.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	fmt.Printf("   📍 %s: %d products (took %v)\n", label, len(products), time.Since(start))
	return nil
}

func cachedKeys(ctx context.Context, container *di.Container, svc *inventory.Service) []string {
	keys, err := container.Store().ScanKeys(ctx, svc.InvalidationPattern())
	if err != nil {
		container.Logger().Warn("scan cached keys", zap.Error(err))
		return nil
	}
	return keys
}

func printMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
