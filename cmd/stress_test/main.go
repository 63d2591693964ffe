package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/pantry/internal/adapter/handler"
	"github.com/rl1809/pantry/internal/app"
	"github.com/rl1809/pantry/internal/config"
	"github.com/rl1809/pantry/internal/core/domain"
)

// pantryClient is the slice of the pantry API the load generator drives.
type pantryClient interface {
	Resolve(ctx context.Context, name, unit string) (string, error)
	Add(ctx context.Context, name, unit string, qty decimal.Decimal) error
	Quantity(ctx context.Context, name string) (decimal.Decimal, error)
}

func main() {
	var (
		target   string
		userID   string
		product  string
		unit     string
		quantity string
		requests int
	)

	cmd := &cobra.Command{
		Use:   "stress_test",
		Short: "Fire concurrent pantry adds and verify the totals add up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			qty, err := decimal.NewFromString(quantity)
			if err != nil {
				return fmt.Errorf("invalid --quantity: %w", err)
			}
			ctx := cmd.Context()

			client, closeFn, err := connect(ctx, target, userID)
			if err != nil {
				return err
			}
			defer closeFn()

			return run(ctx, client, product, unit, qty, requests)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "gRPC address of a running server; empty runs against an in-memory app")
	cmd.Flags().StringVar(&userID, "user-id", app.DemoUserID, "user whose pantry receives the adds")
	cmd.Flags().StringVar(&product, "product", "Stress Flour", "product name to add")
	cmd.Flags().StringVar(&unit, "unit", "g", "unit of the product")
	cmd.Flags().StringVar(&quantity, "quantity", "0.25", "quantity per request")
	cmd.Flags().IntVar(&requests, "requests", 200, "number of concurrent requests")

	if err := cmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func connect(ctx context.Context, target, userID string) (pantryClient, func(), error) {
	if target == "" {
		v := viper.New()
		v.Set("store", "memory")
		cfg, err := config.Load(v)
		if err != nil {
			return nil, nil, err
		}
		a, err := app.New(ctx, cfg, zap.NewNop())
		if err != nil {
			return nil, nil, err
		}
		return &localClient{app: a, userID: app.DemoUserID}, func() { a.Close() }, nil
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &remoteClient{client: handler.NewPantryClient(conn), userID: userID}, func() { conn.Close() }, nil
}

func run(ctx context.Context, client pantryClient, product, unit string, qty decimal.Decimal, requests int) error {
	canonical, err := client.Resolve(ctx, product, unit)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", product, err)
	}
	before, err := client.Quantity(ctx, canonical)
	if err != nil {
		return fmt.Errorf("read initial quantity: %w", err)
	}

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.Add(ctx, product, unit, qty); err != nil {
				failCount.Add(1)
				log.Printf("add failed: %v", err)
				return
			}
			successCount.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	after, err := client.Quantity(ctx, canonical)
	if err != nil {
		return fmt.Errorf("read final quantity: %w", err)
	}

	success := successCount.Load()
	fail := failCount.Load()
	expected := before.Add(qty.Mul(decimal.NewFromInt32(success)))

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Product:          %s -> %s (%s)\n", product, canonical, unit)
	fmt.Printf("Initial Quantity: %s\n", before)
	fmt.Printf("Total Requests:   %d\n", requests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if fail == 0 {
		fmt.Printf("PASS: All %d adds succeeded\n", requests)
	} else {
		fmt.Printf("FAIL: %d of %d adds failed\n", fail, requests)
	}

	fmt.Printf("Final Quantity:   %s\n", after)
	if !after.Equal(expected) {
		fmt.Printf("FAIL: Expected quantity %s, got %s\n", expected, after)
		return errors.New("pantry quantity does not match the sum of successful adds")
	}
	fmt.Printf("PASS: Quantity equals %s + %d x %s\n", before, success, qty)
	if fail > 0 {
		return errors.New("some adds failed")
	}
	return nil
}

type localClient struct {
	app    *app.App
	userID string
}

func (c *localClient) Resolve(ctx context.Context, name, unit string) (string, error) {
	res, err := c.app.Services.Resolver.Resolve(ctx, name, unit)
	return res.Product.Name, err
}

func (c *localClient) Add(ctx context.Context, name, unit string, qty decimal.Decimal) error {
	_, err := c.app.Services.Pantry.Add(ctx, c.userID, name, unit, qty)
	return err
}

func (c *localClient) Quantity(ctx context.Context, name string) (decimal.Decimal, error) {
	items, err := c.app.Services.Pantry.List(ctx, c.userID)
	if err != nil {
		return decimal.Zero, err
	}
	return findQuantity(name, items, func(it domain.PantryItem) (string, decimal.Decimal) {
		return it.ProductName, it.Quantity
	}), nil
}

type remoteClient struct {
	client *handler.PantryClient
	userID string
}

func (c *remoteClient) Resolve(ctx context.Context, name, unit string) (string, error) {
	resp, err := c.client.ResolveProduct(ctx, &handler.ResolveProductRequest{Name: name, Unit: unit})
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}

func (c *remoteClient) Add(ctx context.Context, name, unit string, qty decimal.Decimal) error {
	_, err := c.client.AddItem(ctx, &handler.AddItemRequest{UserID: c.userID, Name: name, Unit: unit, Quantity: qty})
	return err
}

func (c *remoteClient) Quantity(ctx context.Context, name string) (decimal.Decimal, error) {
	resp, err := c.client.ListItems(ctx, &handler.ListItemsRequest{UserID: c.userID})
	if err != nil {
		return decimal.Zero, err
	}
	return findQuantity(name, resp.Items, func(it handler.PantryItemResponse) (string, decimal.Decimal) {
		return it.Name, it.Quantity
	}), nil
}

func findQuantity[T any](name string, items []T, fields func(T) (string, decimal.Decimal)) decimal.Decimal {
	want := domain.NormalizeName(name)
	for _, it := range items {
		if n, q := fields(it); domain.NormalizeName(n) == want {
			return q
		}
	}
	return decimal.Zero
}
