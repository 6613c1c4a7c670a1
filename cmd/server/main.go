package main // Entry point package

import (
	"context"
	"log"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lahray/ticket-payments/internal/config"
	"github.com/lahray/ticket-payments/internal/dashboard"
	"github.com/lahray/ticket-payments/internal/database"
	"github.com/lahray/ticket-payments/internal/gateway"
	"github.com/lahray/ticket-payments/internal/handler"
	"github.com/lahray/ticket-payments/internal/middleware"
	"github.com/lahray/ticket-payments/internal/queue"
	"github.com/lahray/ticket-payments/internal/router"
	queue_publisher "github.com/lahray/ticket-payments/internal/service"
	"github.com/lahray/ticket-payments/internal/store"
	"github.com/lahray/ticket-payments/internal/workflow"
)

func main() {
	_ = godotenv.Load() // load .env in development; absent in prod

	cfg := config.Load()
	checkout := config.LoadCheckoutConfig()

	st := newStore(cfg)

	splitRules, err := gateway.ParseSplitRules(checkout.SplitJSON)
	if err != nil {
		log.Fatalf("invalid PAYMENT_SPLIT_CONFIG: %v", err)
	}
	gw := gateway.NewClient(gateway.ClientConfig{
		BaseURL:      checkout.BaseURL,
		APIKey:       checkout.APIKey,
		ContractCode: checkout.ContractCode,
		Description:  checkout.Description,
		SplitRules:   splitRules,
	})

	wf := workflow.New(workflow.Config{
		AmountMinor: checkout.AmountMinor,
		Currency:    checkout.Currency,
		RefPrefix:   checkout.RefPrefix,
	}, gw, st, nil)
	wf.Publish = queue_publisher.PublishPaymentRecorded

	// Redis backs the dashboard response cache and the checkout rate
	// limiter; a nil client disables both.
	rdb := config.NewRedisClient()
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCheckout(e, handler.NewCheckoutHandler(wf), handler.NewCallbackHandler(gw), rateMW)
	router.RegisterDashboard(e, handler.NewDashboardHandler(dashboard.NewEngine(st)), cacheMW)

	// Background consumer appends an audit line per recorded payment.
	go func() {
		if err := queue.StartPaymentsConsumer(); err != nil {
			log.Printf("payments consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s store=%s)", addr, cfg.Env, cfg.StoreDriver)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}

// newStore builds the record store named by STORE_DRIVER.
func newStore(cfg config.Config) store.PaymentStore {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("open mysql: %v", err)
		}
		if err := database.EnsureSchema(db, cfg.PaymentsTable); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		return store.NewMySQLStore(db, cfg.PaymentsTable)
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatalf("load aws config: %v", err)
		}
		return store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.PaymentsTable)
	case "memory":
		return store.NewMemoryStore()
	default:
		log.Fatalf("unknown STORE_DRIVER: %q", cfg.StoreDriver)
		return nil
	}
}
