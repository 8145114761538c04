package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/joe-hadchity/lescale-pos/internal/api"
	"github.com/joe-hadchity/lescale-pos/internal/auth"
	"github.com/joe-hadchity/lescale-pos/internal/catalog"
	"github.com/joe-hadchity/lescale-pos/internal/config"
	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/orders"
	"github.com/joe-hadchity/lescale-pos/internal/printing"
	"github.com/joe-hadchity/lescale-pos/internal/repository"
	"github.com/joe-hadchity/lescale-pos/internal/session"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to journal DB")
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to journal DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to journal DB after retries: %v", err)
}

func main() {
	cfg := config.Load()

	db, err := connectDB(cfg.MySQLDSN)
	if err != nil {
		panic(err)
	}

	journal := repository.NewJournal(db)
	if err := journal.EnsureSchema(context.Background(), 3); err != nil {
		log.Fatalf("Failed to create journal tables: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	kafkaWriter := config.NewKafkaWriter("pos-orders")

	checkPin := auth.NewPinChecker(cfg.ManagerPIN)
	authSvc := auth.NewService(cfg.TerminalUser, cfg.TerminalPass, cfg.JWTSecret)
	sessions := session.NewManager(rdb, checkPin)
	cat := catalog.NewAdapter(cfg.CatalogURL, rdb)
	orderSvc := orders.NewService(cfg.SubmissionURL, kafkaWriter, rdb, journal)
	bridge := printing.NewBridge(cfg.PrintURL)

	header := entity.ReceiptHeader{
		BusinessName: cfg.BusinessName,
		Address:      cfg.BusinessAddress,
		Phone:        cfg.BusinessPhone,
	}

	handler := api.NewHandler(sessions, cat, orderSvc, bridge, authSvc, checkPin, header)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     40,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/login", handler.Login)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "pos-terminal",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	pos := e.Group("")
	pos.Use(echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.JwtCustomClaims{}
		},
		SigningKey: authSvc.Secret(),
	}))

	pos.GET("/catalog/categories", handler.Categories)
	pos.GET("/catalog/categories/:id/items", handler.Items)
	pos.GET("/catalog/ingredients", handler.Ingredients)

	pos.POST("/sessions", handler.OpenSession)
	pos.GET("/sessions/:id", handler.GetSession)
	pos.DELETE("/sessions/:id", handler.CancelSession)
	pos.POST("/sessions/:id/hold", handler.HoldSession)
	pos.POST("/sessions/resume/:id", handler.ResumeSession)

	pos.POST("/sessions/:id/lines", handler.AddLine)
	pos.POST("/sessions/:id/lines/:index/quantity", handler.ChangeQuantity)
	pos.DELETE("/sessions/:id/lines/:index", handler.RemoveLine)

	pos.POST("/sessions/:id/checkout", handler.BeginCheckout)
	pos.POST("/sessions/:id/checkout/method", handler.SelectMethod)
	pos.POST("/sessions/:id/checkout/keypad", handler.Keypad)
	pos.POST("/sessions/:id/checkout/discount", handler.BeginDiscount)
	pos.POST("/sessions/:id/checkout/discount/pin", handler.SubmitDiscountPin)
	pos.POST("/sessions/:id/checkout/discount/percent", handler.SubmitDiscountPercent)
	pos.DELETE("/sessions/:id/checkout/discount", handler.CancelDiscount)
	pos.POST("/sessions/:id/checkout/confirm-cash", handler.ConfirmCash)
	pos.DELETE("/sessions/:id/checkout", handler.CancelCheckout)
	pos.POST("/sessions/:id/finalize", handler.Finalize)

	pos.GET("/sessions/:id/receipt/thermal", handler.PreviewThermal)
	pos.GET("/sessions/:id/receipt/invoice", handler.PreviewInvoice)

	pos.GET("/printers", handler.Printers)
	pos.POST("/print", handler.Print)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
