package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bitesquicky/internal/config"
	"bitesquicky/internal/database"
	"bitesquicky/internal/handlers"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/middleware"
	"bitesquicky/internal/ordering"
	"bitesquicky/internal/realtime"
	"bitesquicky/internal/receipt"
	"bitesquicky/internal/storage"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	zl, err := logger.Init(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.JWTSecret == "" {
		zl.Fatal("JWT_SECRET is required")
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		zl.Fatal("mongo connect failed", zap.Error(err))
	}
	db := client.Database(cfg.DBName)
	zl.Info("MongoDB connected", zap.String("db", db.Name()), zap.Bool("transactions", cfg.Transactions))

	if err := database.EnsureIndexes(db); err != nil {
		zl.Warn("index bootstrap incomplete", zap.Error(err))
	}

	store := database.New(db, cfg.Transactions)
	if err := store.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zl.Warn("bootstrap admin not created", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	// With the change stream on, every write reaches the hub through Mongo, so
	// local write paths stay quiet to avoid duplicate events.
	var events realtime.Publisher = hub
	if cfg.WatchOrders {
		events = realtime.Discard{}
		go store.WatchOrders(ctx, hub)
	}

	loc := cfg.Location()
	settings := handlers.ReceiptSettings{
		Brand: receipt.Branding{
			StoreName: cfg.StoreName,
			Tagline:   cfg.StoreTagline,
			Phone:     cfg.StorePhone,
			Location:  loc,
		},
		WhatsAppNumber: cfg.WhatsAppNumber,
	}
	blobs := storage.NewLocal(cfg.PublicDir, cfg.PublicBaseURL)
	placer := ordering.NewPlacer(store, ordering.WithPublisher(events))

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Static("/public", cfg.PublicDir)

	r.GET("/health", handlers.Health(store))

	r.GET("/menu", handlers.GetMenu(store))
	r.GET("/menu/:id", handlers.GetMenuItem(store))
	r.POST("/menu/:id/view", handlers.RecordMenuView(store))
	r.GET("/pickup-zones", handlers.GetPickupZones(store))
	r.GET("/delivery-tiers", handlers.GetDeliveryTiers(store))

	r.POST("/cart", handlers.CreateCart(store))
	r.GET("/cart/:cartId", handlers.GetCart(store))
	r.DELETE("/cart/:cartId", handlers.ClearCart(store))
	r.GET("/cart/:cartId/quote", handlers.QuoteCart(store))
	r.POST("/cart/:cartId/items", handlers.AddCartItem(store))
	r.PATCH("/cart/:cartId/items/:itemId", handlers.UpdateCartItem(store))
	r.DELETE("/cart/:cartId/items/:itemId", handlers.RemoveCartItem(store))

	r.POST("/orders", handlers.PlaceOrder(placer, settings))
	r.GET("/orders/trace", handlers.TraceOrders(store))
	r.GET("/orders/receipt/:code", handlers.GetPublicReceipt(store, settings))
	r.GET("/orders/receipt/:code/pdf", handlers.GetPublicReceiptPDF(store, settings))

	r.POST("/admin/login", handlers.AdminLogin(store, cfg.JWTSecret, cfg.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "email": c.GetString("adminEmail")})
		})

		admin.GET("/menu", handlers.GetAllMenuItems(store))
		admin.POST("/menu", handlers.CreateMenuItem(store, blobs))
		admin.PUT("/menu/:id", handlers.UpdateMenuItem(store, blobs))
		admin.DELETE("/menu/:id", handlers.DeleteMenuItem(store, blobs))

		admin.GET("/tiers", handlers.GetTierReport(store))
		admin.POST("/tiers", handlers.CreateDeliveryTier(store))
		admin.PUT("/tiers/:id", handlers.UpdateDeliveryTier(store))
		admin.DELETE("/tiers/:id", handlers.DeleteDeliveryTier(store))

		admin.GET("/zones", handlers.GetPickupZones(store))
		admin.POST("/zones", handlers.CreatePickupZone(store))
		admin.PUT("/zones/:id", handlers.UpdatePickupZone(store))
		admin.DELETE("/zones/:id", handlers.DeletePickupZone(store))

		admin.GET("/orders", handlers.GetAllOrders(store))
		admin.GET("/orders/export", handlers.ExportOrders(store, loc))
		admin.GET("/orders/stream", realtime.Stream(hub, "orders", realtime.MaskAll))
		admin.GET("/orders/:id", handlers.GetOrderDetails(store, settings))
		admin.GET("/orders/:id/receipt.pdf", handlers.GetAdminReceiptPDF(store, settings))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(store, events))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(store, events))

		admin.GET("/stats", handlers.GetOrderStats(store))
		admin.POST("/close-day", handlers.CloseDay(store, loc, events))
		admin.GET("/profits", handlers.GetDailyProfits(store))

		admin.GET("/notifications", handlers.GetNotifications(store))
		admin.PUT("/notifications/read", handlers.MarkNotificationsRead(store))
		admin.PUT("/notifications/:id/read", handlers.MarkNotificationsRead(store))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown incomplete", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		zl.Warn("mongo disconnect failed", zap.Error(err))
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Idempotency-Key")
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	return cfg
}
