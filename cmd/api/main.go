package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"stockmate/internal/blob"
	"stockmate/internal/cache"
	"stockmate/internal/config"
	"stockmate/internal/database"
	"stockmate/internal/handlers"
	"stockmate/internal/mailer"
	"stockmate/internal/obs"
	"stockmate/internal/repository"
	"stockmate/internal/routes"
	"stockmate/internal/service"
)

func main() {
	cfg := config.LoadConfig()
	logger := obs.InitLogger()

	if cfg.JWTSecret == "" {
		log.Fatalln("JWT_SECRET must be set")
	}

	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	products := repository.NewProductRepository(db.Collection("products"))
	transactions := repository.NewTransactionRepository(db.Collection("transactions"))
	notifications := repository.NewNotificationRepository(db.Collection("notifications"))
	categories := repository.NewCategoryRepository(db.Collection("categories"))
	vendors := repository.NewVendorRepository(db.Collection("vendors"))
	users := repository.NewUserRepository(db.Collection("users"))

	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		sender = &mailer.LogSender{Log: logger}
	}

	notifier := service.NewNotifier(notifications, sender, cfg.AlertRecipients, logger)
	notifier.Start()
	defer notifier.Close()

	catalog := service.NewCatalog(products, categories, vendors, logger)
	ledger := service.NewLedger(products, transactions, notifier, logger)
	stats := service.NewStats(transactions)

	blobs, err := blob.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalln("could not prepare upload directory:", err)
	}
	productCache := cache.New(cfg.CacheTTL)

	productHandler := handlers.NewProductHandler(catalog, productCache, blobs)
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(users, cfg.JWTSecret, cfg.TokenTTL),
		Products:      productHandler,
		Sales:         handlers.NewSaleHandler(ledger, stats, productHandler),
		Notifications: handlers.NewNotificationHandler(notifier),
		Categories:    handlers.NewCategoryHandler(categories),
		Vendors:       handlers.NewVendorHandler(vendors, catalog),
	}

	router := gin.Default()
	router.Static(cfg.UploadBaseURL, cfg.UploadDir)
	routes.RegisterRoutes(router, h, cfg.JWTSecret, users)

	log.Println("🚀 Server running on port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalln(err)
	}
}
