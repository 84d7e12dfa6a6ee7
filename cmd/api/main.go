package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"church-site/backend/internal/authstore"
	"church-site/backend/internal/config"
	"church-site/backend/internal/domain/announcement"
	"church-site/backend/internal/domain/contact"
	"church-site/backend/internal/domain/message"
	"church-site/backend/internal/domain/missionary"
	"church-site/backend/internal/domain/partner"
	"church-site/backend/internal/domain/payments"
	"church-site/backend/internal/domain/planning"
	"church-site/backend/internal/firebase"
	"church-site/backend/internal/handlers"
	apihttp "church-site/backend/internal/http"
	"church-site/backend/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	clients := firebase.NewClients(ctx, cfg)
	sessions := authstore.New()

	// Upload facades, one per content kind.
	newsletterFiles := storage.NewFacade(clients.Bucket, "newsletters",
		storage.WithAcceptedTypes("application/pdf"),
		storage.WithMaxSize(10<<20),
	)
	imageFiles := storage.NewFacade(clients.Bucket, "images",
		storage.WithAcceptedTypes("image/jpeg", "image/png", "image/webp"),
		storage.WithMaxSize(5<<20),
	)

	// Payment links (optional - only if configured)
	var linker payments.Linker
	if cfg.StripeSecretKey != "" {
		linker = payments.NewStripeLinker(cfg.StripeSecretKey)
		log.Println("Stripe payment links enabled")
	} else {
		log.Println("STRIPE_SECRET_KEY not set, payment links disabled")
	}

	var pusher announcement.Pusher
	if clients.Messaging != nil {
		pusher = clients.Messaging
	}

	missionarySvc := missionary.NewService(missionary.NewRepo(clients.Docs), newsletterFiles)
	messageSvc := message.NewService(clients.Docs)
	planningSvc := planning.NewService(clients.Docs)
	announcementSvc := announcement.NewService(clients.Docs, linker, pusher, cfg.MessagingTopic)
	partnerSvc := partner.NewService(clients.Docs)
	contactSvc := contact.NewService(clients.Docs)

	uploads := handlers.NewUploads(map[string]*storage.Facade{
		"newsletters": newsletterFiles,
		"images":      imageFiles,
	})

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:             cfg,
		Clients:         clients,
		Sessions:        sessions,
		MissionarySvc:   missionarySvc,
		MessageSvc:      messageSvc,
		PlanningSvc:     planningSvc,
		AnnouncementSvc: announcementSvc,
		PartnerSvc:      partnerSvc,
		ContactSvc:      contactSvc,
		Uploads:         uploads,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoints hold connections open
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
