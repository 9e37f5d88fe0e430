package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/cari"
	"github.com/mrcaglayan/my-appv2-sub015/internal/httpapi"
	"github.com/mrcaglayan/my-appv2-sub015/internal/obs"
	"github.com/mrcaglayan/my-appv2-sub015/internal/org"
	"github.com/mrcaglayan/my-appv2-sub015/internal/store/pg"
)

var version = "0.1.0"

func main() {
	obs.Init()

	if os.Getenv("BACKOFFICE_AUTH_SECRET") == "" {
		log.Fatal("missing BACKOFFICE_AUTH_SECRET")
	}
	dsn := os.Getenv("BACKOFFICE_PG_DSN")
	if dsn == "" {
		log.Fatal("missing BACKOFFICE_PG_DSN")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	gate, err := auth.NewGate(store)
	if err != nil {
		log.Fatalf("auth gate: %v", err)
	}
	auditSvc, err := audit.NewService(store)
	if err != nil {
		log.Fatalf("audit service: %v", err)
	}
	orgSvc, err := org.NewService(store, auditSvc)
	if err != nil {
		log.Fatalf("org service: %v", err)
	}
	cariSvc, err := cari.NewService(store, auditSvc)
	if err != nil {
		log.Fatalf("cari service: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Version:    version,
		Users:      store,
		Gate:       gate,
		Grants:     store,
		Audit:      auditSvc,
		Org:        orgSvc,
		Cari:       cariSvc,
	})
	if err != nil {
		log.Fatalf("http api: %v", err)
	}

	addr := os.Getenv("BACKOFFICE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting backoffice-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
