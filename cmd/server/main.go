package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	adminhandler "multigremial/internal/admin/handler"
	adminmodels "multigremial/internal/admin/models"
	adminservice "multigremial/internal/admin/service"
	adminstore "multigremial/internal/admin/store"
	"multigremial/internal/geo"
	geohandler "multigremial/internal/geo/handler"
	gremiohandler "multigremial/internal/gremio/handler"
	gremioservice "multigremial/internal/gremio/service"
	gremiostore "multigremial/internal/gremio/store"
	apihttp "multigremial/internal/http"
	integrantehandler "multigremial/internal/integrante/handler"
	integranteservice "multigremial/internal/integrante/service"
	"multigremial/internal/jwttoken"
	"multigremial/internal/platform/config"
	"multigremial/internal/platform/httpserver"
	"multigremial/internal/platform/logger"
	"multigremial/internal/platform/metrics"
	"multigremial/internal/platform/postgres"
	registrohandler "multigremial/internal/registro/handler"
	registroservice "multigremial/internal/registro/service"
	registrostore "multigremial/internal/registro/store"
	"multigremial/internal/storage"
	"multigremial/pkg/platform/tx"
)

const shutdownGrace = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := jwttoken.NewService(cfg.JWTSecret)

	var uploader storage.Uploader
	if cfg.UploadURL != "" {
		uploader = storage.NewHTTPUploader(cfg.UploadURL, cfg.UploadPreset)
	} else {
		log.Warn("UPLOAD_URL not set, uploads stay in process memory")
		uploader = storage.NewInMemoryUploader()
	}

	var (
		adminSvc      *adminservice.Service
		gremioSvc     *gremioservice.Service
		integranteSvc *integranteservice.Service
		registroSvc   *registroservice.Service
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		gremios := gremiostore.NewPostgres(db)
		adminSvc = adminservice.New(adminstore.NewPostgres(db), tokens, adminservice.WithLogger(log))
		gremioSvc = gremioservice.New(gremios, uploader,
			gremioservice.WithLogger(log),
			gremioservice.WithMetrics(m),
			gremioservice.WithTxRunner(tx.NewSQLRunner(db)),
		)
		integranteSvc = integranteservice.New(gremios, integranteservice.WithLogger(log))
		registroSvc = registroservice.New(registrostore.NewPostgres(db),
			registroservice.WithLogger(log),
			registroservice.WithMetrics(m),
		)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		admins := adminstore.NewInMemoryAdminStore()
		seedAdmin(admins, log)
		gremios := gremiostore.NewInMemoryStore()
		adminSvc = adminservice.New(admins, tokens, adminservice.WithLogger(log))
		gremioSvc = gremioservice.New(gremios, uploader,
			gremioservice.WithLogger(log),
			gremioservice.WithMetrics(m),
		)
		integranteSvc = integranteservice.New(gremios, integranteservice.WithLogger(log))
		registroSvc = registroservice.New(registrostore.NewInMemoryStore(),
			registroservice.WithLogger(log),
			registroservice.WithMetrics(m),
		)
	}

	geoCache := geo.NewCache(
		geo.NewClient(cfg.GeoAPIURL).Fetch,
		geo.WithLogger(log),
		geo.WithMetrics(m),
	)

	validator := jwttoken.NewServiceAdapter(tokens)
	handler := apihttp.New(apihttp.Handlers{
		Admin:      adminhandler.New(adminSvc, validator, log),
		Gremio:     gremiohandler.New(gremioSvc, log),
		Integrante: integrantehandler.New(integranteSvc, log),
		Registro:   registrohandler.New(registroSvc, log),
		Geo:        geohandler.New(geoCache),
	}, log, m, cfg.CORSOrigin)

	srv := httpserver.New(cfg.Addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}
}

// seedAdmin provisions the single administrator account for in-memory runs.
// Postgres deployments seed it via migration instead.
func seedAdmin(store *adminstore.InMemoryAdminStore, log *slog.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	store.Seed(adminmodels.Admin{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	})
	log.Info("seeded admin account", "email", email)
}
