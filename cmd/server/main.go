package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"classplan/internal/catalog"
	"classplan/internal/config"
	"classplan/internal/database"
	"classplan/internal/handler"
	"classplan/internal/middleware"
	"classplan/internal/repository"
	"classplan/internal/timetable"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if cfg.Debug() {
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("[server] %v", err)
	}
}

type storage struct {
	accounts timetable.AccountStore
	catalog  timetable.CatalogStore
	close    func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *log.Logger) (*storage, error) {
	switch cfg.Storage {
	case "memory":
		logger.Printf("[storage] using in-memory store, data is lost on exit")
		store := repository.NewMemoryStore()
		return &storage{accounts: store, catalog: store, close: func() {}}, nil
	case "postgres":
		db, err := database.Open(ctx, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			accounts: repository.NewAccountRepository(db),
			catalog:  repository.NewSubjectRepository(db),
			close: func() {
				_ = db.Close()
				logger.Printf("[db] connection closed")
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Debug() {
		logger.Printf("[config] addr=%s storage=%s driver=%s subjects=%s", cfg.HTTPAddr, cfg.Storage, cfg.DB.Driver, cfg.SubjectsFile)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	added, err := catalog.ImportFile(ctx, cfg.SubjectsFile, store.catalog)
	if err != nil {
		return fmt.Errorf("update subject list: %w", err)
	}
	logger.Printf("[catalog] imported file=%s added=%d", cfg.SubjectsFile, added)

	manager := timetable.NewSessionManager(
		store.accounts,
		store.catalog,
		timetable.NewBcryptHasher(cfg.BcryptCost),
		timetable.WithLogger(logger),
		timetable.WithMeetBaseURL(cfg.MeetBaseURL),
	)

	if cfg.SessionKey == "" {
		logger.Printf("[server] SESSION_KEY not set, using a random key")
	}
	sessions, err := middleware.NewSessionStore(cfg.SessionKey, false)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handler.NewRouter(handler.RouterConfig{
			Manager:  manager,
			Sessions: sessions,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("[server] listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Printf("[server] shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
