package cli

import (
	"fmt"
	"log"

	"finax-server/src/auth"
	"finax-server/src/config"
	"finax-server/src/db"
	"finax-server/src/db/postgres"
	"finax-server/src/db/sqlite"
	"finax-server/src/notify"
	"finax-server/src/services"
)

const categoryCacheEntries = 10_000

// app is the wired set of dependencies shared by the commands.
type app struct {
	store      db.Store
	categories *db.CachedCategories
	notifier   notify.Notifier
	auth       *services.AuthService
	ledger     *services.LedgerService
	closers    []func() error
}

func migrate(cfg config.Config) error {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return db.MigrateSQLite(cfg.SQLitePath)
	default:
		return db.MigratePostgres(cfg.DatabaseURL)
	}
}

// openStore applies pending migrations, then connects.
func openStore(cfg config.Config) (db.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		if err := db.MigratePostgres(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	}
}

func newNotifier(cfg config.Config) (notify.Notifier, func() error, error) {
	if cfg.AMQPURL == "" {
		log.Printf("WARN: AMQP_URL not set, password reset tokens will be written to the log")
		return notify.LogNotifier{}, func() error { return nil }, nil
	}
	notifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("INFO: Publishing password reset notifications to exchange %s", cfg.AMQPExchange)
	return notifier, notifier.Close, nil
}

func newApp(cfg config.Config) (*app, error) {
	a := &app{}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	a.categories, err = db.NewCachedCategories(store, categoryCacheEntries)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("category cache: %w", err)
	}
	a.closers = append(a.closers, func() error { a.categories.Close(); return nil })

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("notifier: %w", err)
	}
	a.notifier = notifier
	a.closers = append(a.closers, closeNotifier)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	a.auth, err = services.NewAuthService(store, tokens, hasher, notifier, cfg.ResetTokenTTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ledger = services.NewLedgerService(a.categories, store)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("ERROR: Shutdown: %v", err)
		}
	}
	a.closers = nil
}
