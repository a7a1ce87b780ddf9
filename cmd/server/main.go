package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "courtside/internal/adapters/email"
	web "courtside/internal/adapters/http"
	"courtside/internal/adapters/storage"
	accountStore "courtside/internal/adapters/storage/account"
	auditStore "courtside/internal/adapters/storage/audit"
	availabilityStore "courtside/internal/adapters/storage/availability"
	coachStore "courtside/internal/adapters/storage/coach"
	locationStore "courtside/internal/adapters/storage/location"
	paymentStore "courtside/internal/adapters/storage/payment"
	playerStore "courtside/internal/adapters/storage/player"
	slotStore "courtside/internal/adapters/storage/slot"
	"courtside/internal/application/orchestrators"
	"courtside/internal/config"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Open the database with WAL mode, foreign keys and a busy timeout.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Wrap the DB with slow-query logging before handing it to the stores.
	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:  acctStore,
		WindowStore:   availabilityStore.NewSQLiteStore(timedDB),
		SlotStore:     slotStore.NewSQLiteStore(timedDB),
		CoachStore:    coachStore.NewSQLiteStore(timedDB),
		PlayerStore:   playerStore.NewSQLiteStore(timedDB),
		LocationStore: locationStore.NewSQLiteStore(timedDB),
		PaymentStore:  paymentStore.NewSQLiteStore(timedDB),
		AuditStore:    auditStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()

	// Seed default admin account if no accounts exist
	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: acctStore,
		GenerateID:   newID,
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed demo club, coaches and availability windows for development only
	if cfg.Env != "production" {
		demoDeps := orchestrators.SeedDemoDeps{
			AccountStore:  acctStore,
			CoachStore:    stores.CoachStore,
			LocationStore: stores.LocationStore,
			WindowStore:   stores.WindowStore,
		}
		if err := orchestrators.ExecuteSeedDemo(ctx, demoDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		log.Println("Demo seed data loaded (dev mode)")
	}

	// Configure email sender
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if cfg.Env == "production" {
			log.Println("WARNING: COURTSIDE_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set COURTSIDE_RESEND_KEY for real delivery)")
		}
	}

	// Background sweep returning expired pending holds to the pool
	stopSweep := orchestrators.StartExpirySweep(ctx, stores.SlotStore, orchestrators.ExpirySweepConfig{
		Interval: cfg.SweepInterval(),
		HoldTTL:  cfg.HoldTTL(),
		Enabled:  true,
	})
	defer stopSweep()

	mux := web.NewMux("static", stores, web.Options{
		HoldTTL:           cfg.HoldTTL(),
		GenerateAheadDays: cfg.GenerateAheadDays,
		SessionPriceCents: cfg.SessionPriceCents,
	})

	log.Printf("Courtside %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newID() string {
	return uuid.New().String()
}
