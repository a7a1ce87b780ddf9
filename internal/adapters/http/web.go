package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"courtside/internal/adapters/email"
	"courtside/internal/adapters/http/middleware"
	gateway "courtside/internal/adapters/payment"
	accountStore "courtside/internal/adapters/storage/account"
	auditStore "courtside/internal/adapters/storage/audit"
	availabilityStore "courtside/internal/adapters/storage/availability"
	coachStore "courtside/internal/adapters/storage/coach"
	locationStore "courtside/internal/adapters/storage/location"
	paymentStore "courtside/internal/adapters/storage/payment"
	playerStore "courtside/internal/adapters/storage/player"
	slotStore "courtside/internal/adapters/storage/slot"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore  accountStore.Store
	WindowStore   availabilityStore.Store
	SlotStore     slotStore.Store
	CoachStore    coachStore.Store
	PlayerStore   playerStore.Store
	LocationStore locationStore.Store
	PaymentStore  paymentStore.Store
	AuditStore    auditStore.Store
}

// Options carries the booking settings handlers need.
type Options struct {
	HoldTTL           time.Duration
	GenerateAheadDays int
	SessionPriceCents int
}

// loadCSRFKey reads the CSRF secret from COURTSIDE_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("COURTSIDE_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("COURTSIDE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("COURTSIDE_ENV") == "production" {
		log.Fatal("COURTSIDE_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set COURTSIDE_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global options instance (set by NewMux)
var options Options

// Global session store instance
var sessions *middleware.SessionStore

// Global payment gateway (set by NewMux)
var payGateway gateway.Gateway

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
// A nil sender disables booking emails.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, opts Options) http.Handler {
	stores = s
	options = opts
	sessions = middleware.NewSessionStore()
	payGateway = gateway.NewSimulatedGateway(generateID)
	middleware.SecureCookies = os.Getenv("COURTSIDE_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: SecurityHeaders -> CSRF -> Auth -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}
