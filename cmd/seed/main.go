package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"workmarket/internal/config"
	"workmarket/internal/seed"
	"workmarket/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	file := flag.String("file", "", "Path to a YAML seed file (default: built-in demo fixtures)")
	reset := flag.Bool("reset", false, "Wipe the store before seeding (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *reset {
		log.Fatalf("🚫 BLOCKED: Cannot run --reset in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding store (environment: %s, backend: %s)", cfg.Environment, cfg.StoreBackend)

	ctx := context.Background()
	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer cleanup()

	if *reset {
		log.Println("🗑️  Resetting store...")
		if err := st.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset store: %v", err)
		}
		log.Println("✅ Store reset")
		if ps, ok := st.(*store.PostgresStore); ok {
			if err := ps.EnsureSchema(ctx); err != nil {
				log.Fatalf("Failed to recreate schema: %v", err)
			}
		}
	}

	data := []byte(defaultFixtures)
	if *file != "" {
		data, err = os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
	}

	fixtures, err := seed.Parse(data)
	if err != nil {
		log.Fatalf("Failed to parse fixtures: %v", err)
	}

	seeder := seed.NewSeeder(st, logger)
	if err := seeder.Apply(ctx, fixtures); err != nil {
		log.Fatalf("Failed to apply fixtures: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// buildStore mirrors the server's backend selection so fixtures land in
// the same place the server reads from.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = st.Close(shutdownCtx)
		}
		return st, cleanup, nil

	case config.BackendPostgres:
		pool, err := store.CreatePostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st := store.NewPostgresStore(pool, cfg.TablePrefix+"documents")
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return st, pool.Close, nil

	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

// defaultFixtures is a small self-consistent demo dataset: two client users
// with companies and orders, two freelancers (one approved, one pending),
// and one accepted application occupying a slot.
const defaultFixtures = `
users:
  - user_id: user-ivan
    name: Ivan
    surname: Petrov
    phone_number: "+77010000001"
    roles: [client]
  - user_id: user-dana
    name: Dana
    surname: Akhmetova
    phone_number: "+77010000002"
    roles: [client]
  - user_id: user-askar
    name: Askar
    surname: Bekov
    phone_number: "+77010000003"
    roles: [freelancer]
  - user_id: user-maria
    name: Maria
    surname: Kim
    phone_number: "+77010000004"
    roles: [freelancer]

clients:
  - client_id: client-ivan
    user_id: user-ivan
    company_ids: [company-brightsoft]
  - client_id: client-dana
    user_id: user-dana
    company_ids: [company-steppe]

companies:
  - company_id: company-brightsoft
    client_id: client-ivan
    company_name: BrightSoft
    description: Custom web development studio
    owner_ids: [client-ivan]
    order_ids: [order-landing, order-crm]
  - company_id: company-steppe
    client_id: client-dana
    company_name: Steppe Logistics
    description: Freight tracking platform
    owner_ids: [client-dana]
    order_ids: [order-tracking]

freelancers:
  - freelancer_id: freelancer-askar
    user_id: user-askar
    iin: "900101300123"
    city: Almaty
    email: askar@example.com
    status: approved
    specializations_with_levels:
      - specialization: backend
        skill_level: senior
      - specialization: devops
        skill_level: middle
  - freelancer_id: freelancer-maria
    user_id: user-maria
    iin: "950505400456"
    city: Astana
    email: maria@example.com
    status: pending
    specializations_with_levels:
      - specialization: design
        skill_level: middle

orders:
  - order_id: order-landing
    company_id: company-brightsoft
    order_name: Marketing landing page
    order_description: Single-page site with a lead form
    order_status: approved
    order_complete_status: in_process
    specializations:
      - vacancy_id: vacancy-landing-backend
        specialization: backend
        skill_level: middle
        requirements: Form handling and email notifications
      - vacancy_id: vacancy-landing-design
        specialization: design
        skill_level: middle
        requirements: Responsive layout
  - order_id: order-crm
    company_id: company-brightsoft
    order_name: Internal CRM
    order_description: Lightweight CRM for the sales team
    order_status: pending
    specializations:
      - vacancy_id: vacancy-crm-backend
        specialization: backend
        skill_level: senior
        requirements: REST API and reporting
  - order_id: order-tracking
    company_id: company-steppe
    order_name: Shipment tracking dashboard
    order_description: Real-time map of active shipments
    order_status: approved
    specializations:
      - vacancy_id: vacancy-tracking-backend
        specialization: backend
        skill_level: senior
        requirements: Websocket updates and geodata storage

applications:
  - id: application-askar-landing
    order_id: order-landing
    freelancer_id: freelancer-askar
    company_id: company-brightsoft
    status: accepted
    specialization_index: 0
    specialization_name: backend
`
