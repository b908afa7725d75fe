package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"fitco-billing/internal/config"
	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/repository"
	apiv1 "fitco-billing/internal/infra/api/apiv1"
	pg "fitco-billing/internal/infra/db/postgres"
	"fitco-billing/internal/infra/logging"
	"fitco-billing/internal/usecase"
)

// Fixed ids keep reruns idempotent.
const (
	adminID = "00000000-0000-4000-8000-000000000001"
	demoID  = "00000000-0000-4000-8000-000000000002"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, &cfg.Database, logger)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	users := pg.NewPostgresUserRepo(pool)
	pricingUC := usecase.NewPricingUseCase(pg.NewPricingRepo(pool), usecase.PricingDefaults{
		MonthlyPriceCents: cfg.Pricing.MonthlyPriceCents,
		YearlyPriceCents:  cfg.Pricing.YearlyPriceCents,
		Currency:          cfg.Pricing.Currency,
	}, logger)
	couponUC := usecase.NewCouponUseCase(pg.NewCouponRepo(pool), logger)

	seedUser(ctx, users, adminID, "admin@fitco.local", "Admin", model.RoleAdmin)
	seedUser(ctx, users, demoID, "demo@fitco.local", "Demo User", model.RoleUser)

	if err := pricingUC.EnsureDefaults(ctx); err != nil {
		log.Fatalf("pricing defaults: %v", err)
	}
	plans, err := pricingUC.Plans(ctx)
	if err != nil {
		log.Fatalf("plans: %v", err)
	}
	for _, p := range plans {
		fmt.Printf("plan: %s %d %s\n", p.Label, p.PriceCents, p.Currency)
	}

	c, err := couponUC.Create(ctx, "WELCOME20", 20, time.Now().AddDate(1, 0, 0), true)
	switch {
	case err == nil:
		fmt.Printf("seeded coupon: %s (%d%%)\n", c.Code, c.DiscountPercentage)
	case errors.Is(err, domain.ErrAlreadyExists):
		fmt.Println("coupon WELCOME20 already present")
	default:
		log.Fatalf("coupon: %v", err)
	}

	auth := apiv1.NewAuthManager(cfg.Auth.JWTSecret, 30*24*time.Hour)
	for _, u := range []struct {
		id   string
		role model.Role
	}{{adminID, model.RoleAdmin}, {demoID, model.RoleUser}} {
		tok, err := auth.Mint(u.id, u.role)
		if err != nil {
			log.Fatalf("mint token: %v", err)
		}
		fmt.Printf("%s token: %s\n", u.role, tok)
	}

	fmt.Println("Seeding complete.")
}

func seedUser(ctx context.Context, repo repository.UserRepository, id, email, name string, role model.Role) {
	u, err := model.NewUser(id, email, name, role)
	if err != nil {
		log.Fatalf("user %s: %v", email, err)
	}
	err = repo.Save(ctx, repository.NoTX, u)
	switch {
	case err == nil:
		fmt.Printf("seeded user: %s (%s)\n", email, role)
	case errors.Is(err, domain.ErrAlreadyExists):
		fmt.Printf("user %s already present\n", email)
	default:
		log.Fatalf("save user %s: %v", email, err)
	}
}
