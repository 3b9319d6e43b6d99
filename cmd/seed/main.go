package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"quizgate/internal/config"
	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"
	"quizgate/internal/usecase"
)

// Seeds a first batch of activation codes into an empty registry so a fresh
// deployment has something to hand out.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	count := flag.Int("count", 10, "number of codes to create")
	prefix := flag.String("prefix", "Q", "code prefix")
	maxUses := flag.Int("max-uses", 1, "uses per code")
	grantDays := flag.Int("grant-days", 0, "session days per redemption (0 = config default)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := logging.New(cfg.Log, true)
	st, err := store.New(cfg.Store.DataDir, cfg.Server.LockTimeout, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	codec := security.NewTokenCodec(cfg.Auth.SecretKey)
	adminUC := usecase.NewAdminUseCase(st, codec, cfg.Auth.AdminPassword, cfg.Auth.DefaultGrantDays, cfg.Auth.AdminTokenHours, logger)

	// If codes already exist, do nothing.
	existing, err := adminUC.ListCodes(ctx, "")
	if err != nil {
		log.Fatalf("list codes: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d codes already present. No changes.\n", len(existing))
		return
	}

	created, err := adminUC.CreateCodes(ctx, usecase.CreateCodesParams{
		Count:     *count,
		Prefix:    *prefix,
		MaxUses:   *maxUses,
		GrantDays: *grantDays,
		Note:      "seed batch",
	})
	if err != nil {
		log.Fatalf("create codes: %v", err)
	}
	for _, code := range created {
		fmt.Println(code)
	}
	fmt.Printf("seeded %d codes\n", len(created))
}
