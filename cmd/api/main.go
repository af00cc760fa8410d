package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	authStore "github.com/MrJamesThe3rd/contratos/internal/auth/store"
	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
	"github.com/MrJamesThe3rd/contratos/internal/config"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	contractStore "github.com/MrJamesThe3rd/contratos/internal/contract/store"
	"github.com/MrJamesThe3rd/contratos/internal/database"
	"github.com/MrJamesThe3rd/contratos/internal/document"
	contratosHttp "github.com/MrJamesThe3rd/contratos/internal/http"
	authHandler "github.com/MrJamesThe3rd/contratos/internal/http/auth"
	contractHandler "github.com/MrJamesThe3rd/contratos/internal/http/contract"
	reportHandler "github.com/MrJamesThe3rd/contratos/internal/http/report"
	supplierHandler "github.com/MrJamesThe3rd/contratos/internal/http/supplier"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
	slaStore "github.com/MrJamesThe3rd/contratos/internal/sla/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	hoursCfg, err := cfg.BusinessHours()
	if err != nil {
		slog.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	clock, err := businesshours.New(hoursCfg)
	if err != nil {
		slog.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db, cfg.DB.Name); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var (
		authService     = auth.NewService(authStore.New(db))
		registryClient  = registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout)
		documents       = document.NewGenerator(cfg.Documents.TemplatesDir, cfg.Documents.ContractsDir)
		contractService = contract.NewService(contractStore.New(db), registryClient, documents)
		aggregator      = sla.NewAggregator(slaStore.New(db), clock)
	)

	err = authService.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		slog.Warn("admin credentials not configured, skipping admin bootstrap")
	case err != nil:
		slog.Error("failed to ensure admin user", "error", err)
		os.Exit(1)
	}

	var (
		authH      = authHandler.NewHandler(authService, tokens)
		contractsH = contractHandler.NewHandler(contractService, aggregator, documents)
		reportH    = reportHandler.NewHandler(contractService, aggregator)
		suppliersH = supplierHandler.NewHandler(contractService, documents, registryClient)
	)

	router := contratosHttp.New(contratosHttp.Options{
		Tokens:      tokens,
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
	}, authH, contractsH, reportH, suppliersH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
