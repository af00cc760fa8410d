// Command slareport prints the average SLA of finalized contracts, either from
// the workflow database or from a legacy banco.db file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
	"github.com/MrJamesThe3rd/contratos/internal/config"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/database"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
	"github.com/MrJamesThe3rd/contratos/internal/sla/legacy"
	slaStore "github.com/MrJamesThe3rd/contratos/internal/sla/store"
)

const defaultTimeout = 2 * time.Minute

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	legacyPath := flag.String("db", "", "path to a legacy SQLite database (banco.db); empty reads PostgreSQL")
	timeout := flag.Duration("timeout", defaultTimeout, "maximum time to compute the report")
	flag.Parse()

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

	repo, closeRepo, err := openRepository(cfg, *legacyPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	err = printReport(repo, clock, *timeout)
	closeRepo()

	if err != nil {
		slog.Error("failed to compute SLA", "error", err)
		os.Exit(1)
	}
}

// printReport writes the report to stdout. It returns instead of exiting so
// the caller can close the repository first.
func printReport(repo sla.Repository, clock *businesshours.Clock, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := sla.NewAggregator(repo, clock).AverageFinalized(ctx)
	if errors.Is(err, sla.ErrNoData) {
		fmt.Println(mutedStyle.Render("Nenhum contrato finalizado para calcular SLA."))
		return nil
	}

	if err != nil {
		return err
	}

	fmt.Println(render(report))

	return nil
}

func openRepository(cfg *config.Config, legacyPath string) (sla.Repository, func(), error) {
	if legacyPath != "" {
		r, err := legacy.Open(legacyPath)
		if err != nil {
			return nil, nil, err
		}

		return r, func() { r.Close() }, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, nil, err
	}

	return slaStore.New(db), func() { db.Close() }, nil
}

func formatDays(d float64) string {
	return strconv.FormatFloat(d, 'f', 2, 64)
}

func render(report *sla.Report) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers("Etapa", "Dias úteis (média)")

	for _, st := range contract.Stages() {
		days, ok := report.StageBusinessDays[st]
		if !ok {
			continue
		}

		t.Row(st.Label(), formatDays(days))
	}

	t.Row("Total", formatDays(report.TotalBusinessDays))

	out := titleStyle.Render(fmt.Sprintf("SLA médio de %d contratos finalizados", report.Population)) +
		"\n" + t.String()

	for _, s := range report.Skipped {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("ignorado: contrato %s (%s)", s.ContractID, s.Reason))
	}

	return out
}
