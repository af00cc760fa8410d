package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dbTimeout = 5 * time.Second

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatDays formats business days with two decimals and a comma separator.
func FormatDays(d float64) string {
	return printer.Sprintf("%.2f", d)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatDate formats a time.Time as DD/MM/YYYY HH:MM.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}
