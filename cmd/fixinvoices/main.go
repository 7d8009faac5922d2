package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
)

// Reprices all invoices of one currency from their stored tax rates. The same
// repair runs as a background job from the admin panel; this command exists
// for operators who want to run it directly and watch the output.
func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	currency := strings.ToUpper(os.Args[1])
	if currency != models.CurrencyINR && currency != models.CurrencyUSD {
		log.Fatalf("Unsupported currency %q, expected %s or %s", os.Args[1], models.CurrencyINR, models.CurrencyUSD)
	}

	database.SetupDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("Repricing %s invoices from stored tax rates...", currency)

	result, err := tax.NewServiceFromDB(database.GetDB()).FixInvoicesByCurrency(ctx, currency)

	log.Printf("Fixed: %d, already consistent: %d, failed: %d", result.Fixed, result.Skipped, result.Failed)
	for _, msg := range result.Errors {
		log.Printf("  - %s", msg)
	}

	if err != nil {
		log.Fatalf("Invoice fix aborted: %v", err)
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/fixinvoices/main.go [currency]")
	fmt.Println("Reprices all invoices booked in the given currency (INR or USD)")
	fmt.Println("using each invoice's stored tax rate, keeping totals unchanged.")
}
