package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/report"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(database)
	storeService := service.NewStoreService(repository.NewStoreRepository(database), userRepo)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	rows, unreadable, err := report.ReadStores(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stores to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	result := importStores(context.Background(), rows, storeService, userRepo)
	for _, line := range unreadable {
		result.Skipped = append(result.Skipped, skippedRow{Line: line, Reason: "missing name, email or address"})
	}

	fmt.Println("Import completed!")
	fmt.Printf("Stores imported: %d\n", result.Created)
	if len(result.Skipped) > 0 {
		fmt.Printf("Rows skipped: %d\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("  line %d: %s\n", s.Line, s.Reason)
		}
	}
}

type skippedRow struct {
	Line   int
	Reason string
}

type importResult struct {
	Created int
	Skipped []skippedRow
}

var validate = validator.New()

// importStores creates each row through the store service so the usual
// uniqueness and owner rules apply. Rows that fail are skipped, not fatal.
func importStores(ctx context.Context, rows []report.StoreRow, stores service.StoreService, users repository.UserRepository) importResult {
	var result importResult
	skip := func(line int, reason string) {
		result.Skipped = append(result.Skipped, skippedRow{Line: line, Reason: reason})
	}

	for _, row := range rows {
		if err := validate.Var(row.Email, "required,email"); err != nil {
			skip(row.Line, fmt.Sprintf("invalid email %q", row.Email))
			continue
		}
		if len(row.Name) > 255 || len(row.Address) > 400 {
			skip(row.Line, "name or address too long")
			continue
		}

		input := service.CreateStoreInput{
			Name:    row.Name,
			Email:   row.Email,
			Address: row.Address,
		}
		if row.OwnerEmail != "" {
			owner, err := users.FindByEmail(ctx, row.OwnerEmail)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					skip(row.Line, fmt.Sprintf("owner %s not found", row.OwnerEmail))
				} else {
					skip(row.Line, err.Error())
				}
				continue
			}
			input.OwnerID = &owner.ID
		}

		if _, err := stores.CreateStore(ctx, input); err != nil {
			skip(row.Line, err.Error())
			continue
		}
		result.Created++
	}
	return result
}
