package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"

	"github.com/nivedhr/assessment_portal/importer"
)

func main() {
	sourceFile := flag.String("file", "", "path to the question bank CSV")
	batchSize := flag.Int("batch", importer.DefaultBatchSize, "rows per insert batch")
	validateOnly := flag.Bool("validate-only", false, "validate the CSV without writing")
	flag.Parse()

	if *sourceFile == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file questions.csv [-batch N] [-validate-only]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		color.Red("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		color.Red("Failed to reach database: %v", err)
		os.Exit(1)
	}

	color.Cyan("\n=== Question Bank Importer ===")
	if *validateOnly {
		color.Yellow("Validate-only mode: no rows will be written.")
	}

	stats, err := importer.ImportQuestions(db, importer.ImportConfig{
		SourceFile:   *sourceFile,
		BatchSize:    *batchSize,
		ValidateOnly: *validateOnly,
	})
	if err != nil {
		color.Red("Import failed: %v", err)
		os.Exit(1)
	}

	for _, rowErr := range stats.RowErrors {
		color.Yellow("skipped %s", rowErr)
	}

	color.Yellow("\nQuestions per set")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Set", "Questions"})
	for _, set := range stats.SetNumbers() {
		table.Append([]string{strconv.Itoa(set), strconv.Itoa(stats.PerSet[set])})
	}
	table.Render()

	color.Green("Processed %d rows: %d imported, %d skipped.", stats.TotalRows, stats.Imported, stats.Skipped)
}
