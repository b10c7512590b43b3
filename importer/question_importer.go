package importer

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const DefaultBatchSize = 500

// requiredColumns is the fixed header of a question bank CSV.
var requiredColumns = []string{
	"set_number",
	"category",
	"question_text",
	"option_a",
	"option_b",
	"option_c",
	"option_d",
	"correct_option",
}

// ImportConfig holds the configuration for a question bank import.
type ImportConfig struct {
	SourceFile   string
	BatchSize    int
	ValidateOnly bool
}

// ImportStats summarises one import run.
type ImportStats struct {
	TotalRows    int
	Imported     int
	Skipped      int
	PerSet       map[int]int
	RowErrors    []string
}

// QuestionRow is one validated CSV line.
type QuestionRow struct {
	SetNumber     int
	Category      string
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
}

// ImportQuestions reads the CSV, validates every row and inserts the valid
// ones in batches. With ValidateOnly set, nothing is written.
func ImportQuestions(db *sql.DB, cfg ImportConfig) (*ImportStats, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	f, err := os.Open(cfg.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", cfg.SourceFile, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %v", err)
	}

	colIndex, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{PerSet: make(map[int]int)}
	var batch []QuestionRow

	for lineNo := 2; ; lineNo++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %v", lineNo, err)
		}
		stats.TotalRows++

		row, rowErr := parseRow(record, colIndex)
		if rowErr != nil {
			stats.Skipped++
			stats.RowErrors = append(stats.RowErrors, fmt.Sprintf("line %d: %v", lineNo, rowErr))
			continue
		}

		stats.PerSet[row.SetNumber]++
		if cfg.ValidateOnly {
			stats.Imported++
			continue
		}

		batch = append(batch, row)
		if len(batch) >= cfg.BatchSize {
			if err := insertBatch(db, batch); err != nil {
				return stats, err
			}
			stats.Imported += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := insertBatch(db, batch); err != nil {
			return stats, err
		}
		stats.Imported += len(batch)
	}

	return stats, nil
}

func mapColumns(header []string) (map[string]int, error) {
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}
	return colIndex, nil
}

func parseRow(record []string, colIndex map[string]int) (QuestionRow, error) {
	field := func(name string) string {
		idx := colIndex[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var row QuestionRow
	setNumber, err := strconv.Atoi(field("set_number"))
	if err != nil {
		return row, fmt.Errorf("invalid set_number %q", field("set_number"))
	}
	if setNumber < 1 || setNumber > 5 {
		return row, fmt.Errorf("set_number %d out of range 1-5", setNumber)
	}

	correct := strings.ToUpper(field("correct_option"))
	if len(correct) != 1 || correct < "A" || correct > "D" {
		return row, fmt.Errorf("invalid correct_option %q", field("correct_option"))
	}

	row = QuestionRow{
		SetNumber:     setNumber,
		Category:      field("category"),
		QuestionText:  field("question_text"),
		OptionA:       field("option_a"),
		OptionB:       field("option_b"),
		OptionC:       field("option_c"),
		OptionD:       field("option_d"),
		CorrectOption: correct,
	}
	for _, v := range []string{row.Category, row.QuestionText, row.OptionA, row.OptionB, row.OptionC, row.OptionD} {
		if v == "" {
			return row, fmt.Errorf("blank field in row")
		}
	}
	return row, nil
}

func insertBatch(db *sql.DB, batch []QuestionRow) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO questions
			(set_number, category, question_text, option_a, option_b, option_c, option_d, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for _, row := range batch {
		_, err := stmt.Exec(
			row.SetNumber,
			row.Category,
			row.QuestionText,
			row.OptionA,
			row.OptionB,
			row.OptionC,
			row.OptionD,
			row.CorrectOption,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert question: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %v", err)
	}
	return nil
}

// SetNumbers returns the sets seen in this run in ascending order.
func (s *ImportStats) SetNumbers() []int {
	sets := make([]int, 0, len(s.PerSet))
	for set := range s.PerSet {
		sets = append(sets, set)
	}
	sort.Ints(sets)
	return sets
}
