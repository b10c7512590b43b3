package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test CSV: %v", err)
	}
	return path
}

const csvHeader = "set_number,category,question_text,option_a,option_b,option_c,option_d,correct_option\n"

func TestImportQuestionsValidateOnly(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"1,General,What is 2+2?,3,4,5,6,B\n"+
		"2,Logic,Pick the odd one out,cat,dog,car,cow,C\n"+
		"1,General,Capital of France?,Paris,Rome,Lima,Oslo,a\n")

	stats, err := ImportQuestions(nil, ImportConfig{SourceFile: path, ValidateOnly: true})
	if err != nil {
		t.Fatalf("ImportQuestions failed: %v", err)
	}
	if stats.TotalRows != 3 || stats.Imported != 3 || stats.Skipped != 0 {
		t.Errorf("Stats = %+v, want 3 rows all valid", stats)
	}
	if stats.PerSet[1] != 2 || stats.PerSet[2] != 1 {
		t.Errorf("PerSet = %v, want set 1: 2, set 2: 1", stats.PerSet)
	}
	if got := stats.SetNumbers(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("SetNumbers = %v, want [1 2]", got)
	}
}

func TestImportQuestionsSkipsInvalidRows(t *testing.T) {
	path := writeCSV(t, csvHeader+
		"1,General,Valid question,a,b,c,d,A\n"+
		"9,General,Set out of range,a,b,c,d,A\n"+
		"1,General,Bad option,a,b,c,d,E\n"+
		"x,General,Bad set number,a,b,c,d,A\n"+
		"1,,Blank category,a,b,c,d,A\n")

	stats, err := ImportQuestions(nil, ImportConfig{SourceFile: path, ValidateOnly: true})
	if err != nil {
		t.Fatalf("ImportQuestions failed: %v", err)
	}
	if stats.Imported != 1 {
		t.Errorf("Imported = %d, want 1", stats.Imported)
	}
	if stats.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", stats.Skipped)
	}
	if len(stats.RowErrors) != 4 {
		t.Errorf("RowErrors = %d, want 4", len(stats.RowErrors))
	}
}

func TestImportQuestionsRejectsMissingColumns(t *testing.T) {
	path := writeCSV(t, "set_number,category,question_text\n1,General,Incomplete\n")

	_, err := ImportQuestions(nil, ImportConfig{SourceFile: path, ValidateOnly: true})
	if err == nil {
		t.Fatal("Expected an error for a CSV missing required columns")
	}
	if !strings.Contains(err.Error(), "missing required columns") {
		t.Errorf("Error = %v, want missing-columns message", err)
	}
}

func TestParseRowNormalizesCorrectOption(t *testing.T) {
	colIndex, err := mapColumns(strings.Split(strings.TrimSpace(csvHeader), ","))
	if err != nil {
		t.Fatalf("mapColumns failed: %v", err)
	}

	row, err := parseRow([]string{" 3 ", "General", "Q", "a", "b", "c", "d", " b "}, colIndex)
	if err != nil {
		t.Fatalf("parseRow failed: %v", err)
	}
	if row.SetNumber != 3 {
		t.Errorf("SetNumber = %d, want 3", row.SetNumber)
	}
	if row.CorrectOption != "B" {
		t.Errorf("CorrectOption = %q, want B", row.CorrectOption)
	}
}
