package report

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"SKU", "Qty", "Amount"}
	rows := [][]string{
		{"A-1", "12", "$1.00"},
		{"LONGER", "3", "$10.50"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "SKU     Qty  Amount" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "A-1      12   $1.00" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "LONGER    3  $10.50" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableTruncatesLongCells(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+5)
	lines := formatTable([]string{"SKU"}, [][]string{{long}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncated cell, got %q", lines[1])
	}
	if len([]rune(lines[1])) != maxCellWidth {
		t.Fatalf("expected width %d, got %d", maxCellWidth, len([]rune(lines[1])))
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
