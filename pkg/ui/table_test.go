package ui

import (
	"strings"
	"testing"
)

func TestPadString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		align    string
		expected string
	}{
		{"left", "ab", 4, "left", "ab  "},
		{"right", "ab", 4, "right", "  ab"},
		{"center", "ab", 5, "center", " ab  "},
		{"too long", "abcdef", 3, "left", "abcdef"},
		{"wide rune", "▸a", 3, "left", "▸a "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := padString(tt.input, tt.width, tt.align); got != tt.expected {
				t.Errorf("padString(%q, %d, %q) = %q, want %q", tt.input, tt.width, tt.align, got, tt.expected)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "ID"},
		{Header: "NAME", Width: 8},
	})
	table.AddRow([]string{"0192", "hero.png"})
	table.AddRow([]string{"0193", "footer.png"})
	table.Highlight = 1

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want header, separator and 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "footer.png") {
		t.Errorf("last row = %q", lines[3])
	}
}

func TestNewTable_NoHighlight(t *testing.T) {
	if NewTable(nil).Highlight != -1 {
		t.Error("new tables should not highlight a row")
	}
	if NewTable(nil).Render() != "" {
		t.Error("a table without columns renders empty")
	}
}
