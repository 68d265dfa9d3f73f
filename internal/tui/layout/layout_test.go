package layout

import "testing"

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		maxVisible int
		selected   int
		total      int
		wantStart  int
		wantEnd    int
	}{
		{"at start", 5, 0, 10, 0, 5},
		{"near start", 5, 2, 10, 0, 5},
		{"in middle", 5, 7, 10, 3, 8},
		{"at end", 5, 9, 10, 5, 10},
		{"fewer than max", 5, 2, 3, 0, 3},
		{"exact max items", 5, 2, 5, 0, 5},
		{"empty", 5, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.maxVisible, tt.selected, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Window(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.maxVisible, tt.selected, tt.total,
					start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     string
	}{
		{"fits", "DB Master", 20, "DB Master"},
		{"exact", "DB Master", 9, "DB Master"},
		{"truncated", "Production Database", 10, "Product..."},
		{"tiny", "Production", 2, ".."},
		{"zero", "Production", 0, ""},
		{"unicode", "Überwachung", 6, "Übe..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Truncate(tt.text, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Pad("ab", 5); got != "ab   " {
		t.Errorf("Pad short = %q", got)
	}
	if got := cfg.Pad("abcdefgh", 6); got != "abc..." {
		t.Errorf("Pad long = %q", got)
	}
}

func TestForHeight(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.ForHeight(10, 4).MaxVisible; got != 6 {
		t.Errorf("expected 6 rows, got %d", got)
	}
	if got := cfg.ForHeight(100, 4).MaxVisible; got != cfg.MaxVisible {
		t.Errorf("expected default rows, got %d", got)
	}
	if got := cfg.ForHeight(2, 4).MaxVisible; got != 1 {
		t.Errorf("expected at least 1 row, got %d", got)
	}
}
