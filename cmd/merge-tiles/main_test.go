package main

import "testing"

func TestParseLayout(t *testing.T) {
	cols, rows, err := parseLayout("4x2")
	if err != nil || cols != 4 || rows != 2 {
		t.Fatalf("parseLayout(4x2) = %d, %d, %v", cols, rows, err)
	}
	for _, bad := range []string{"4", "ax2", "4xb", "4x2x1"} {
		if _, _, err := parseLayout(bad); err == nil {
			t.Errorf("parseLayout(%q) succeeded", bad)
		}
	}
}
