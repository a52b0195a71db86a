package main

import "testing"

func TestParseOffset(t *testing.T) {
	data := []byte("ab\ncd\n")

	tests := []struct {
		pos     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"4", 4, false},
		{"1:1", 0, false},
		{"2:2", 4, false},
		{"2:99", 6, false},
		{"3:1", 6, false},
		{"4:1", 0, true},
		{"0:1", 0, true},
		{"x", 0, true},
		{"1:x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.pos, func(t *testing.T) {
			got, err := parseOffset(data, tt.pos)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
