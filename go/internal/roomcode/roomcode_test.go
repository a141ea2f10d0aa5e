package roomcode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mcdev12/sticks/go/internal/models"
)

func TestGeneratorNew(t *testing.T) {
	g := NewGenerator(nil)
	seen := map[string]bool{}
	for range 50 {
		code, err := g.New()
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("generated invalid code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected mostly distinct codes, got %d of 50", len(seen))
	}
}

func TestGeneratorNew_ShortSource(t *testing.T) {
	g := NewGenerator(bytes.NewReader(nil))
	if _, err := g.New(); err == nil {
		t.Error("expected an error from an exhausted source")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc234", "ABC234", false},
		{"  XYZ789 ", "XYZ789", false},
		{"ABC23", "", true},
		{"ABC2345", "", true},
		{"ABCD10", "", true}, // 1 and 0 are not in the alphabet
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidRoomCode) {
					t.Errorf("Normalize(%q) error = %v, want ErrInvalidRoomCode", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}
