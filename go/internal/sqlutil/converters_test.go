package sqlutil

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestPgInt4RoundTrip(t *testing.T) {
	if got := FromPgInt4(ToPgInt4(nil)); got != nil {
		t.Errorf("nil round trip = %v", *got)
	}

	v := 7
	got := FromPgInt4(ToPgInt4(&v))
	if got == nil || *got != 7 {
		t.Errorf("round trip = %v, want 7", got)
	}
}

func TestFromPgText(t *testing.T) {
	if got := FromPgText(pgtype.Text{}, "Player"); got != "Player" {
		t.Errorf("null text = %q, want default", got)
	}
	if got := FromPgText(pgtype.Text{String: "Ann", Valid: true}, "Player"); got != "Ann" {
		t.Errorf("text = %q", got)
	}
}
