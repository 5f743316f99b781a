package request

import (
	"strings"
	"testing"

	"github.com/MSM2025CL/stproject/internal/domain/search/ordering"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  tornillo  ", "", false, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "tornillo" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Ordering() != ordering.Price {
		t.Errorf("Ordering() = %q", r.Ordering())
	}
	if r.TopN() != DefaultTopN || r.Show() != DefaultShow {
		t.Errorf("TopN/Show = %d/%d", r.TopN(), r.Show())
	}
	if r.Empty() {
		t.Error("Empty() should be false")
	}
}

func TestNew_Clamps(t *testing.T) {
	r, err := New("x", ordering.Relevance, true, MaxTopN+1, MaxShow+1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopN() != MaxTopN || r.Show() != MaxShow {
		t.Errorf("TopN/Show = %d/%d", r.TopN(), r.Show())
	}
	if !r.ConsiderOffers() {
		t.Error("ConsiderOffers() should be true")
	}
}

func TestNew_EmptyQueryAccepted(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		r, err := New(q, "", false, 0, 0)
		if err != nil {
			t.Fatalf("New(%q): unexpected error: %v", q, err)
		}
		if !r.Empty() {
			t.Errorf("New(%q).Empty() = false", q)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("x", ordering.Ordering("newest"), false, 0, 0); err == nil {
		t.Error("expected error for invalid ordering")
	}
	if _, err := New(strings.Repeat("a", MaxQueryLength+1), "", false, 0, 0); err == nil {
		t.Error("expected error for long query")
	}
}
