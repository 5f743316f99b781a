package result

import (
	"testing"

	"github.com/MSM2025CL/stproject/internal/domain/catalog"
	"github.com/MSM2025CL/stproject/internal/domain/search/candidate"
)

func TestResult_Scores(t *testing.T) {
	p, err := catalog.New(4, "", "prov", "desc", "", 10, 0, "desc")
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	scored := FromCandidate(candidate.New(p, candidate.Scores{TFIDF: 0.7}))
	s, ok := scored.Scores()
	if !ok || s.TFIDF != 0.7 {
		t.Errorf("Scores() = %+v, %v", s, ok)
	}
	if scored.RowID() != 4 {
		t.Errorf("RowID() = %d", scored.RowID())
	}

	plain := Unscored(p)
	if _, ok := plain.Scores(); ok {
		t.Error("unscored result must report ok=false")
	}
}

func TestNoQueryResponse(t *testing.T) {
	r := NoQueryResponse()
	if !r.NoQuery || r.Results != nil {
		t.Errorf("NoQueryResponse() = %+v", r)
	}
}
