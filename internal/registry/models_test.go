package registry

import (
	"errors"
	"testing"

	"axiom/internal/domain"
)

func TestLookupModel(t *testing.T) {
	info := LookupModel("bge-small-en-v1.5")
	if info.MaxTokens != 512 || info.Dimensions != 384 {
		t.Errorf("unexpected info for bge-small: %+v", info)
	}

	// Org-prefixed names resolve to the bare entry.
	info = LookupModel("BAAI/bge-small-en-v1.5")
	if info.Dimensions != 384 {
		t.Errorf("prefixed lookup failed: %+v", info)
	}

	// Unknown models fall back conservatively.
	info = LookupModel("some-future-model")
	if info != DefaultModelInfo {
		t.Errorf("unknown model should use default, got %+v", info)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text should estimate 0 tokens, got %d", got)
	}
	// 3 words / 0.75 = 4 tokens exactly.
	if got := EstimateTokens("one two three"); got != 4 {
		t.Errorf("expected 4 tokens, got %d", got)
	}
	// 4 words / 0.75 = 5.33, rounded up to 6.
	if got := EstimateTokens("one two three four"); got != 6 {
		t.Errorf("expected 6 tokens, got %d", got)
	}
}

func TestCheckBudget(t *testing.T) {
	if err := CheckBudget("content", "short text", "bge-small-en-v1.5", 0); err != nil {
		t.Errorf("short text should pass: %v", err)
	}

	long := ""
	for i := 0; i < 500; i++ {
		long += "word "
	}
	err := CheckBudget("content", long, "bge-small-en-v1.5", 0)
	var budget *domain.TokenBudgetError
	if !errors.As(err, &budget) {
		t.Fatalf("expected TokenBudgetError, got %v", err)
	}
	if budget.Limit != 512 || budget.Field != "content" {
		t.Errorf("unexpected budget error: %+v", budget)
	}

	// Config override raises the ceiling.
	if err := CheckBudget("content", long, "bge-small-en-v1.5", 10000); err != nil {
		t.Errorf("raised limit should pass: %v", err)
	}
}
