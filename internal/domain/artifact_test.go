package domain

import (
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != IDLength {
			t.Fatalf("expected length %d, got %d (%s)", IDLength, len(id), id)
		}
		if !ValidID(id) {
			t.Fatalf("generated id failed validation: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestValidID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"abcdefghjk", true},
		{"2345678923", true},
		{"abcdefghj", false},   // too short
		{"abcdefghjkm", false}, // too long
		{"abcdefghj0", false},  // 0 excluded
		{"abcdefghj1", false},  // 1 excluded
		{"abcdefghjl", false},  // l excluded
		{"ABCDEFGHJK", false},  // uppercase
		{"", false},
	}
	for _, c := range cases {
		if got := ValidID(c.id); got != c.want {
			t.Errorf("ValidID(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want ContentFormat
	}{
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"json", FormatJSON},
		{"openapi", FormatOpenAPI},
		{"text", FormatText},
		{"txt", FormatText},
		{"", FormatText},
		{"MD", FormatMarkdown},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	if _, err := ParseFormat("binary"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatExt(t *testing.T) {
	if FormatOpenAPI.Ext() != "yaml" {
		t.Errorf("openapi should render as yaml, got %s", FormatOpenAPI.Ext())
	}
	if FormatText.Ext() != "txt" {
		t.Errorf("text should render as txt, got %s", FormatText.Ext())
	}
}

func TestListFilterMatch(t *testing.T) {
	now := time.Now()
	a := &Artifact{
		Kind:      "invariant",
		Metadata:  map[string]string{"team": "billing", "status": "approved"},
		UpdatedAt: now,
	}

	if !(ListFilter{}).Match(a) {
		t.Error("empty filter should match everything")
	}
	if !(ListFilter{Kind: "invariant"}).Match(a) {
		t.Error("matching kind filter should pass")
	}
	if (ListFilter{Kind: "intent"}).Match(a) {
		t.Error("mismatched kind filter should fail")
	}
	if !(ListFilter{Labels: map[string]string{"team": "billing"}}).Match(a) {
		t.Error("matching label filter should pass")
	}
	if (ListFilter{Labels: map[string]string{"team": "core"}}).Match(a) {
		t.Error("mismatched label value should fail")
	}
	if (ListFilter{Labels: map[string]string{"env": "prod"}}).Match(a) {
		t.Error("absent label key should fail")
	}

	earlier := now.Add(-time.Hour)
	later := now.Add(time.Hour)
	if !(ListFilter{After: &earlier, Before: &later}).Match(a) {
		t.Error("time window containing UpdatedAt should pass")
	}
	if (ListFilter{After: &later}).Match(a) {
		t.Error("After past UpdatedAt should fail")
	}
}
