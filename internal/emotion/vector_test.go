package emotion_test

import (
	"errors"
	"testing"

	"attune/internal/emotion"
	"attune/internal/services"
)

func TestTaxonomyShape(t *testing.T) {
	names := emotion.Taxonomy()
	if len(names) != emotion.Dim {
		t.Fatalf("taxonomy length = %d, want %d", len(names), emotion.Dim)
	}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if name == "" {
			t.Fatalf("empty name at index %d", i)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate taxonomy name %q", name)
		}
		seen[name] = struct{}{}
		if got := emotion.Name(i); got != name {
			t.Fatalf("Name(%d) = %q, want %q", i, got, name)
		}
		idx, ok := emotion.Index(name)
		if !ok || idx != i {
			t.Fatalf("Index(%q) = %d,%v, want %d,true", name, idx, ok, i)
		}
	}
}

func TestIndexResolvesAliases(t *testing.T) {
	cases := []struct {
		alias string
		canon string
	}{
		{"焦虑", "anxiety"},
		{"平静", "calm"},
		{"审美欣赏", "aesthetic appreciation"},
		{"Anxiety", "anxiety"},
		{"  joy  ", "joy"},
	}
	for _, tc := range cases {
		canon, ok := emotion.Canonical(tc.alias)
		if !ok || canon != tc.canon {
			t.Errorf("Canonical(%q) = %q,%v, want %q,true", tc.alias, canon, ok, tc.canon)
		}
	}

	if _, ok := emotion.Index("疲劳"); ok {
		t.Error("fatigue must not resolve to a taxonomy axis")
	}
	if _, ok := emotion.Index("fatigue"); ok {
		t.Error("fatigue must not resolve to a taxonomy axis")
	}
}

func TestNewVectorLengthContract(t *testing.T) {
	if _, err := emotion.NewVector(make([]float64, emotion.Dim-1)); !errors.Is(err, services.ErrDimension) {
		t.Fatalf("short vector: expected ErrDimension, got %v", err)
	}
	if _, err := emotion.NewVector(make([]float64, emotion.Dim+3)); !errors.Is(err, services.ErrDimension) {
		t.Fatalf("long vector: expected ErrDimension, got %v", err)
	}

	raw := make([]float64, emotion.Dim)
	raw[0] = -0.5
	raw[1] = 1.5
	raw[2] = 0.25
	v, err := emotion.NewVector(raw)
	if err != nil {
		t.Fatalf("NewVector returned error: %v", err)
	}
	if v[0] != 0 || v[1] != 1 || v[2] != 0.25 {
		t.Fatalf("expected clamped components, got %v %v %v", v[0], v[1], v[2])
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestBuilderFromIntensities(t *testing.T) {
	builder := emotion.NewBuilder(nil)

	v := builder.FromIntensities(map[string]float64{
		"焦虑":       0.8,
		"平静":       0.1,
		"疲劳":       0.9, // not a taxonomy axis, ignored
		"nonsense": 0.5,
		"joy":      1.7, // clamped
	})
	if len(v) != emotion.Dim {
		t.Fatalf("vector length = %d, want %d", len(v), emotion.Dim)
	}
	if got := v.Intensity("anxiety"); got != 0.8 {
		t.Fatalf("anxiety intensity = %v, want 0.8", got)
	}
	if got := v.Intensity("calm"); got != 0.1 {
		t.Fatalf("calm intensity = %v, want 0.1", got)
	}
	if got := v.Intensity("joy"); got != 1 {
		t.Fatalf("joy intensity = %v, want clamped 1", got)
	}
	for _, value := range v {
		if value < 0 || value > 1 {
			t.Fatalf("component %v out of range", value)
		}
	}

	dominant, ok := v.Dominant()
	if !ok || dominant != "joy" {
		t.Fatalf("Dominant = %q,%v, want joy,true", dominant, ok)
	}
}

func TestBuilderEmptyMapYieldsZeroVector(t *testing.T) {
	builder := emotion.NewBuilder(nil)
	v := builder.FromIntensities(nil)
	if len(v) != emotion.Dim {
		t.Fatalf("vector length = %d, want %d", len(v), emotion.Dim)
	}
	for i, value := range v {
		if value != 0 {
			t.Fatalf("component %d = %v, want 0", i, value)
		}
	}
	if _, ok := v.Dominant(); ok {
		t.Fatal("zero vector must not report a dominant emotion")
	}
}
