package suggest

import (
	"context"
	"testing"

	"goexpect/domain/profile"
	"goexpect/domain/rules"
	"goexpect/ports"
)

func floatPtr(f float64) *float64 { return &f }

func suggestionsByType(s []ports.SuggestedRule) map[string][]ports.SuggestedRule {
	out := map[string][]ports.SuggestedRule{}
	for _, item := range s {
		out[item.Spec.Type] = append(out[item.Spec.Type], item)
	}
	return out
}

func TestSuggestRules(t *testing.T) {
	prof := profile.TableProfile{
		RowCount: 100,
		Columns: []profile.ColumnProfile{
			{Name: "id", DataType: "text", MissingRate: 0, Cardinality: 100,
				Samples: []string{"a", "b", "c", "d", "e"}},
			{Name: "amount", DataType: "numeric", MissingRate: 0.1, Cardinality: 80,
				Min: floatPtr(5), Max: floatPtr(500)},
			{Name: "status", DataType: "text", MissingRate: 0.2, Cardinality: 3,
				Samples: []string{"open", "closed", "pending"}},
		},
	}

	got, err := NewHeuristic().SuggestRules(context.Background(), prof)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	byType := suggestionsByType(got)

	notNull := byType[rules.TypeNotNull]
	if len(notNull) != 1 || notNull[0].Spec.Column != "id" {
		t.Errorf("not-null suggestions = %+v", notNull)
	}

	unique := byType[rules.TypeUnique]
	if len(unique) != 1 || unique[0].Spec.Column != "id" {
		t.Errorf("unique suggestions = %+v", unique)
	}

	between := byType[rules.TypeBetween]
	if len(between) != 1 {
		t.Fatalf("between suggestions = %+v", between)
	}
	if between[0].Spec.Kwargs["min_value"] != 5.0 || between[0].Spec.Kwargs["max_value"] != 500.0 {
		t.Errorf("between kwargs = %+v", between[0].Spec.Kwargs)
	}

	inSet := byType[rules.TypeInSet]
	if len(inSet) != 1 || inSet[0].Spec.Column != "status" {
		t.Fatalf("in-set suggestions = %+v", inSet)
	}
	if vs := inSet[0].Spec.Kwargs["value_set"].([]interface{}); len(vs) != 3 {
		t.Errorf("value set = %v", vs)
	}
}

func TestSuggestionsAreLabeled(t *testing.T) {
	prof := profile.TableProfile{
		RowCount: 10,
		Columns:  []profile.ColumnProfile{{Name: "a", DataType: "text", Cardinality: 10, MissingRate: 0}},
	}

	got, _ := NewHeuristic().SuggestRules(context.Background(), prof)
	for _, s := range got {
		if len(s.Description) < 10 || s.Description[:10] != "heuristic:" {
			t.Errorf("unlabeled suggestion: %q", s.Description)
		}
	}
}

func TestHighCardinalityTextGetsNoInSet(t *testing.T) {
	prof := profile.TableProfile{
		RowCount: 100,
		Columns: []profile.ColumnProfile{
			{Name: "note", DataType: "text", MissingRate: 0.5, Cardinality: 50,
				Samples: []string{"x", "y", "z", "w", "v"}},
		},
	}

	got, _ := NewHeuristic().SuggestRules(context.Background(), prof)
	for _, s := range got {
		if s.Spec.Type == rules.TypeInSet {
			t.Errorf("unexpected in-set suggestion: %+v", s)
		}
	}
}

func TestEverySuggestionParses(t *testing.T) {
	prof := profile.TableProfile{
		RowCount: 100,
		Columns: []profile.ColumnProfile{
			{Name: "id", DataType: "text", MissingRate: 0, Cardinality: 100, Samples: []string{"a"}},
			{Name: "amount", DataType: "numeric", Cardinality: 80, MissingRate: 0.1,
				Min: floatPtr(0), Max: floatPtr(1)},
			{Name: "status", DataType: "text", Cardinality: 2, MissingRate: 0.1,
				Samples: []string{"open", "closed"}},
		},
	}

	got, _ := NewHeuristic().SuggestRules(context.Background(), prof)
	registry := rules.NewRegistry()
	for _, s := range got {
		if _, err := registry.Parse(s.Spec); err != nil {
			t.Errorf("suggestion does not parse: %+v: %v", s.Spec, err)
		}
	}
}
