package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"goexpect/adapters/memory"
	"goexpect/app"
	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
	"goexpect/internal/suggest"
	"goexpect/ports"
)

type fixedResolver struct {
	batch *batch.Batch
	err   error
}

func (f *fixedResolver) Resolve(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*batch.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func (f *fixedResolver) Preview(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*ports.Preview, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]map[string]interface{}, 0, f.batch.RowCount())
	for _, row := range f.batch.Rows {
		out := make(map[string]interface{}, len(row))
		for col, v := range row {
			out[col] = v
		}
		rows = append(rows, out)
	}
	return &ports.Preview{Headers: f.batch.Columns, Rows: rows}, nil
}

type noJudge struct{}

func (noJudge) JudgeValues(ctx context.Context, condition string, values []string) (map[string]bool, error) {
	return nil, core.ErrJudgeUnavailable
}

func testApp(resolver ports.SourceResolver, recorder ports.RunRecorder) *App {
	svc := app.NewValidationService(resolver, noJudge{}, recorder, rules.NewRegistry())
	return NewApp(svc, resolver, suggest.NewHeuristic(), recorder)
}

func ageBatch() *batch.Batch {
	return batch.New([]string{"age"}, []batch.Row{
		{"age": float64(10)},
		{"age": nil},
		{"age": float64(30)},
		{"age": float64(200)},
	})
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	a := testApp(&fixedResolver{batch: ageBatch()}, memory.NewRunRecorder())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	recorder := memory.NewRunRecorder()
	a := testApp(&fixedResolver{batch: ageBatch()}, recorder)

	rec := postJSON(t, a.Router(), "/api/v1/validate", map[string]interface{}{
		"suiteId": "orders",
		"dataset": map[string]interface{}{"file_path": "orders.csv"},
		"rules": []map[string]interface{}{
			{"type": rules.TypeBetween, "column": "age", "kwargs": map[string]interface{}{"min_value": 0, "max_value": 120}},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var run validation.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.Success || run.Score != 0.0 {
		t.Errorf("got success=%v score=%v, want failed run", run.Success, run.Score)
	}
	out := run.Result.Outcomes[0]
	if out.UnexpectedCount != 2 || out.UnexpectedPercent != 50.0 {
		t.Errorf("outcome stats = %d/%.1f, want 2/50.0", out.UnexpectedCount, out.UnexpectedPercent)
	}

	runs, _ := recorder.ListRuns(context.Background(), 10)
	if len(runs) != 1 {
		t.Errorf("recorded runs = %d, want 1", len(runs))
	}
}

func TestValidateUnknownRuleTypeIs400(t *testing.T) {
	a := testApp(&fixedResolver{batch: ageBatch()}, memory.NewRunRecorder())

	rec := postJSON(t, a.Router(), "/api/v1/validate", map[string]interface{}{
		"suiteId": "orders",
		"dataset": map[string]interface{}{"file_path": "orders.csv"},
		"rules":   []map[string]interface{}{{"type": "expect_nothing", "column": "age"}},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown rule type") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestValidateUnsupportedDialectIs400(t *testing.T) {
	a := testApp(&fixedResolver{err: core.NewUnsupportedDialectError("neo4j")}, memory.NewRunRecorder())

	rec := postJSON(t, a.Router(), "/api/v1/validate", map[string]interface{}{
		"suiteId": "orders",
		"dataset": map[string]interface{}{"db": map[string]interface{}{"type": "neo4j", "table": "t"}},
		"rules":   []map[string]interface{}{{"type": rules.TypeNotNull, "column": "age"}},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	a := testApp(&fixedResolver{batch: ageBatch()}, memory.NewRunRecorder())

	rec := postJSON(t, a.Router(), "/api/v1/datasets/preview", map[string]interface{}{
		"dataset": map[string]interface{}{"file_path": "orders.csv"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var preview ports.Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(preview.Headers) != 1 || preview.Headers[0] != "age" {
		t.Errorf("headers = %v", preview.Headers)
	}
	if len(preview.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(preview.Rows))
	}
}

func TestSuggestEndpointFallsBackToHeuristics(t *testing.T) {
	a := testApp(&fixedResolver{batch: ageBatch()}, memory.NewRunRecorder())

	rec := postJSON(t, a.Router(), "/api/v1/suggest_expectations", map[string]interface{}{
		"dataset": map[string]interface{}{"file_path": "orders.csv"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Suggestions []ports.SuggestedRule `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected at least one suggestion for a numeric column")
	}
	for _, s := range resp.Suggestions {
		if !strings.HasPrefix(s.Description, "heuristic:") {
			t.Errorf("suggestion not labeled heuristic: %q", s.Description)
		}
	}
}

func TestGetRunAndReport(t *testing.T) {
	recorder := memory.NewRunRecorder()
	run := &validation.Run{
		ID:      core.NewRunID(),
		SuiteID: "orders",
		Success: true,
		Score:   100.0,
		Result:  validation.RunResult{Success: true, Score: 100.0, Outcomes: []validation.RuleOutcome{}},
		RunTime: time.Now().UTC(),
	}
	if err := recorder.Record(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	a := testApp(&fixedResolver{batch: ageBatch()}, recorder)

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+string(run.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get run status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+string(run.ID)+"/report?format=markdown", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Validation Run") {
		t.Fatalf("report status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/does-not-exist", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing run status = %d, want 404", rec.Code)
	}
}
