package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"ci-reaper/src/contracts"
	"ci-reaper/src/store"
)

type stubRunner struct {
	report *contracts.CycleReport
	calls  int
}

func (r *stubRunner) RunOnce(ctx context.Context) *contracts.CycleReport {
	r.calls++
	return r.report
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return ""
}

func testReport(id string, started time.Time) *contracts.CycleReport {
	return &contracts.CycleReport{
		CycleID:    id,
		Branch:     "auto",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Outcome:    contracts.OutcomeCompleted,
		Checks: []contracts.CheckResult{
			{
				Provider:   "travis",
				Repository: "rust-lang/cargo",
				Cancellations: []contracts.Cancellation{
					{Provider: "travis", Repository: "rust-lang/cargo", BuildNumber: "11", Reason: contracts.ReasonSuperseded},
				},
			},
			{Provider: "appveyor", Repository: "rust-lang/cargo", Error: "403 forbidden"},
		},
	}
}

func newTestServer(t *testing.T, runner CycleRunner) (*Server, *store.MemoryStore) {
	t.Helper()
	history := store.NewMemoryStore(10)
	return NewServer(runner, history, "test"), history
}

func TestHandleRunCycle(t *testing.T) {
	runner := &stubRunner{report: testReport("cycle-1", time.Now())}
	srv, _ := newTestServer(t, runner)

	res, err := srv.handleRunCycle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleRunCycle() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var out struct {
		Summary       CycleSummary             `json:"summary"`
		Cancellations []contracts.Cancellation `json:"cancellations"`
		Errors        []string                 `json:"errors"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("RunOnce called %d times", runner.calls)
	}
	if out.Summary.CycleID != "cycle-1" || out.Summary.Checks != 2 || out.Summary.FailedChecks != 1 {
		t.Errorf("unexpected summary: %+v", out.Summary)
	}
	if out.Summary.DurationMS != 1500 {
		t.Errorf("DurationMS = %d", out.Summary.DurationMS)
	}
	if len(out.Cancellations) != 1 || out.Cancellations[0].BuildNumber != "11" {
		t.Errorf("unexpected cancellations: %+v", out.Cancellations)
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "appveyor rust-lang/cargo") {
		t.Errorf("unexpected errors: %v", out.Errors)
	}
}

func TestHandleListCycles(t *testing.T) {
	srv, history := newTestServer(t, &stubRunner{})
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"cycle-a", "cycle-b", "cycle-c"} {
		history.SaveCycle(ctx, testReport(id, base.Add(time.Duration(i)*time.Minute)))
	}

	res, _ := srv.handleListCycles(ctx, callRequest(map[string]any{"limit": 2}))
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var summaries []CycleSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summaries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(summaries) != 2 || summaries[0].CycleID != "cycle-c" || summaries[1].CycleID != "cycle-b" {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
	if summaries[0].StartedAt != "2024-03-01T12:02:00Z" {
		t.Errorf("StartedAt = %q", summaries[0].StartedAt)
	}
}

func TestHandleListCycles_InvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{})

	res, _ := srv.handleListCycles(context.Background(), callRequest(map[string]any{"limit": 0}))
	if !res.IsError {
		t.Error("expected tool error for zero limit")
	}
}

func TestHandleGetCycle(t *testing.T) {
	srv, history := newTestServer(t, &stubRunner{})
	ctx := context.Background()
	history.SaveCycle(ctx, testReport("cycle-1", time.Now()))

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "found", args: map[string]any{"cycle_id": "cycle-1"}},
		{name: "missing id", args: map[string]any{}, wantErr: "cycle_id parameter is required"},
		{name: "unknown id", args: map[string]any{"cycle_id": "cycle-9"}, wantErr: "cycle not found: cycle-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := srv.handleGetCycle(ctx, callRequest(tt.args))
			if err != nil {
				t.Fatalf("handleGetCycle() error = %v", err)
			}
			text := resultText(t, res)
			if tt.wantErr != "" {
				if !res.IsError || text != tt.wantErr {
					t.Errorf("got %q (IsError=%v), want error %q", text, res.IsError, tt.wantErr)
				}
				return
			}
			var report contracts.CycleReport
			if err := json.Unmarshal([]byte(text), &report); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if report.CycleID != "cycle-1" || len(report.Checks) != 2 {
				t.Errorf("unexpected report: %+v", report)
			}
		})
	}
}

func TestHandleParseRepository(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{})

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "rust-lang/cargo", want: "rust-lang/cargo"},
		{input: "cargo", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, _ := srv.handleParseRepository(context.Background(), callRequest(map[string]any{"repository": tt.input}))
			text := resultText(t, res)
			if tt.wantErr {
				if !res.IsError || !strings.Contains(text, "owner/name") {
					t.Errorf("expected error with hint, got %q", text)
				}
				return
			}
			var info RepositoryInfo
			if err := json.Unmarshal([]byte(text), &info); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if info.Slug != tt.want || info.Owner != "rust-lang" || info.Name != "cargo" {
				t.Errorf("unexpected info: %+v", info)
			}
		})
	}
}
