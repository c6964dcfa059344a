package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveLLMRequest("GPT_5", "200", time.Second, 10)
	m.ObserveGeneration("GPT_5", "COMPLETED", time.Second)
	m.ObserveLedger("GENERATION_COST", -5)
	m.ObserveJobRun("code_generate", "succeeded", time.Second)
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nil metrics output: want empty got=%q", buf.String())
	}
}

func TestWritePrometheusExposition(t *testing.T) {
	m := newMetrics()
	m.ObserveLLMRequest("GPT_5", "200", 2*time.Second, 3400)
	m.ObserveLLMRequest("GPT_5", "429", 0, 0)
	m.ObserveLedger("GENERATION_COST", -54)
	m.ObserveLedger("DAILY_CLAIM", 10)
	m.ObserveJobRun("code_generate", "failed", time.Second)
	m.ObserveAPI("POST", "/api/projects/:id/generate", "503", 10*time.Millisecond)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`fc_llm_requests_total{model="GPT_5",status="200"} 1.000000`,
		`fc_llm_requests_total{model="GPT_5",status="429"} 1.000000`,
		`fc_llm_tokens_total{model="GPT_5"} 3400.000000`,
		`fc_ledger_tokens_debited_total{type="GENERATION_COST"} 54.000000`,
		`fc_ledger_tokens_credited_total{type="DAILY_CLAIM"} 10.000000`,
		`fc_worker_job_failures_total 1.000000`,
		`fc_api_requests_error_total 1.000000`,
		`fc_llm_request_duration_seconds_bucket{model="GPT_5",status="200",le="2"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, `status="200"} 1`) > strings.Index(out, `status="429"} 1`) {
		t.Fatalf("label sets should be written in sorted order")
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: got=%s", got)
	}
}
