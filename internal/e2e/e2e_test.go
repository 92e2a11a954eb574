package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"extractd/pkg/types"
)

// TestE2E_CompleteRulesSkipModel verifies that text the rules fully cover never
// reaches the backend.
func TestE2E_CompleteRulesSkipModel(t *testing.T) {
	llama := newFakeLlamaServer(t, "ИНН: 500100732259")
	srv, _ := newServer(t, createTempModelsDir(t), llama)

	res := postExtract(t, srv.URL, "Клиент: Петров Алексей Сергеевич, ИНН 123456789012")
	if res["taxId"] != "123456789012" || res["fullName"] != "Петров Алексей Сергеевич" || res["method"] != "rule-based" {
		t.Fatalf("unexpected result: %v", res)
	}
	if res["rawModelOutput"] != nil || res["error"] != nil {
		t.Fatalf("model fields should be null: %v", res)
	}
	if n := llama.calls.Load(); n != 0 {
		t.Fatalf("backend called %d times", n)
	}
}

// TestE2E_HybridFillsMissingField verifies the model supplies only what the
// rules missed and the prompt carries what they found.
func TestE2E_HybridFillsMissingField(t *testing.T) {
	llama := newFakeLlamaServer(t, "ИНН: 500100732259\nФИО: Сидорова Анна Павловна")
	srv, _ := newServer(t, createTempModelsDir(t), llama)

	res := postExtract(t, srv.URL, "Платёж по счёту, ИНН получателя 7707083893, представитель сидорова анна")
	if res["method"] != "hybrid" {
		t.Fatalf("want hybrid, got %v", res)
	}
	if res["taxId"] != "7707083893" {
		t.Fatalf("rule value must win: %v", res)
	}
	if res["fullName"] != "Сидорова Анна Павловна" {
		t.Fatalf("unexpected name: %v", res)
	}
	if raw, _ := res["rawModelOutput"].(string); !strings.Contains(raw, "Сидорова") {
		t.Fatalf("raw output missing: %v", res)
	}
	prompt := <-llama.prompts
	if !strings.Contains(prompt, "7707083893") || !strings.Contains(prompt, "представитель сидорова анна") {
		t.Fatalf("prompt lacks text or found fields:\n%s", prompt)
	}
}

// TestE2E_BackendDown verifies a failing backend degrades to the rule-based
// partial with an error and flips readiness.
func TestE2E_BackendDown(t *testing.T) {
	llama := newFakeLlamaServer(t, "")
	llama.down.Store(true)
	srv, _ := newServer(t, createTempModelsDir(t), llama)

	res := postExtract(t, srv.URL, "ИНН 7707083893")
	if res["method"] != "rule-based" || res["taxId"] != "7707083893" || res["fullName"] != nil {
		t.Fatalf("unexpected result: %v", res)
	}
	if msg, _ := res["error"].(string); !strings.HasPrefix(msg, "generation failed") {
		t.Fatalf("want generation error, got %v", res["error"])
	}

	resp, _ := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz=%d", resp.StatusCode)
	}
	llama.down.Store(false)
	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz after recovery=%d", resp.StatusCode)
	}
}

// TestE2E_NothingFound mirrors a model that admits it found nothing.
func TestE2E_NothingFound(t *testing.T) {
	llama := newFakeLlamaServer(t, "ИНН: не найден\nФИО: не найдено")
	srv, _ := newServer(t, createTempModelsDir(t), llama)

	res := postExtract(t, srv.URL, "Просто текст без данных")
	if res["taxId"] != nil || res["fullName"] != nil || res["method"] != "rule-based" || res["error"] != nil {
		t.Fatalf("unexpected result: %v", res)
	}
	if llama.calls.Load() != 1 {
		t.Fatalf("backend calls=%d", llama.calls.Load())
	}
}

func TestE2E_ModelsStatusMetrics(t *testing.T) {
	dir := createTempModelsDir(t, "alpha.gguf", "beta.GGUF", "notes.txt")
	srv, _ := newServer(t, dir, nil)

	resp, body := httpGet(t, srv.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("models status=%d", resp.StatusCode)
	}
	var mr types.ModelsResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(mr.Models) != 2 || mr.Models[0].ID != "alpha.gguf" {
		t.Fatalf("unexpected models: %+v", mr.Models)
	}

	resp, body = httpGet(t, srv.URL+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, err)
	}
	if st.Backend != "none" || st.Profile != "default" || !st.BackendReady {
		t.Fatalf("unexpected status: %+v", st)
	}

	postExtract(t, srv.URL, "Клиент: Петров Алексей Сергеевич, ИНН 123456789012")
	_, body = httpGet(t, srv.URL+"/metrics")
	for _, name := range []string{"extractd_extract_results_total", "extractd_http_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("metrics missing %s", name)
		}
	}
}

// TestE2E_BlankText verifies empty input gets an all-null result without a
// backend call.
func TestE2E_BlankText(t *testing.T) {
	llama := newFakeLlamaServer(t, "ФИО: Иванов Иван")
	srv, _ := newServer(t, createTempModelsDir(t), llama)
	for _, text := range []string{"", "   \n\t"} {
		res := postExtract(t, srv.URL, text)
		for _, k := range []string{"taxId", "fullName", "rawModelOutput", "error"} {
			if v, ok := res[k]; !ok || v != nil {
				t.Fatalf("%q: %s should be null: %v", text, k, res)
			}
		}
		if res["method"] != "rule-based" {
			t.Fatalf("%q: method=%v", text, res["method"])
		}
	}
	if n := llama.calls.Load(); n != 0 {
		t.Fatalf("backend called %d times", n)
	}
}

func TestE2E_BadRequests(t *testing.T) {
	srv, _ := newServer(t, createTempModelsDir(t), nil)
	cases := []struct {
		body string
		want int
	}{
		{`{"text":`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp, body := httpPostJSON(t, srv.URL+"/extract", []byte(c.body))
		if resp.StatusCode != c.want {
			t.Fatalf("%s -> %d, want %d", c.body, resp.StatusCode, c.want)
		}
		var er types.ErrorResponse
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			t.Fatalf("error body %s: %v", body, err)
		}
	}
}
