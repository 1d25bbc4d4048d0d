package e2e

import (
	"net/http"
	"testing"
)

func TestRecordDecision(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"sourceDims": {"width": 1920, "height": 1080},
		"targetDims": {"width": 1920, "height": 1161},
		"humanChoice": "proceed"
	}`
	resp, err := doAuthRequest(t, ta.app, "POST", "/api/ledger/decisions", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)

	result := parseJSON(t, resp)
	record, ok := result["record"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected record, got %v", result)
	}
	if record["aiRecommendation"] != "minor_scale" {
		t.Errorf("expected minor_scale recommendation, got %v", record["aiRecommendation"])
	}
	if record["agreed"] != true {
		t.Error("proceeding on an auto-applicable transform should agree")
	}
}

func TestRecordDecision_InvalidChoice(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"sourceDims": {"width": 1920, "height": 1080},
		"targetDims": {"width": 1080, "height": 1920},
		"humanChoice": "shrug"
	}`
	resp, err := doAuthRequest(t, ta.app, "POST", "/api/ledger/decisions", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestLedgerStats(t *testing.T) {
	ta := setupApp(t)

	decisions := []string{
		`{"sourceDims": {"width": 1920, "height": 1080}, "targetDims": {"width": 1920, "height": 1161}, "humanChoice": "proceed"}`,
		`{"sourceDims": {"width": 1920, "height": 1080}, "targetDims": {"width": 1080, "height": 1920}, "humanChoice": "manual_fix"}`,
		`{"sourceDims": {"width": 1920, "height": 1080}, "targetDims": {"width": 1080, "height": 1920}, "humanChoice": "proceed"}`,
	}
	for _, d := range decisions {
		resp, err := doAuthRequest(t, ta.app, "POST", "/api/ledger/decisions", d)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusCreated)
	}

	resp, err := doAuthRequest(t, ta.app, "GET", "/api/ledger/stats", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	stats := parseJSON(t, resp)
	if stats["totalRecords"] != float64(3) {
		t.Errorf("expected 3 records, got %v", stats["totalRecords"])
	}
	// two of three choices agreed with the engine
	rate, _ := stats["agreementRate"].(float64)
	if rate < 0.66 || rate > 0.67 {
		t.Errorf("expected agreement rate 2/3, got %v", rate)
	}
	overrides, ok := stats["commonOverrides"].([]interface{})
	if !ok || len(overrides) != 1 {
		t.Fatalf("expected one override pattern, got %v", stats["commonOverrides"])
	}
}
