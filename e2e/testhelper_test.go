package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/templateflow/api/internal/config"
	"github.com/templateflow/api/internal/handler"
	"github.com/templateflow/api/internal/ledger"
	"github.com/templateflow/api/internal/middleware"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app *fiber.App
	svc *service.JobService
}

// setupApp creates a Fiber app with the same routes as main.go but backed
// by in-memory stores and with background task dispatch disabled. Rate
// limiting is omitted; it needs Redis and is covered by its own unit.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	validate := validator.New()

	jobStore := store.NewMemoryStore()
	jobService := service.NewJobService(jobStore, nil, config.ThresholdConfig{})
	decisionLedger := ledger.New(ledger.NewMemoryStore())

	jobHandler := handler.NewJobHandler(jobService, validate)
	matchHandler := handler.NewMatchHandler(jobService, validate)
	validationHandler := handler.NewValidationHandler(jobService, validate)
	ledgerHandler := handler.NewLedgerHandler(decisionLedger, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", authMiddleware.Authenticate())

	jobs := api.Group("/jobs")
	jobs.Post("/", jobHandler.Create)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/:jobId", jobHandler.Get)
	jobs.Post("/:jobId/parse", jobHandler.Parse)
	jobs.Get("/:jobId/audit", jobHandler.Audit)
	jobs.Get("/:jobId/script", jobHandler.Script)

	jobs.Post("/:jobId/match", matchHandler.Run)
	jobs.Get("/:jobId/matches", matchHandler.Get)
	jobs.Put("/:jobId/matches/:sourceId", matchHandler.Override)
	jobs.Post("/:jobId/review/complete", matchHandler.CompleteReview)

	jobs.Post("/:jobId/preview/approve", validationHandler.ApprovePreview)
	jobs.Get("/:jobId/conflicts", validationHandler.Conflicts)
	jobs.Post("/:jobId/validation/approve", validationHandler.Approve)
	jobs.Post("/:jobId/validation/override", validationHandler.Override)
	jobs.Post("/:jobId/validation/return", validationHandler.Return)
	jobs.Post("/:jobId/script/retry", validationHandler.Retry)

	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Post("/decisions", ledgerHandler.RecordDecision)
	ledgerGroup.Get("/stats", ledgerHandler.Stats)

	return &testApp{app: app, svc: jobService}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := middleware.UserClaims{
		UserID: "test-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "templateflow-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts the error code from an error response body.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no error object: %v", result)
	}
	code, _ := errObj["code"].(string)
	return code
}

// createJobBody is a well-formed job creation payload. Source and target
// share the 16:9 frame so the conflict gate stays clear.
func createJobBody() string {
	return `{
		"name": "spring campaign",
		"sourceLayers": [
			{"id": "s1", "name": "Headline", "kind": "text", "textContent": "Spring Sale",
			 "bbox": {"left": 0, "top": 0, "right": 600, "bottom": 80}, "orderIndex": 0},
			{"id": "s2", "name": "Hero", "kind": "image", "path": "assets/hero.png",
			 "bbox": {"left": 0, "top": 100, "right": 1920, "bottom": 900}, "orderIndex": 1}
		],
		"targets": [
			{"id": "t1", "name": "Headline Text", "kind": "text", "width": 800, "height": 90, "orderIndex": 0},
			{"id": "t2", "name": "Hero Image", "kind": "image", "orderIndex": 1}
		],
		"sourceDims": {"width": 1920, "height": 1080},
		"targetDims": {"width": 1920, "height": 1080}
	}`
}

// createJob posts a job and returns its id.
func createJob(t *testing.T, ta *testApp) string {
	t.Helper()
	resp, err := doAuthRequest(t, ta.app, "POST", "/api/jobs/", createJobBody())
	if err != nil {
		t.Fatalf("create job request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	result := parseJSON(t, resp)
	jobID, _ := result["jobId"].(string)
	if jobID == "" {
		t.Fatalf("create response missing jobId: %v", result)
	}
	return jobID
}

// advanceTo walks a job through the given transition endpoints in order.
func advanceTo(t *testing.T, ta *testApp, jobID string, steps ...string) {
	t.Helper()
	for _, step := range steps {
		path := fmt.Sprintf("/api/jobs/%s/%s", jobID, step)
		resp, err := doAuthRequest(t, ta.app, "POST", path, "")
		if err != nil {
			t.Fatalf("step %s failed: %v", step, err)
		}
		if resp.StatusCode >= 300 {
			t.Fatalf("step %s returned %d: %s", step, resp.StatusCode, readBody(t, resp))
		}
	}
}
