package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"tessera/internal/auth"
	"tessera/internal/config"
	"tessera/internal/metadata"
	"tessera/internal/store"
)

const testSecret = "test-secret"

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	spec := &metadata.TableSpec{Columns: []metadata.Column{
		{Name: "col", Type: "string"},
		{Name: "total", Type: "int"},
	}}
	client := store.NewMemoryTable("orders", spec)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, NewHandler(client, "orders"), AuthMiddleware(testSecret, "orders"))
	return app
}

func token(t *testing.T, role metadata.Role) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken("worker", "orders", role, testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func doRequest(t *testing.T, app *fiber.App, method, path, tok string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("parse response %s: %v", raw, err)
		}
	}
	return resp, parsed
}

func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error body, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestGateway_InsertGetRoundTrip(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	resp, _ := doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a", "total": 1})
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, body := doRequest(t, app, "GET", "/api/rows/row1", rw, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["col"] != "a" {
		t.Fatalf("unexpected row: %v", data)
	}
}

func TestGateway_DuplicateInsertConflicts(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a"})
	resp, body := doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "b"})
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if errCode(t, body) != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %s", errCode(t, body))
	}
}

func TestGateway_SchemaViolation(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	resp, body := doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a", "val": 1})
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if errCode(t, body) != "SCHEMA_VALIDATION" {
		t.Fatalf("expected SCHEMA_VALIDATION, got %s", errCode(t, body))
	}
	errObj := body["error"].(map[string]any)
	fields, _ := errObj["fields"].([]any)
	if len(fields) != 1 || fields[0] != "val" {
		t.Fatalf("expected fields=[val], got %v", fields)
	}
}

func TestGateway_GetMissingAndTryGet(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	resp, body := doRequest(t, app, "GET", "/api/rows/ghost", rw, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if errCode(t, body) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", errCode(t, body))
	}

	resp, body = doRequest(t, app, "GET", "/api/rows/ghost?try=1", rw, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("tryGet must not fail on missing key, got %d", resp.StatusCode)
	}
	if found, _ := body["found"].(bool); found {
		t.Fatalf("expected found=false, got %v", body)
	}
}

func TestGateway_UpdateAndUpsert(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	// Update on a missing key fails
	resp, _ := doRequest(t, app, "PUT", "/api/rows/row1", rw, map[string]any{"col": "a"})
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for update on missing key, got %d", resp.StatusCode)
	}

	// Upsert creates it
	resp, _ = doRequest(t, app, "PUT", "/api/rows/row1?mode=upsert", rw, map[string]any{"col": "a"})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for upsert, got %d", resp.StatusCode)
	}

	// Update merges
	resp, _ = doRequest(t, app, "PUT", "/api/rows/row1", rw, map[string]any{"total": 2})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for update, got %d", resp.StatusCode)
	}
	_, body := doRequest(t, app, "GET", "/api/rows/row1", rw, nil)
	data := body["data"].(map[string]any)
	if data["col"] != "a" || data["total"] != float64(2) {
		t.Fatalf("expected merged row, got %v", data)
	}
}

func TestGateway_DeleteLifecycle(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a"})
	resp, _ := doRequest(t, app, "DELETE", "/api/rows/row1", rw, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, app, "DELETE", "/api/rows/row1", rw, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 on double delete, got %d", resp.StatusCode)
	}
}

func TestGateway_ListWithFilter(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)

	doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a", "total": 1})
	doRequest(t, app, "POST", "/api/rows/row2", rw, map[string]any{"col": "b", "total": 5})

	resp, body := doRequest(t, app, "GET", "/api/rows", rw, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rows := body["data"].([]any); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	resp, body = doRequest(t, app, "GET", "/api/rows?filter=total+%3E+2", rw, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	rows := body["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 filtered row, got %d", len(rows))
	}
	row := rows[0].(map[string]any)
	if row["key"] != "row2" {
		t.Fatalf("expected row2, got %v", row)
	}
}

func TestGateway_RoleEnforcement(t *testing.T) {
	app := testApp(t)
	rw := token(t, metadata.RoleReadWrite)
	ro := token(t, metadata.RoleRead)

	doRequest(t, app, "POST", "/api/rows/row1", rw, map[string]any{"col": "a"})

	// READ token can read
	resp, _ := doRequest(t, app, "GET", "/api/rows/row1", ro, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for read with READ token, got %d", resp.StatusCode)
	}

	// READ token cannot write
	resp, body := doRequest(t, app, "POST", "/api/rows/row2", ro, map[string]any{"col": "b"})
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 for write with READ token, got %d", resp.StatusCode)
	}
	if errCode(t, body) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", errCode(t, body))
	}
	resp, _ = doRequest(t, app, "DELETE", "/api/rows/row1", ro, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 for delete with READ token, got %d", resp.StatusCode)
	}
}

func TestGateway_AuthRequired(t *testing.T) {
	app := testApp(t)

	resp, _ := doRequest(t, app, "GET", "/api/rows", "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Token scoped to a different table is rejected
	other, err := auth.GenerateAccessToken("worker", "payments", metadata.RoleReadWrite, testSecret)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	resp, _ = doRequest(t, app, "GET", "/api/rows", other, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 for foreign table token, got %d", resp.StatusCode)
	}
}

func TestTokenExchange(t *testing.T) {
	hash, err := auth.HashSecret("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	handler := NewTokenHandler([]config.Principal{
		{ID: "worker", SecretHash: hash, Role: "READWRITE"},
	}, "orders", testSecret)
	RegisterTokenRoutes(app, handler)

	// Valid credentials yield a usable token
	resp, body := doRequest(t, app, "POST", "/auth/token", "", map[string]any{
		"principal": "worker", "secret": "hunter2",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	tok, _ := body["access_token"].(string)
	if tok == "" {
		t.Fatalf("expected access token, got %v", body)
	}
	claims, err := auth.ParseAccessToken(tok, testSecret)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Table != "orders" || claims.Role != "READWRITE" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Wrong secret is rejected
	resp, _ = doRequest(t, app, "POST", "/auth/token", "", map[string]any{
		"principal": "worker", "secret": "wrong",
	})
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// Unknown principal is rejected
	resp, _ = doRequest(t, app, "POST", "/auth/token", "", map[string]any{
		"principal": "ghost", "secret": "hunter2",
	})
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
