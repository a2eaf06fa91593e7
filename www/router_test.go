package www

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"partsdesk/auth"
	"partsdesk/config"
	"partsdesk/inventory"
	"partsdesk/store"
)

func testServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	cfg := config.Defaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop().Sugar()
	router := NewRouter(cfg, inventory.New(db, log), auth.New(db, log), log)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return srv, &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func login(t *testing.T, client *http.Client, base string) {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, base+"/api/login",
		map[string]string{"username": "admin", "password": "admin"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, client := testServer(t)

	resp, err := client.Get(srv.URL + "/api/clients")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv, client := testServer(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"username": "admin", "password": "nope"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}
}

func TestClientLifecycleOverHTTP(t *testing.T) {
	srv, client := testServer(t)
	login(t, client, srv.URL)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/clients",
		map[string]string{"phone": "5551234", "name": "Alice"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	// Duplicate is the caller's fault.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/clients",
		map[string]string{"phone": "5551234", "name": "Bob"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate status = %d, want 400", resp.StatusCode)
	}

	resp, err := client.Get(srv.URL + "/api/clients/5551234")
	if err != nil {
		t.Fatal(err)
	}
	var snap struct {
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	resp.Body.Close()
	if snap.Client.Name != "Alice" {
		t.Errorf("snapshot name = %q", snap.Client.Name)
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/clients/5551234", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = client.Get(srv.URL + "/api/clients/5551234")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestUndoOverHTTP(t *testing.T) {
	srv, client := testServer(t)
	login(t, client, srv.URL)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/clients",
		map[string]string{"phone": "5551234", "name": "Alice"})
	resp.Body.Close()
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/parts", map[string]any{
		"client_phone": "5551234",
		"name":         "Radiator",
		"quantity":     2,
	})
	var created struct {
		ID int64 `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.ID == 0 {
		t.Fatal("part id missing")
	}

	// Nothing buffered yet.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/undo", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("undo with empty buffer = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodDelete,
		srv.URL+"/api/parts/"+strconv.FormatInt(created.ID, 10), nil)
	resp.Body.Close()

	resp, _ = client.Get(srv.URL + "/api/undo")
	var status struct {
		Available bool `json:"available"`
	}
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if !status.Available {
		t.Fatal("undo should be available after a delete")
	}

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/undo", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("undo status = %d", resp.StatusCode)
	}

	// Buffer is single-slot: a second undo fails.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/undo", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("second undo = %d, want 400", resp.StatusCode)
	}

	resp, _ = client.Get(srv.URL + "/api/clients/5551234")
	var snap struct {
		Parts []struct {
			PartName string `json:"part_name"`
		} `json:"parts"`
	}
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if len(snap.Parts) != 1 || snap.Parts[0].PartName != "Radiator" {
		t.Errorf("parts after undo = %+v", snap.Parts)
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	srv, client := testServer(t)
	login(t, client, srv.URL)

	// Demote the session is not possible directly; create a plain user
	// and log in as them instead.
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/users",
		map[string]string{"username": "alice", "password": "pw", "role": "user"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user status = %d", resp.StatusCode)
	}

	jar, _ := cookiejar.New(nil)
	userClient := &http.Client{Jar: jar}
	resp = doJSON(t, userClient, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"username": "alice", "password": "pw"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("user login status = %d", resp.StatusCode)
	}

	resp, err := userClient.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user hitting admin route = %d, want 403", resp.StatusCode)
	}

	// Regular API still works for them.
	resp, _ = userClient.Get(srv.URL + "/api/search?q=x")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("user search = %d, want 200", resp.StatusCode)
	}
}
