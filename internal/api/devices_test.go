package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/calegray/powercore/internal/auth"
)

// decodeDeviceView unmarshals a DeviceView response body.
func decodeDeviceView(t *testing.T, body []byte) DeviceView {
	t.Helper()
	var view DeviceView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decoding device view: %v", err)
	}
	return view
}

func TestListDevices(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/devices", bearerToken(t, auth.RoleViewer), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list devices status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Devices []DeviceView `json:"devices"`
		Count   int          `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}

	states := make(map[string]string, len(resp.Devices))
	for _, d := range resp.Devices {
		states[d.Name] = d.State
	}
	if states["uart0"] != "suspended" {
		t.Errorf("uart0 state = %q, want suspended", states["uart0"])
	}
	if states["dma0"] != "active" {
		t.Errorf("dma0 state = %q, want active", states["dma0"])
	}
}

func TestGetDevice(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/devices/uart0", bearerToken(t, auth.RoleViewer), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get device status = %d, want 200", rec.Code)
	}

	view := decodeDeviceView(t, rec.Body.Bytes())
	if view.Name != "uart0" {
		t.Errorf("name = %q, want uart0", view.Name)
	}
	if view.State != "suspended" {
		t.Errorf("state = %q, want suspended", view.State)
	}
	if !view.RuntimeEnabled {
		t.Error("uart0 should have runtime PM enabled")
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/devices/nonexistent", bearerToken(t, auth.RoleViewer), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", rec.Code)
	}
}

func TestDeviceGetAndPut(t *testing.T) {
	srv, _ := testServer(t)
	token := bearerToken(t, auth.RoleOperator)

	// Claim the device: first user resumes it
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/devices/uart0/get", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("device get status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	view := decodeDeviceView(t, rec.Body.Bytes())
	if view.State != "active" {
		t.Errorf("state after get = %q, want active", view.State)
	}
	if view.UsageCount != 1 {
		t.Errorf("usage count after get = %d, want 1", view.UsageCount)
	}

	// Release it: last user suspends it
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/devices/uart0/put", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("device put status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	view = decodeDeviceView(t, rec.Body.Bytes())
	if view.State != "suspended" {
		t.Errorf("state after put = %q, want suspended", view.State)
	}
	if view.UsageCount != 0 {
		t.Errorf("usage count after put = %d, want 0", view.UsageCount)
	}
}

func TestDeviceGet_ViewerForbidden(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/devices/uart0/get", bearerToken(t, auth.RoleViewer), "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer device get status = %d, want 403", rec.Code)
	}
}

func TestSetDeviceState(t *testing.T) {
	srv, _ := testServer(t)
	token := bearerToken(t, auth.RoleOperator)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state", token, `{"state":"active"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set state status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	view := decodeDeviceView(t, rec.Body.Bytes())
	if view.State != "active" {
		t.Errorf("state = %q, want active", view.State)
	}

	// Same state again is a conflict
	rec = doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state", token, `{"state":"active"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat set state status = %d, want 409", rec.Code)
	}
}

func TestSetDeviceState_InvalidState(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state",
		bearerToken(t, auth.RoleOperator), `{"state":"hibernate"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid state status = %d, want 400", rec.Code)
	}
}

func TestSetDeviceState_OffRequiresActivate(t *testing.T) {
	srv, _ := testServer(t)
	token := bearerToken(t, auth.RoleOperator)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state", token, `{"state":"off"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set off status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// Off devices can only return to active
	rec = doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state", token, `{"state":"suspended"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("off->suspended status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/v1/devices/uart0/state", token, `{"state":"active"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("off->active status = %d, want 200", rec.Code)
	}
}
