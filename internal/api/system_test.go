package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/calegray/powercore/internal/auth"
	"github.com/calegray/powercore/internal/history"
	"github.com/calegray/powercore/internal/pm"
)

func TestSuspendAllAndResumeAll(t *testing.T) {
	srv, engine := testServer(t)
	token := bearerToken(t, auth.RoleAdmin)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/system/suspend", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("suspend status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding suspend response: %v", err)
	}
	if resp["target"] != "suspended" {
		t.Errorf("target = %v, want suspended", resp["target"])
	}

	for _, dev := range engine.Registry().Devices() {
		if dev.State() == pm.StateActive {
			t.Errorf("%s still active after bulk suspend", dev.Name())
		}
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/system/resume", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// dma0 was active before the suspend and must come back; uart0 was
	// already suspended so the resume leaves it alone.
	dma, err := engine.Registry().Get("dma0")
	if err != nil {
		t.Fatalf("Get(dma0): %v", err)
	}
	if dma.State() != pm.StateActive {
		t.Errorf("dma0 state after resume = %s, want active", dma.State())
	}

	uart, err := engine.Registry().Get("uart0")
	if err != nil {
		t.Fatalf("Get(uart0): %v", err)
	}
	if uart.State() != pm.StateSuspended {
		t.Errorf("uart0 state after resume = %s, want suspended", uart.State())
	}
}

func TestSuspendAll_ExplicitTarget(t *testing.T) {
	srv, engine := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/system/suspend",
		bearerToken(t, auth.RoleAdmin), `{"target":"low-power"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("suspend status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	dma, err := engine.Registry().Get("dma0")
	if err != nil {
		t.Fatalf("Get(dma0): %v", err)
	}
	if dma.State() != pm.StateLowPower {
		t.Errorf("dma0 state = %s, want low-power", dma.State())
	}
}

func TestSuspendAll_InvalidTarget(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/system/suspend",
		bearerToken(t, auth.RoleAdmin), `{"target":"active"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("suspend to active status = %d, want 400", rec.Code)
	}
}

func TestSuspendAll_BusyDeviceVetoes(t *testing.T) {
	srv, engine := testServer(t)

	dma, err := engine.Registry().Get("dma0")
	if err != nil {
		t.Fatalf("Get(dma0): %v", err)
	}
	dma.SetBusy()
	defer dma.ClearBusy()

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/system/suspend",
		bearerToken(t, auth.RoleAdmin), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("suspend with busy device status = %d, want 409", rec.Code)
	}

	if dma.State() != pm.StateActive {
		t.Errorf("dma0 state = %s, want active after vetoed suspend", dma.State())
	}
}

func TestSystemEndpoints_RequireAdmin(t *testing.T) {
	srv, _ := testServer(t)

	for _, role := range []auth.Role{auth.RoleViewer, auth.RoleOperator} {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/system/suspend", bearerToken(t, role), "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s suspend status = %d, want 403", role, rec.Code)
		}
		rec = doRequest(t, srv, http.MethodPost, "/api/v1/system/resume", bearerToken(t, role), "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s resume status = %d, want 403", role, rec.Code)
		}
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, engine := testServer(t)
	token := bearerToken(t, auth.RoleViewer)

	// Drive a couple of transitions through the history sink path
	repo, ok := srv.history.(*fakeHistory)
	if !ok {
		t.Fatal("test server should use fakeHistory")
	}
	engine.Notify(func(ev pm.Event) {
		//nolint:errcheck // fakeHistory.Record cannot fail
		repo.Record(context.Background(), history.FromEvent(ev))
	})

	operator := bearerToken(t, auth.RoleOperator)
	doRequest(t, srv, http.MethodPost, "/api/v1/devices/uart0/get", operator, "")
	doRequest(t, srv, http.MethodPost, "/api/v1/devices/uart0/put", operator, "")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/history", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding history response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("history count = %d, want 2", resp.Count)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/devices/uart0/history?limit=10", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("device history status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding device history response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("device history count = %d, want 2", resp.Count)
	}
}
