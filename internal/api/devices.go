package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calegray/powercore/internal/pm"
)

// DeviceView is the JSON representation of a device's power record.
type DeviceView struct {
	Name           string   `json:"name"`
	State          string   `json:"state"`
	UsageCount     int      `json:"usage_count"`
	Transitioning  bool     `json:"transitioning"`
	RuntimeEnabled bool     `json:"runtime_enabled"`
	Busy           bool     `json:"busy"`
	WakeupCapable  bool     `json:"wakeup_capable"`
	WakeupEnabled  bool     `json:"wakeup_enabled"`
	Requires       []string `json:"requires,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	Children       []string `json:"children,omitempty"`
}

// deviceView builds the JSON view for one device.
func (s *Server) deviceView(dev *pm.Device) DeviceView {
	view := DeviceView{
		Name:           dev.Name(),
		State:          dev.State().String(),
		UsageCount:     dev.UsageCount(),
		Transitioning:  dev.TransitionInProgress(),
		RuntimeEnabled: dev.RuntimeEnabled(),
		Busy:           dev.IsBusy(),
		WakeupCapable:  dev.WakeupCapable(),
		WakeupEnabled:  dev.WakeupEnabled(),
		Requires:       dev.Requires(),
	}

	if domain := s.engine.DomainOf(dev); domain != nil {
		view.Domain = domain.Name()
	}
	for _, child := range s.engine.Children(dev) {
		view.Children = append(view.Children, child.Name())
	}

	return view
}

// handleListDevices returns the power state of every managed device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.engine.Registry().Devices()

	views := make([]DeviceView, 0, len(devices))
	for _, dev := range devices {
		views = append(views, s.deviceView(dev))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": views,
		"count":   len(views),
	})
}

// handleGetDevice returns the power state of one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.deviceView(dev))
}

// requestOptions is the optional body for get/put requests.
type requestOptions struct {
	// Wait blocks until the device settles. Defaults to true.
	Wait *bool `json:"wait"`
}

// handleDeviceGet claims the device, resuming it if this is the first user.
func (s *Server) handleDeviceGet(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	wait, ok := decodeRequestOptions(w, r)
	if !ok {
		return
	}

	var err error
	if wait {
		err = s.engine.GetSync(r.Context(), dev)
	} else {
		err = s.engine.Get(dev)
	}
	if err != nil {
		writePowerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.deviceView(dev))
}

// handleDevicePut releases the device, suspending it when the last user leaves.
func (s *Server) handleDevicePut(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	wait, ok := decodeRequestOptions(w, r)
	if !ok {
		return
	}

	var err error
	if wait {
		err = s.engine.PutSync(r.Context(), dev)
	} else {
		err = s.engine.Put(dev)
	}
	if err != nil {
		writePowerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.deviceView(dev))
}

// setStateRequest is the body for PUT /devices/{name}/state.
type setStateRequest struct {
	State string `json:"state"`
}

// handleSetDeviceState drives the device directly to a target state.
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	target, err := pm.ParseState(req.State)
	if err != nil {
		writeBadRequest(w, "unknown power state: "+req.State)
		return
	}

	if err := s.engine.SetState(dev, target); err != nil {
		writePowerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.deviceView(dev))
}

// lookupDevice resolves the {name} URL parameter, writing a 404 on failure.
func (s *Server) lookupDevice(w http.ResponseWriter, r *http.Request) (*pm.Device, bool) {
	name := chi.URLParam(r, "name")
	dev, err := s.engine.Registry().Get(name)
	if err != nil {
		writeNotFound(w, "device not found: "+name)
		return nil, false
	}
	return dev, true
}

// decodeRequestOptions parses the optional get/put body. An empty body
// means wait for the device to settle.
func decodeRequestOptions(w http.ResponseWriter, r *http.Request) (wait, ok bool) {
	var opts requestOptions
	err := json.NewDecoder(r.Body).Decode(&opts)
	if err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return false, false
	}

	wait = true
	if opts.Wait != nil {
		wait = *opts.Wait
	}
	return wait, true
}

// writePowerError maps engine errors to HTTP status codes.
func writePowerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pm.ErrDeviceNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, pm.ErrNotSupported):
		writeBadRequest(w, err.Error())
	case errors.Is(err, pm.ErrAlreadyInState), errors.Is(err, pm.ErrBusy):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, pm.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
	case errors.Is(err, pm.ErrIOFailure):
		writeError(w, http.StatusBadGateway, ErrCodeDeviceFailure, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
