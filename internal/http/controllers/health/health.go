// Package health contiene los controllers de liveness y readiness.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
)

// Pinger es cualquier dependencia que sabe reportar si está viva.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps contiene las dependencias del controller.
type Deps struct {
	// Components por nombre (ej: "cache", "accounts_store").
	Components map[string]Pinger
	Version    string
	Timeout    time.Duration
}

type Controller struct {
	components map[string]Pinger
	version    string
	timeout    time.Duration
}

func NewController(d Deps) *Controller {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &Controller{components: d.Components, version: d.Version, timeout: d.Timeout}
}

type componentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components []componentStatus `json:"components,omitempty"`
}

// Healthz maneja GET /healthz: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: todas las dependencias responden al ping.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := response{Status: "ready", Version: c.version}
	status := http.StatusOK
	for _, name := range names {
		cs := componentStatus{Name: name, Status: "ok"}
		if err := c.components[name].Ping(ctx); err != nil {
			cs.Status, cs.Error = "down", err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			log.Warn("component not ready", logger.Component(name), logger.Err(err))
		}
		resp.Components = append(resp.Components, cs)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
