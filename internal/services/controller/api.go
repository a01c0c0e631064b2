package controller

import (
	"encoding/json"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreHealth reports how long ago the time-series store last failed a
// write. Implemented by the persistence recorder.
type StoreHealth interface {
	LastErrorAge() time.Duration
}

// NewHTTPMux builds the controller's HTTP surface: health, readiness,
// metrics, the latest snapshot, actuator states, and an optional history
// handler backed by the time-series store.
func NewHTTPMux(c *Controller, client mqtt.Client, store StoreHealth, history http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		type status struct {
			Status         string  `json:"status"`
			MQTTConnected  bool    `json:"mqtt_connected"`
			StoreErrAgeSec float64 `json:"store_error_age_sec"`
		}
		st := status{
			MQTTConnected:  client != nil && client.IsConnectionOpen(),
			StoreErrAgeSec: store.LastErrorAge().Seconds(),
		}
		switch {
		case st.MQTTConnected && store.LastErrorAge() > 30*time.Second:
			st.Status = "ok"
		case st.MQTTConnected:
			st.Status = "degraded"
		default:
			st.Status = "down"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ready := client != nil && client.IsConnectionOpen()
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
	})

	// GET /data/latest: the current snapshot, one entry per observed kind.
	mux.HandleFunc("/data/latest", func(w http.ResponseWriter, _ *http.Request) {
		type outT struct {
			Kind       string  `json:"kind"`
			Value      float64 `json:"value"`
			SensorID   string  `json:"sensor_id"`
			ObservedAt string  `json:"observed_at"`
		}
		readings := c.LatestReadings()
		out := make([]outT, 0, len(readings))
		for _, r := range readings {
			out = append(out, outT{
				Kind:       string(r.Kind),
				Value:      r.Value,
				SensorID:   r.SourceID,
				ObservedAt: r.ObservedAt.UTC().Format(time.RFC3339),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	// GET /actuators: last commanded state per channel.
	mux.HandleFunc("/actuators", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.CommandedStates())
	})

	if history != nil {
		mux.Handle("/data/history", history)
	}

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
