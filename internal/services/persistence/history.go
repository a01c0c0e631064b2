package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// HistoryPoint is one row of the history response.
type HistoryPoint struct {
	SensorID string  `json:"sensor_id,omitempty"`
	Value    float64 `json:"value"`
	Time     string  `json:"time"` // RFC3339
}

type historyParams struct {
	Kind    string
	Minutes int
	Limit   int
}

func parseHistory(r *http.Request) (historyParams, error) {
	q := r.URL.Query()
	get := func(key string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	kind := strings.TrimSpace(q.Get("kind"))
	if kind == "" {
		kind = "ph"
	}
	switch kind {
	case "ph", "ec", "temperature":
	default:
		return historyParams{}, fmt.Errorf("unknown kind %q", kind)
	}
	return historyParams{
		Kind:    kind,
		Minutes: get("minutes", 60, 1, 7*24*60),
		Limit:   get("limit", 100, 1, 500),
	}, nil
}

func buildFlux(bucket, kind string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q and r._field == "value")
  |> keep(columns: ["_time","_value","sensor_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, kind, limit)
}

// NewHistoryHandler serves GET /data/history?kind=ph&minutes=60&limit=100
// from the time-series store. Query failures degrade to an empty list with
// an error header rather than a 5xx, so dashboards keep rendering.
func NewHistoryHandler(client influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := parseHistory(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		res, err := client.QueryAPI(org).Query(ctx, buildFlux(bucket, p.Kind, p.Minutes, p.Limit))
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		defer func() { _ = res.Close() }()

		out := make([]HistoryPoint, 0, p.Limit)
		for res.Next() {
			rec := res.Record()

			var value float64
			switch v := rec.Value().(type) {
			case float64:
				value = v
			case int64:
				value = float64(v)
			}

			var sensorID string
			if v := rec.ValueByKey("sensor_id"); v != nil {
				if s, ok := v.(string); ok {
					sensorID = s
				}
			}

			out = append(out, HistoryPoint{
				SensorID: sensorID,
				Value:    value,
				Time:     rec.Time().UTC().Format(time.RFC3339),
			})
		}
		if res.Err() != nil {
			w.Header().Set("X-Error", "influx-iter-error")
		}
		_ = json.NewEncoder(w).Encode(out)
	})
}
