package persistence

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/pfal-lab/pfal-controller/internal/model/messages"
)

// envMeasurement is the measurement name for the combined environmental
// sensor; the scalar kinds use their kind name directly.
const envMeasurement = "bme280"

// ScalarPoint maps a single-value reading onto its measurement with the
// sensor id as tag and "value" as the lone field.
func ScalarPoint(kind messages.SensorKind, value float64, sensorID string, at time.Time) *write.Point {
	return influxdb2.NewPoint(
		string(kind),
		map[string]string{"sensor_id": sensorID},
		map[string]interface{}{"value": value},
		at,
	)
}

// EnvironmentPoint stores one BME280 sample as a single point carrying all
// three fields, so the sample stays atomic in the store.
func EnvironmentPoint(env messages.EnvPayload, at time.Time) *write.Point {
	return influxdb2.NewPoint(
		envMeasurement,
		map[string]string{"sensor_id": env.SensorID},
		map[string]interface{}{
			"temperature": env.Temperature,
			"humidity":    env.Humidity,
			"pressure":    env.Pressure,
		},
		at,
	)
}
