package messages

import "time"

// SensorKind identifies one slot in the controller's snapshot. The string
// value doubles as the measurement name for single-value sensors.
type SensorKind string

const (
	KindPH          SensorKind = "ph"
	KindEC          SensorKind = "ec"
	KindTemperature SensorKind = "temperature"
	KindHumidity    SensorKind = "humidity"
	KindPressure    SensorKind = "pressure"
)

// SensorReading is one decoded observation. Immutable once constructed.
// A BME280 sample yields three readings (temperature, humidity, pressure)
// sharing one ObservedAt.
type SensorReading struct {
	Kind       SensorKind `json:"kind"`
	Value      float64    `json:"value"`
	SourceID   string     `json:"sensor_id"`
	ObservedAt time.Time  `json:"observed_at"`
}

// ScalarPayload is the inbound wire shape for single-value sensors
// (pH, EC, standalone temperature probe).
type ScalarPayload struct {
	Value    float64 `json:"value"`
	SensorID string  `json:"sensor_id"`
}

// EnvPayload is the inbound wire shape of the combined BME280
// environmental sensor.
type EnvPayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	SensorID    string  `json:"sensor_id"`
}
