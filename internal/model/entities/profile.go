package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// CropProfile is the immutable set of setpoints, tolerances and schedule for
// one crop. It is loaded once at startup and never mutated during a run;
// swapping profiles requires a restart.
type CropProfile struct {
	ProfileName string `json:"profile_name"`

	PHTarget    float64 `json:"ph_target"`
	PHTolerance float64 `json:"ph_tolerance"`
	ECTarget    float64 `json:"ec_target"`
	ECTolerance float64 `json:"ec_tolerance"`

	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	HumidityMin float64 `json:"humidity_min"`
	HumidityMax float64 `json:"humidity_max"`

	LightsOnHour  int `json:"lights_on_hour"`
	LightsOffHour int `json:"lights_off_hour"`

	PHPumpDurationMs       uint32 `json:"ph_pump_duration_ms"`
	NutrientPumpDurationMs uint32 `json:"nutrient_pump_duration_ms"`

	// Margins pulled below temp_max / humidity_max to form the fan
	// deactivation ceiling, so the fans do not toggle around the threshold.
	FanTempHysteresis     float64 `json:"fan_temp_hysteresis"`
	FanHumidityHysteresis float64 `json:"fan_humidity_hysteresis"`
}

// DefaultProfile is the stock leafy-greens profile. Fields absent from a
// profile file keep these values.
func DefaultProfile() CropProfile {
	return CropProfile{
		ProfileName:            "default",
		PHTarget:               6.0,
		PHTolerance:            0.3,
		ECTarget:               1.5,
		ECTolerance:            0.2,
		TempMin:                20.0,
		TempMax:                28.0,
		HumidityMin:            50.0,
		HumidityMax:            70.0,
		LightsOnHour:           6,
		LightsOffHour:          22,
		PHPumpDurationMs:       1000,
		NutrientPumpDurationMs: 2000,
		FanTempHysteresis:      2.0,
		FanHumidityHysteresis:  5.0,
	}
}

// LoadProfile reads and validates a crop profile JSON file.
func LoadProfile(path string) (CropProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CropProfile{}, fmt.Errorf("read profile: %w", err)
	}
	p := DefaultProfile()
	if err := json.Unmarshal(raw, &p); err != nil {
		return CropProfile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return CropProfile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects incomplete or out-of-domain profiles. The controller must
// not run against a broken profile, so callers treat any error as fatal.
func (p CropProfile) Validate() error {
	if p.PHTarget <= 0 || p.PHTarget >= 14 {
		return fmt.Errorf("ph_target %.2f outside (0,14)", p.PHTarget)
	}
	if p.PHTolerance <= 0 {
		return fmt.Errorf("ph_tolerance must be positive, got %.2f", p.PHTolerance)
	}
	if p.ECTarget <= 0 {
		return fmt.Errorf("ec_target must be positive, got %.2f", p.ECTarget)
	}
	if p.ECTolerance <= 0 {
		return fmt.Errorf("ec_tolerance must be positive, got %.2f", p.ECTolerance)
	}
	if p.TempMin >= p.TempMax {
		return fmt.Errorf("temp range invalid: min %.1f >= max %.1f", p.TempMin, p.TempMax)
	}
	if p.HumidityMin >= p.HumidityMax {
		return fmt.Errorf("humidity range invalid: min %.1f >= max %.1f", p.HumidityMin, p.HumidityMax)
	}
	if p.LightsOnHour < 0 || p.LightsOnHour > 23 {
		return fmt.Errorf("lights_on_hour %d outside [0,24)", p.LightsOnHour)
	}
	if p.LightsOffHour < 0 || p.LightsOffHour > 23 {
		return fmt.Errorf("lights_off_hour %d outside [0,24)", p.LightsOffHour)
	}
	if p.LightsOnHour == p.LightsOffHour {
		return fmt.Errorf("lights_on_hour equals lights_off_hour (%d): degenerate schedule", p.LightsOnHour)
	}
	if p.PHPumpDurationMs == 0 {
		return fmt.Errorf("ph_pump_duration_ms must be positive")
	}
	if p.NutrientPumpDurationMs == 0 {
		return fmt.Errorf("nutrient_pump_duration_ms must be positive")
	}
	if p.FanTempHysteresis < 0 {
		return fmt.Errorf("fan_temp_hysteresis must not be negative, got %.1f", p.FanTempHysteresis)
	}
	if p.FanHumidityHysteresis < 0 {
		return fmt.Errorf("fan_humidity_hysteresis must not be negative, got %.1f", p.FanHumidityHysteresis)
	}
	return nil
}
