package entities

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultProfileIsValid(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Fatalf("default profile must validate: %v", err)
	}
}

func TestValidateRejectsBadProfiles(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CropProfile)
		want   string
	}{
		{"zero pH target", func(p *CropProfile) { p.PHTarget = 0 }, "ph_target"},
		{"pH target too high", func(p *CropProfile) { p.PHTarget = 14 }, "ph_target"},
		{"zero pH tolerance", func(p *CropProfile) { p.PHTolerance = 0 }, "ph_tolerance"},
		{"negative EC target", func(p *CropProfile) { p.ECTarget = -1 }, "ec_target"},
		{"zero EC tolerance", func(p *CropProfile) { p.ECTolerance = 0 }, "ec_tolerance"},
		{"inverted temp range", func(p *CropProfile) { p.TempMin = 30; p.TempMax = 20 }, "temp range"},
		{"inverted humidity range", func(p *CropProfile) { p.HumidityMin = 80; p.HumidityMax = 60 }, "humidity range"},
		{"lights on hour out of range", func(p *CropProfile) { p.LightsOnHour = 24 }, "lights_on_hour"},
		{"lights off hour negative", func(p *CropProfile) { p.LightsOffHour = -1 }, "lights_off_hour"},
		{"degenerate schedule", func(p *CropProfile) { p.LightsOnHour = 8; p.LightsOffHour = 8 }, "degenerate"},
		{"zero pump duration", func(p *CropProfile) { p.PHPumpDurationMs = 0 }, "ph_pump_duration_ms"},
		{"zero nutrient duration", func(p *CropProfile) { p.NutrientPumpDurationMs = 0 }, "nutrient_pump_duration_ms"},
		{"negative temp hysteresis", func(p *CropProfile) { p.FanTempHysteresis = -1 }, "fan_temp_hysteresis"},
		{"negative humidity hysteresis", func(p *CropProfile) { p.FanHumidityHysteresis = -1 }, "fan_humidity_hysteresis"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultProfile()
			tc.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfileMergesOverDefaults(t *testing.T) {
	path := writeProfile(t, `{"profile_name":"basil","ph_target":5.8,"lights_on_hour":4}`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.ProfileName != "basil" || p.PHTarget != 5.8 || p.LightsOnHour != 4 {
		t.Errorf("overrides not applied: %+v", p)
	}
	// Everything not in the file keeps its default.
	if p.ECTarget != 1.5 || p.NutrientPumpDurationMs != 2000 || p.FanTempHysteresis != 2.0 {
		t.Errorf("defaults not preserved: %+v", p)
	}
}

func TestLoadProfileRejectsInvalidValues(t *testing.T) {
	path := writeProfile(t, `{"ph_tolerance":-0.5}`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected validation error from file")
	}
}

func TestLoadProfileRejectsMalformedJSON(t *testing.T) {
	path := writeProfile(t, `{"ph_target": `)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
