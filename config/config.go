package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config carries the tunables the CLI exposes. Everything has a sensible
// default so no file is needed.
type Config struct {
	SustainController uint8  `yaml:"sustain_controller"`
	SustainOnValue    uint8  `yaml:"sustain_on_value"`
	SustainOffValue   uint8  `yaml:"sustain_off_value"`
	EchoDelayMs       int    `yaml:"echo_delay_ms"`
	SemitoneShift     int    `yaml:"semitone_shift"`
	HTTPAddr          string `yaml:"http_addr"`
	ChordColumnWidth  int    `yaml:"chord_column_width"`
}

func Default() Config {
	return Config{
		SustainController: 72,
		SustainOnValue:    110,
		SustainOffValue:   64,
		EchoDelayMs:       500,
		SemitoneShift:     4, // echo at a major third
		HTTPAddr:          ":8080",
		ChordColumnWidth:  16,
	}
}

// Load reads a yaml config, falling back to the MIRLIVE_CONFIG env var when
// no path is given, and to defaults when neither exists.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MIRLIVE_CONFIG")
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
