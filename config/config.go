// Package config loads the detector configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nvr-ai/go-yolox/inference/providers"
	"github.com/nvr-ai/go-yolox/log"
	"github.com/nvr-ai/go-yolox/models/yolox"
	"gopkg.in/yaml.v3"
)

// Config represents the complete detector configuration
type Config struct {
	Model     ModelConfig       `yaml:"model"`
	Runtime   providers.Options `yaml:"runtime"`
	Detection DetectionConfig   `yaml:"detection"`
	Stream    StreamConfig      `yaml:"stream"`
	Log       LogConfig         `yaml:"log"`
}

// ModelConfig selects the network and the frame size it is prepared for.
type ModelConfig struct {
	Path   string `yaml:"path"   validate:"required"`
	Width  int    `yaml:"width"  validate:"gte=0"` // frame width; 0 uses the first frame's
	Height int    `yaml:"height" validate:"gte=0"`
	Device int    `yaml:"device" validate:"gte=0"` // index into the filtered device list
}

// DetectionConfig contains the decoder settings
type DetectionConfig struct {
	Strides             []int   `yaml:"strides"              validate:"required,min=1,dive,gt=0"`
	ConfidenceThreshold float32 `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	NMSThreshold        float32 `yaml:"nms_threshold"        validate:"gte=0,lte=1"`
	// ScaleExtents divides box widths and heights by the letterbox scale along with the origin.
	ScaleExtents bool `yaml:"scale_extents"`
}

// StreamConfig contains video and camera settings
type StreamConfig struct {
	// MaxInferenceRateHz caps inferences per second; frames arriving faster are skipped. 0 disables.
	MaxInferenceRateHz float64 `yaml:"max_inference_rate_hz" validate:"gte=0"`
}

// LogConfig mirrors log.Options with validation.
type LogConfig struct {
	Level        string `yaml:"level"         validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File         string `yaml:"file"`
	NoColors     bool   `yaml:"no_colors"`
	ReportCaller bool   `yaml:"report_caller"`
}

// Options converts the log section to logger options.
func (c LogConfig) Options() log.Options {
	return log.Options{
		Level:        c.Level,
		File:         c.File,
		NoColors:     c.NoColors,
		ReportCaller: c.ReportCaller,
	}
}

// ModelOptions converts the detection section to decoder options.
func (c DetectionConfig) ModelOptions() yolox.Options {
	return yolox.Options{
		Strides:             append([]int(nil), c.Strides...),
		ConfidenceThreshold: c.ConfidenceThreshold,
		NMSThreshold:        c.NMSThreshold,
	}
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	m := yolox.DefaultOptions()
	return Config{
		Runtime: providers.DefaultOptions(),
		Detection: DetectionConfig{
			Strides:             m.Strides,
			ConfidenceThreshold: m.ConfidenceThreshold,
			NMSThreshold:        m.NMSThreshold,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads, parses and validates a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Read reads and parses a YAML configuration file without validating it, so callers can apply
// overrides first.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
