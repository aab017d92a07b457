package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReportConfig is the batch-mode report configuration, loaded from a JSON
// file. Date formats are Go time layouts.
type ReportConfig struct {
	InputPath          string        `mapstructure:"input_path" json:"input_path"`
	OutputDir          string        `mapstructure:"output_dir" json:"output_dir"`
	IncludeTests       []string      `mapstructure:"include_tests" json:"include_tests"`
	ExcludeTests       []string      `mapstructure:"exclude_tests" json:"exclude_tests,omitempty"`
	Sort               string        `mapstructure:"sort" json:"sort,omitempty"`
	MaxReadingsPerTest int           `mapstructure:"max_readings_per_test" json:"max_readings_per_test,omitempty"`
	DateRange          DateRange     `mapstructure:"date_range" json:"date_range,omitempty"`
	TestSequence       []string      `mapstructure:"test_sequence" json:"test_sequence,omitempty"`
	DateFormat         string        `mapstructure:"date_format" json:"date_format,omitempty"`
	NamingPattern      string        `mapstructure:"naming_pattern" json:"naming_pattern,omitempty"`
	Diagram            DiagramConfig `mapstructure:"diagram" json:"diagram,omitempty"`
}

type DateRange struct {
	Start string `mapstructure:"start" json:"start,omitempty"`
	End   string `mapstructure:"end" json:"end,omitempty"`
}

// DiagramConfig configures the trend-chart page.
type DiagramConfig struct {
	Create       bool              `mapstructure:"create" json:"create"`
	MinReadings  int               `mapstructure:"min_readings_for_diagram" json:"min_readings_for_diagram,omitempty"`
	IncludeTests []string          `mapstructure:"include_tests" json:"include_tests,omitempty"`
	ExcludeTests []string          `mapstructure:"exclude_tests" json:"exclude_tests,omitempty"`
	DefaultType  string            `mapstructure:"default_type" json:"default_type,omitempty"`
	DefaultColor string            `mapstructure:"default_color" json:"default_color,omitempty"`
	Tests        []TestDiagramSpec `mapstructure:"tests" json:"tests,omitempty"`
}

// TestDiagramSpec overrides chart type or color for one test.
type TestDiagramSpec struct {
	Name  string `mapstructure:"name" json:"name"`
	Type  string `mapstructure:"type" json:"type,omitempty"`
	Color string `mapstructure:"color" json:"color,omitempty"`
}

// LoadReport reads a report configuration file.
func LoadReport(path string) (*ReportConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read report config: %w", err)
	}

	cfg := &ReportConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal report config: %w", err)
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("input_path is required")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "out"
	}
	return cfg, nil
}
