package monitor

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Config holds the session parameters. All values are fixed at startup,
// none are hot-reloadable.
type Config struct {
	Listen           string       `hcl:"listen,optional"`
	TrainingSamples  int          `hcl:"training_samples,optional"`
	WindowSize       int          `hcl:"window_size,optional"`
	Contamination    float64      `hcl:"contamination,optional"`
	AnomalyWindow    int          `hcl:"anomaly_window,optional"`
	AnomalyThreshold int          `hcl:"anomaly_threshold,optional"`
	RunFor           string       `hcl:"run_for,optional"`
	TrainingCSV      string       `hcl:"training_csv,optional"`
	MonitoringCSV    string       `hcl:"monitoring_csv,optional"`
	Alert            *AlertConfig `hcl:"alert,block"`
}

type AlertConfig struct {
	Broker   string `hcl:"broker"`
	Topic    string `hcl:"topic,optional"`
	ClientID string `hcl:"client_id,optional"`
	QoS      int    `hcl:"qos,optional"`
}

func DefaultConfig() Config {
	return Config{
		Listen:           "127.0.0.1:5000",
		TrainingSamples:  200,
		WindowSize:       20,
		Contamination:    0.02,
		AnomalyWindow:    10,
		AnomalyThreshold: 3,
		TrainingCSV:      "training_data.csv",
		MonitoringCSV:    "monitoring_log.csv",
	}
}

func (c *Config) Validate() error {
	if c.TrainingSamples < 2 {
		return fmt.Errorf("training_samples %d, must be >= 2", c.TrainingSamples)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("window_size %d, must be >= 1", c.WindowSize)
	}
	if c.Contamination <= 0 || c.Contamination >= 0.5 {
		return fmt.Errorf("contamination %f, must be in (0, 0.5)", c.Contamination)
	}
	if c.AnomalyWindow < 1 {
		return fmt.Errorf("anomaly_window %d, must be >= 1", c.AnomalyWindow)
	}
	if c.AnomalyThreshold < 1 || c.AnomalyThreshold > c.AnomalyWindow {
		return fmt.Errorf("anomaly_threshold %d, must be in [1, anomaly_window]", c.AnomalyThreshold)
	}
	if _, err := c.RunDuration(); err != nil {
		return err
	}
	return nil
}

// RunDuration returns the optional bounded monitoring duration,
// zero meaning run until interrupted.
func (c *Config) RunDuration() (time.Duration, error) {
	if c.RunFor == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RunFor)
	if err != nil {
		return 0, fmt.Errorf("run_for: %w", err)
	}
	return d, nil
}

// LoadConfig reads an HCL config file over the defaults. Expressions may
// call env("NAME"), upper(), lower(), min(), max().
func LoadConfig(file string) (*Config, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return parseConfig(content, file)
}

func parseConfig(content []byte, filename string) (*Config, error) {
	hclFile, diag := hclsyntax.ParseConfig(content, filename, hcl.Pos{Line: 1, Column: 1})
	if diag.HasErrors() {
		return nil, diag
	}
	conf := DefaultConfig()
	if diag := gohcl.DecodeBody(hclFile.Body, evalContext(), &conf); diag.HasErrors() {
		return nil, diag
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env":   envFunc,
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
		},
	}
}

var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})
