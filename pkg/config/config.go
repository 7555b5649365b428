package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/distillab/aspenplus/pkg/distill"
	"github.com/distillab/aspenplus/pkg/sim"
	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/distillab/aspenplus/pkg/sweep"
	"github.com/spf13/viper"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Config holds application-wide configuration
type Config struct {
	Engine  EngineConfig       `mapstructure:"engine"`
	Layout  distill.CaseLayout `mapstructure:"layout"`
	Sweep   SweepConfig        `mapstructure:"sweep"`
	Sinks   []sink.Peer        `mapstructure:"sinks"`
	Metrics MetricsConfig      `mapstructure:"metrics"`
}

// EngineConfig selects and tunes the simulator backend.
type EngineConfig struct {
	// Backend is "com" or "mock".
	Backend string `mapstructure:"backend"`
	// Case is the flowsheet file opened on connect.
	Case            string `mapstructure:"case"`
	ProgID          string `mapstructure:"progId"`
	Visible         bool   `mapstructure:"visible"`
	SuppressDialogs bool   `mapstructure:"suppressDialogs"`
	// ProbeStreams and ProbeComponents drive the automation backend's
	// stream table reads.
	ProbeStreams    []string `mapstructure:"probeStreams"`
	ProbeComponents []string `mapstructure:"probeComponents"`
}

// SweepConfig carries the base specifications and the grid axes.
type SweepConfig struct {
	Feed   distill.StreamSpec  `mapstructure:"feed"`
	Column distill.ColumnInput `mapstructure:"column"`
	Axes   []sweep.Axis        `mapstructure:"axes"`
	// Out is the CSV path rows are written to.
	Out string `mapstructure:"out"`
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
	Path       string `mapstructure:"path"`
}

// Default is the stock hydrocarbon splitter study: the six-component feed
// at 290 K and 17.4 atm into a 50-stage column, swept over feed temperature
// and reflux ratio.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Backend:         sim.BackendMock,
			SuppressDialogs: true,
		},
		Layout: distill.DefaultLayout(),
		Sweep: SweepConfig{
			Feed: distill.StreamSpec{
				Temperature: 290,
				Pressure:    17.4,
				MolarFlows: distill.PerCompound[float64]{
					Ethane:     0.017,
					Propane:    1.110,
					Isobutane:  1.198,
					NButane:    0.516,
					Isopentane: 0.334,
					NPentane:   0.173,
				},
			},
			Column: distill.ColumnInput{
				NStages:           50,
				FeedStage:         25,
				RefluxRatio:       1.0,
				ReboilRatio:       1.0,
				CondenserPressure: 17.4,
			},
			Axes: []sweep.Axis{
				{Name: sweep.AxisTemperature, Values: []float64{290, 300, 320}},
				{Name: sweep.AxisRefluxRatio, Values: []float64{0.8, 1.0, 1.5}},
			},
			Out: "sweep_results.csv",
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9100",
			Path:       "/metrics",
		},
	}
}

// Load reads config from file or environment on top of Default
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("aspenplus")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("ASPENPLUS")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}
