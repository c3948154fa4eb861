// Package config wires viper-backed configuration for the harness: config
// file, environment variables and defaults, plus execution profiles.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"perfbench/internal/history"
	"perfbench/internal/regression"
	"perfbench/internal/report"
	"perfbench/internal/sampler"
)

// Load initializes configuration from an optional config file, a local .env
// file and PERFBENCH_-prefixed environment variables, in increasing priority.
func Load(cfgFile string) error {
	// A missing .env is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("perfbench")
	}

	viper.SetEnvPrefix("PERFBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Only a missing default config file is tolerated.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return err
		}
	}
	return nil
}

func setDefaults() {
	// 0 means "let the active profile decide".
	viper.SetDefault("iterations", 0)
	viper.SetDefault("sample_interval", sampler.DefaultInterval)
	viper.SetDefault("collect_memory", true)
	viper.SetDefault("collect_cpu", true)

	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.dir", history.DefaultDir)
	viper.SetDefault("history.dsn", "")
	viper.SetDefault("history.max_records", history.DefaultMaxRecords)

	viper.SetDefault("report.output_dir", report.DefaultDir)
	viper.SetDefault("report.markdown", true)
	viper.SetDefault("report.json", true)
	viper.SetDefault("report.html", false)
	viper.SetDefault("report.csv", false)

	viper.SetDefault("regression.min_samples", regression.DefaultMinSamples)
	viper.SetDefault("regression.history_window", 0)

	viper.SetDefault("alerts.slack_webhook", "")
	viper.SetDefault("alerts.file", "")

	viper.SetDefault("metrics_port", 2112)
	viper.SetDefault("verbose", false)
}

// Settings is the resolved configuration snapshot handed to the CLI.
type Settings struct {
	Iterations     int
	SampleInterval time.Duration
	CollectMemory  bool
	CollectCPU     bool

	HistoryBackend    string
	HistoryDir        string
	HistoryDSN        string
	HistoryMaxRecords int

	ReportDir      string
	ReportMarkdown bool
	ReportJSON     bool
	ReportHTML     bool
	ReportCSV      bool

	RegressionMinSamples    int
	RegressionHistoryWindow int

	SlackWebhook string
	AlertsFile   string

	MetricsPort int
	Verbose     bool
}

// Current materializes the active viper state into a Settings snapshot with
// the execution profile applied.
func Current() Settings {
	s := Settings{
		Iterations:     viper.GetInt("iterations"),
		SampleInterval: viper.GetDuration("sample_interval"),
		CollectMemory:  viper.GetBool("collect_memory"),
		CollectCPU:     viper.GetBool("collect_cpu"),

		HistoryBackend:    viper.GetString("history.backend"),
		HistoryDir:        viper.GetString("history.dir"),
		HistoryDSN:        viper.GetString("history.dsn"),
		HistoryMaxRecords: viper.GetInt("history.max_records"),

		ReportDir:      viper.GetString("report.output_dir"),
		ReportMarkdown: viper.GetBool("report.markdown"),
		ReportJSON:     viper.GetBool("report.json"),
		ReportHTML:     viper.GetBool("report.html"),
		ReportCSV:      viper.GetBool("report.csv"),

		RegressionMinSamples:    viper.GetInt("regression.min_samples"),
		RegressionHistoryWindow: viper.GetInt("regression.history_window"),

		SlackWebhook: viper.GetString("alerts.slack_webhook"),
		AlertsFile:   viper.GetString("alerts.file"),

		MetricsPort: viper.GetInt("metrics_port"),
		Verbose:     viper.GetBool("verbose"),
	}
	ActiveProfile().Apply(&s)
	return s
}
