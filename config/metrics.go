package config

// MetricsConfig controls the optional StatsD metrics sink.
// Metrics stay disabled unless both METRICS_ENABLED and METRICS_ADDR are set.
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Addr    string `env:"ADDR"`
	Prefix  string `env:"PREFIX"  envDefault:"opsboard"`
}
