package config

// CLIConfig is the configuration for cardchat-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Output string `yaml:"output"` // table, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://localhost:3001",
		Output: "table",
	}
}
