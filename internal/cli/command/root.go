package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/config"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/connection"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/output"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/buildinfo"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/infra/tlsroots"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "cardchat-cli",
		Usage:   "cardchat command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			ChatCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "cardchat server address (e.g. localhost:3001)",
			EnvVars: []string{"CARDCHAT_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"CARDCHAT_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "PEM file with an extra CA to trust for https servers",
			EnvVars: []string{"CARDCHAT_CA_CERT"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaConfig] = cfg

	_, err = output.ParseFormat(ParseGlobalFlags(c).Output)
	return err
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  string
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context. Unset flags fall
// back to the CLI config file.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := cliConfig(c)
	flags := &GlobalFlags{
		Server:  c.String("server"),
		Output:  c.String("output"),
		Verbose: c.Bool("verbose"),
	}
	if flags.Server == "" {
		flags.Server = cfg.Server
	}
	if flags.Output == "" {
		flags.Output = cfg.Output
	}
	return flags
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if c.App != nil {
		if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
			return cfg
		}
	}
	return config.Default()
}

// newClient returns an HTTP client for the selected server.
func newClient(c *cli.Context) (*connection.HTTPClient, error) {
	opts := []connection.Option{
		connection.WithUserAgent("cardchat-cli/" + buildinfo.Get().Version),
	}
	if caFile := c.String("ca-cert"); caFile != "" {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(caFile); err != nil {
			return nil, cli.Exit(err.Error(), 2)
		}
		opts = append(opts, connection.WithTLSConfig(pool.ClientConfig()))
	}
	return connection.NewHTTPClient(ParseGlobalFlags(c).Server, opts...), nil
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

// verbosef writes to stderr when --verbose is set.
func verbosef(c *cli.Context, format string, args ...any) {
	if ParseGlobalFlags(c).Verbose {
		fmt.Fprintf(errWriter(c), format+"\n", args...)
	}
}

func writer(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
