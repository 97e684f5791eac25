package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/config"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI preferences",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective settings",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Change a setting (server, output)",
				ArgsUsage: "<key> <value>",
				Action:    configSet,
			},
		},
	}
}

type settingsView struct {
	Server string `json:"server" yaml:"server"`
	Output string `json:"output" yaml:"output"`
	File   string `json:"file" yaml:"file"`
}

func (v settingsView) Table() *output.Table {
	return output.NewKV().AddRow("Server", v.Server).AddRow("Output", v.Output).AddRow("File", v.File)
}

func configShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	return printResult(c, settingsView{Server: flags.Server, Output: flags.Output, File: c.String("config")})
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: config set <key> <value>", 2)
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	cfg := *cliConfig(c)
	switch key {
	case "server":
		cfg.Server = value
	case "output":
		if _, err := output.ParseFormat(value); err != nil {
			return err
		}
		cfg.Output = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}

	path := c.String("config")
	if err := config.Save(&cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "%s = %s (saved to %s)\n", key, value, path)
	return nil
}
