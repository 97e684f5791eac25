package command

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/connection"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status commands",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server liveness and readiness",
				Action: systemHealth,
			},
		},
	}
}

type healthBody struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type healthView struct {
	Server  string            `json:"server" yaml:"server"`
	Live    string            `json:"live" yaml:"live"`
	Ready   string            `json:"ready" yaml:"ready"`
	Version string            `json:"version,omitempty" yaml:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty" yaml:"checks,omitempty"`
}

func (v healthView) Table() *output.Table {
	t := output.NewKV().
		AddRow("Server", v.Server).
		AddRow("Live", v.Live).
		AddRow("Ready", v.Ready).
		AddRow("Version", v.Version)

	names := make([]string, 0, len(v.Checks))
	for name := range v.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AddRow("Check "+name, v.Checks[name])
	}
	return t
}

func systemHealth(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	view := healthView{Server: client.BaseURL()}

	live, err := getHealth(ctx, client, "/health")
	if err != nil {
		return err
	}
	view.Live = live.Status
	view.Version = live.Version

	// A not-ready server answers 503 with the same body shape.
	ready, err := getHealth(ctx, client, "/ready")
	if err != nil {
		return err
	}
	view.Ready = ready.Status
	view.Checks = ready.Checks

	if err := printResult(c, view); err != nil {
		return err
	}
	if view.Ready != "ready" {
		return cli.Exit("", 1)
	}
	return nil
}

func getHealth(ctx context.Context, client *connection.HTTPClient, path string) (*healthBody, error) {
	resp, err := client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		defer resp.Body.Close()
		body := healthBody{Status: "not_ready"}
		json.NewDecoder(resp.Body).Decode(&body)
		return &body, nil
	}
	var body healthBody
	if err := connection.ParseResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
