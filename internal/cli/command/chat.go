package command

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/connection"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/output"
)

// ChatCommand returns the chat subcommand group.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Talk to the assistant",
		Subcommands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Ask a question",
				ArgsUsage: "<message>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Reply language (BCP 47)",
						Value:   "en",
					},
					&cli.BoolFlag{
						Name:  "audio",
						Usage: "Request a spoken reply",
					},
				},
				Action: chatAsk,
			},
		},
	}
}

type chatRequest struct {
	UserMessage string `json:"userMessage"`
	Language    string `json:"language,omitempty"`
	Audio       bool   `json:"audio,omitempty"`
}

type chatView struct {
	Response  string `json:"response" yaml:"response"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	AudioURL  string `json:"audioUrl,omitempty" yaml:"audioUrl,omitempty"`
	Cached    bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
}

func (v chatView) Table() *output.Table {
	t := output.NewKV().AddRow("Response", v.Response).AddRow("Timestamp", v.Timestamp)
	if v.AudioURL != "" {
		t.AddRow("Audio", v.AudioURL)
	}
	if v.Cached {
		t.AddRow("Cached", "true")
	}
	return t
}

func chatAsk(c *cli.Context) error {
	msg := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if msg == "" {
		return cli.Exit("message argument is required", 2)
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 90*time.Second)
	defer cancel()

	issued, err := fetchToken(ctx, client)
	if err != nil {
		return err
	}
	verbosef(c, "using token expiring in %ds", issued.ExpiresIn)

	header := http.Header{}
	header.Set("X-CSRF-Token", issued.Token)
	resp, err := client.Post(ctx, "/api/chat", chatRequest{
		UserMessage: msg,
		Language:    c.String("language"),
		Audio:       c.Bool("audio"),
	}, header)
	if err != nil {
		return err
	}

	var view chatView
	if err := connection.ParseResponse(resp, &view); err != nil {
		return err
	}
	return printResult(c, view)
}
