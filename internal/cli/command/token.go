package command

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/connection"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/output"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	ttlFlag := &cli.DurationFlag{
		Name:  "ttl",
		Usage: "Token lifetime the server enforces",
		Value: domain.DefaultCSRFTTL,
	}
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "CSRF token commands",
		Subcommands: []*cli.Command{
			{
				Name:   "issue",
				Usage:  "Request a new token from the server",
				Action: tokenIssue,
			},
			{
				Name:      "inspect",
				Usage:     "Decode a token without checking its signature",
				ArgsUsage: "<token>",
				Flags:     []cli.Flag{ttlFlag},
				Action:    tokenInspect,
			},
			{
				Name:      "verify",
				Usage:     "Validate a token offline against a secret",
				ArgsUsage: "<token>",
				Flags: []cli.Flag{
					ttlFlag,
					&cli.StringFlag{
						Name:     "secret",
						Usage:    "Server signing secret",
						EnvVars:  []string{"CARDCHAT_SECURITY_CSRF_SECRET", "CSRF_SECRET"},
						Required: true,
					},
				},
				Action: tokenVerify,
			},
		},
	}
}

type issuedView struct {
	Token     string    `json:"csrfToken" yaml:"csrfToken"`
	IssuedAt  time.Time `json:"issued" yaml:"issued"`
	ExpiresAt time.Time `json:"expires" yaml:"expires"`
	ExpiresIn int64     `json:"expiresIn" yaml:"expiresIn"`
}

func (v issuedView) Table() *output.Table {
	return output.NewKV().
		AddRow("Token", v.Token).
		AddRow("Issued", v.IssuedAt.Format(time.RFC3339)).
		AddRow("Expires", v.ExpiresAt.Format(time.RFC3339)).
		AddRow("Expires In", strconv.FormatInt(v.ExpiresIn, 10)+"s")
}

func tokenIssue(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	issued, err := fetchToken(ctx, client)
	if err != nil {
		return err
	}
	verbosef(c, "issued by %s", client.BaseURL())

	return printResult(c, issuedView{
		Token:     issued.Token,
		IssuedAt:  time.UnixMilli(issued.IssuedAt).UTC(),
		ExpiresAt: time.UnixMilli(issued.ExpiresAt).UTC(),
		ExpiresIn: issued.ExpiresIn,
	})
}

func fetchToken(ctx context.Context, client *connection.HTTPClient) (*domain.IssuedToken, error) {
	resp, err := client.Get(ctx, "/api/csrf-token")
	if err != nil {
		return nil, err
	}
	var issued domain.IssuedToken
	if err := connection.ParseResponse(resp, &issued); err != nil {
		return nil, err
	}
	if issued.Token == "" {
		return nil, errors.New("server returned an empty token")
	}
	return &issued, nil
}

type inspectView struct {
	WellFormed bool      `json:"wellFormed" yaml:"wellFormed"`
	Problem    string    `json:"problem,omitempty" yaml:"problem,omitempty"`
	IssuedAt   time.Time `json:"issued,omitempty" yaml:"issued,omitempty"`
	ExpiresAt  time.Time `json:"expires,omitempty" yaml:"expires,omitempty"`
	Age        string    `json:"age,omitempty" yaml:"age,omitempty"`
	Expired    bool      `json:"expired" yaml:"expired"`
	Nonce      string    `json:"nonce,omitempty" yaml:"nonce,omitempty"`
}

func (v inspectView) Table() *output.Table {
	t := output.NewKV().AddRow("Well Formed", strconv.FormatBool(v.WellFormed))
	if !v.WellFormed {
		return t.AddRow("Problem", v.Problem)
	}
	return t.
		AddRow("Issued", v.IssuedAt.Format(time.RFC3339)).
		AddRow("Expires", v.ExpiresAt.Format(time.RFC3339)).
		AddRow("Age", v.Age).
		AddRow("Expired", strconv.FormatBool(v.Expired)).
		AddRow("Nonce", v.Nonce)
}

func inspect(raw string, ttl time.Duration, now time.Time) inspectView {
	tok, err := domain.ParseCSRFToken(raw)
	if err != nil {
		return inspectView{Problem: err.Error()}
	}
	return inspectView{
		WellFormed: true,
		IssuedAt:   tok.IssuedTime().UTC(),
		ExpiresAt:  tok.IssuedTime().Add(ttl).UTC(),
		Age:        tok.Age(now).Round(time.Second).String(),
		Expired:    tok.Expired(now, ttl),
		Nonce:      tok.Nonce,
	}
}

func tokenInspect(c *cli.Context) error {
	raw := c.Args().First()
	if raw == "" {
		return cli.Exit("token argument is required", 2)
	}
	view := inspect(raw, c.Duration("ttl"), time.Now())
	if err := printResult(c, view); err != nil {
		return err
	}
	if !view.WellFormed {
		return cli.Exit("", 1)
	}
	return nil
}

type verifyView struct {
	Valid  bool   `json:"valid" yaml:"valid"`
	Code   string `json:"code,omitempty" yaml:"code,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func (v verifyView) Table() *output.Table {
	return output.NewKV().
		AddRow("Valid", strconv.FormatBool(v.Valid)).
		AddRow("Code", v.Code).
		AddRow("Reason", v.Reason)
}

func verify(raw, secret string, ttl time.Duration) (verifyView, error) {
	svc, err := service.NewCSRFService(service.CSRFConfig{Secret: []byte(secret), TTL: ttl})
	if err != nil {
		return verifyView{}, err
	}
	if err := svc.Check(raw); err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return verifyView{Code: de.Code, Reason: de.Message}, nil
		}
		return verifyView{Reason: err.Error()}, nil
	}
	return verifyView{Valid: true}, nil
}

func tokenVerify(c *cli.Context) error {
	raw := c.Args().First()
	if raw == "" {
		return cli.Exit("token argument is required", 2)
	}
	view, err := verify(raw, c.String("secret"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	if err := printResult(c, view); err != nil {
		return err
	}
	if !view.Valid {
		return cli.Exit("", 1)
	}
	return nil
}
