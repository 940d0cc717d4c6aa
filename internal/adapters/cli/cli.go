// Package cli is the command-line adapter over app.ApplicationService.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/arikb/bloxs/internal/adapters/web"
	"github.com/arikb/bloxs/internal/app"

	urcli "github.com/urfave/cli/v2"
)

// NewApp builds the bloxs command tree. jwtSecret is only needed by "token".
func NewApp(svc app.ApplicationService, jwtSecret string) *urcli.App {
	return &urcli.App{
		Name:  "bloxs",
		Usage: "create purchase invoices in Bloxs",
		Commands: []*urcli.Command{
			settleCommand(svc),
			draftCommand(svc),
			mailCommand(svc),
			historyCommand(svc),
			schemaCommand(svc),
			tokenCommand(jwtSecret),
		},
	}
}

func settleCommand(svc app.ApplicationService) *urcli.Command {
	now := time.Now()
	return &urcli.Command{
		Name:  "settle",
		Usage: "create owner settlement invoices from a spreadsheet",
		Flags: []urcli.Flag{
			&urcli.StringFlag{Name: "eigfile", Aliases: []string{"f"}, Usage: "settlement sheet (.xlsx or .csv)", Required: true},
			&urcli.IntFlag{Name: "year", Aliases: []string{"y"}, Value: now.Year(), Usage: "settlement year"},
			&urcli.IntFlag{Name: "month", Aliases: []string{"m"}, Value: int(now.Month()), Usage: "settlement month (1-12)"},
		},
		Action: func(c *urcli.Context) error {
			result, err := svc.RunSettlements(c.Context, app.SettlementRequest{
				Year:  c.Int("year"),
				Month: c.Int("month"),
				File:  c.String("eigfile"),
			})
			if result != nil {
				for _, r := range result.Results {
					if r.Error == "" {
						fmt.Fprintf(c.App.Writer, "Created invoice number %s for owner %s\n", r.InvoiceID, r.Owner)
					} else {
						fmt.Fprintf(c.App.Writer, "Failed to create an invoice for owner %s\n", r.Owner)
					}
				}
			}
			return err
		},
	}
}

func draftCommand(svc app.ApplicationService) *urcli.Command {
	return &urcli.Command{
		Name:      "draft",
		Usage:     "upload a document and register it as a draft purchase invoice",
		ArgsUsage: "FILE",
		Action: func(c *urcli.Context) error {
			if c.NArg() != 1 {
				return urcli.Exit("Usage: bloxs draft FILE", 2)
			}
			path := c.Args().First()
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			result, err := svc.CreateDraftInvoice(c.Context, app.DraftRequest{
				FileName: filepath.Base(path),
				Content:  content,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Created draft invoice %s for %s\n", result.ConceptID, result.FileName)
			return nil
		},
	}
}

func mailCommand(svc app.ApplicationService) *urcli.Command {
	return &urcli.Command{
		Name:  "mail",
		Usage: "read a MIME message on stdin and create a draft from its first PDF attachment",
		Action: func(c *urcli.Context) error {
			result, err := svc.CreateDraftInvoiceFromMail(c.Context, c.App.Reader)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Created draft invoice %s for %s\n", result.Draft.ConceptID, result.Draft.FileName)
			return nil
		},
	}
}

func historyCommand(svc app.ApplicationService) *urcli.Command {
	return &urcli.Command{
		Name:  "history",
		Usage: "show recent settlement results from the run journal",
		Flags: []urcli.Flag{
			&urcli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
		},
		Action: func(c *urcli.Context) error {
			result, err := svc.RecentSettlements(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			if len(result.Entries) == 0 {
				fmt.Fprintln(c.App.Writer, "No settlement runs recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tPERIOD\tOWNER\tAMOUNT\tRESULT")
			for _, e := range result.Entries {
				outcome := e.InvoiceID
				if e.Error != "" {
					outcome = "FAILED: " + e.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.Period.Format("2006-01"), e.Owner, e.Amount.StringFixed(2), outcome)
			}
			return tw.Flush()
		},
	}
}

func schemaCommand(svc app.ApplicationService) *urcli.Command {
	return &urcli.Command{
		Name:  "schema",
		Usage: "print the JSON schema of the settlement API request",
		Action: func(c *urcli.Context) error {
			raw, err := json.Marshal(svc.SettlementSchema())
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, raw, "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(c.App.Writer)
			return err
		},
	}
}

func tokenCommand(jwtSecret string) *urcli.Command {
	return &urcli.Command{
		Name:  "token",
		Usage: "issue an API token for the HTTP server",
		Flags: []urcli.Flag{
			&urcli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true, Usage: "who the token is for"},
			&urcli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *urcli.Context) error {
			token, err := web.IssueToken(jwtSecret, c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
