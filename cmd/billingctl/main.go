// Command billingctl computes totals from JSON quotes or CSV line items and
// renders billing documents from JSON snapshots without a database.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "billingctl",
		Usage: "Compute totals and render estimates and sales offline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			totalsCommand(),
			renderCommand(),
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      c.String("log-level"),
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// openInput reads the app's stdin for "-" and the named file otherwise
func openInput(c *cli.Context, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(c.App.Reader), nil
	}
	return os.Open(path)
}

func decodeInput(c *cli.Context, path string, out any) error {
	in, err := openInput(c, path)
	if err != nil {
		return err
	}
	defer in.Close()
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var verr *billing.ValidationError
		if errors.As(billing.AmountInputError("", err), &verr) {
			return verr
		}
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
