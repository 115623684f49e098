package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	partyapp "github.com/byteledger/backend/internal/application/party"
	printingapp "github.com/byteledger/backend/internal/application/printing"
	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/party"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/infrastructure/config"
	infra "github.com/byteledger/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// previewNumber is printed when a snapshot has no document number
const previewNumber = "PREVIEW"

// snapshot is the JSON input of the render command
type snapshot struct {
	Organization    *organizationInput                `json:"organization"`
	Recipient       recipientInput                    `json:"recipient"`
	Document        billingapp.CreateDocumentRequest  `json:"document"`
	Stage           string                            `json:"stage"` // SENT or APPROVED for estimates
	Payments        []billingapp.RecordPaymentRequest `json:"payments"`
	ReferenceNumber string                            `json:"reference_number"`
}

type organizationInput struct {
	Name         string   `json:"name"`
	AddressLines []string `json:"address_lines"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Website      string   `json:"website"`
	TaxID        string   `json:"tax_id"`
}

func (o organizationInput) toConfig() config.OrganizationConfig {
	return config.OrganizationConfig{
		Name:         o.Name,
		AddressLines: o.AddressLines,
		Phone:        o.Phone,
		Email:        o.Email,
		Website:      o.Website,
		TaxID:        o.TaxID,
	}
}

type recipientInput struct {
	Name      string                  `json:"name"`
	Phone     string                  `json:"phone"`
	Email     string                  `json:"email"`
	Addresses []partyapp.AddressInput `json:"addresses"`
}

func (r recipientInput) card() printing.RecipientCard {
	customer := party.Customer{Name: r.Name, Phone: r.Phone, Email: r.Email}
	for _, a := range r.Addresses {
		customer.Addresses = append(customer.Addresses, party.Address(a))
	}
	return printingapp.RecipientCardFor(&customer)
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Lay out a document snapshot and write it as PDF or HTML",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "JSON snapshot with organization, recipient, document and payments (- for stdin)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (- for stdout, default <number>.<ext>)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: pdf, html or chrome-pdf (default from config, else pdf)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config.toml supplying render settings and the organization card",
			},
			&cli.StringFlag{
				Name:  "lang",
				Value: "en-US",
				Usage: "BCP 47 tag used to format amounts",
			},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	var snap snapshot
	if err := decodeInput(c, c.String("input"), &snap); err != nil {
		return err
	}

	var (
		renderCfg config.RenderConfig
		org       config.OrganizationConfig
	)
	if path := c.String("config"); path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		renderCfg = cfg.Render
		org = cfg.Organization
	}
	if snap.Organization != nil {
		org = snap.Organization.toConfig()
	}
	if f := c.String("format"); f != "" {
		renderCfg.DefaultFormat = f
		if f == string(infra.FormatChromePDF) {
			renderCfg.ChromeEnabled = true
		}
	}
	tag, err := language.Parse(c.String("lang"))
	if err != nil {
		return fmt.Errorf("invalid --lang: %w", err)
	}

	registry, err := infra.NewRegistryFromConfig(renderCfg, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = registry.Close()
	}()

	now := time.Now()
	doc, err := snapshotDocument(snap, now)
	if err != nil {
		return err
	}

	opts := printing.DefaultViewOptions()
	opts.Language = tag
	opts.ReferenceNumber = snap.ReferenceNumber
	view := printing.BuildView(doc, printingapp.PartyCardFromConfig(org), snap.Recipient.card(), opts)

	pages, err := printing.NewEngine(infra.LayoutConfigFrom(renderCfg)).Layout(view)
	if err != nil {
		return err
	}
	renderer, err := registry.Get(registry.DefaultFormat())
	if err != nil {
		return err
	}
	result, err := renderer.Render(c.Context, &infra.RenderRequest{
		Pages: pages,
		Title: fmt.Sprintf("%s %s", doc.Title(), doc.Number),
		Meta: infra.RenderMeta{
			Author:    org.Name,
			Subject:   doc.Title(),
			Keywords:  []string{string(doc.Kind), doc.Number},
			CreatedAt: now,
		},
	})
	if err != nil {
		return err
	}

	out := c.String("output")
	if out == "" {
		out = fmt.Sprintf("%s.%s", doc.Number, registry.DefaultFormat().Extension())
	}
	if out == "-" {
		_, err = c.App.Writer.Write(result.Data)
		return err
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return err
	}
	log.Info("document rendered",
		zap.String("number", doc.Number),
		zap.String("status", string(doc.Status)),
		zap.Int("pages", result.PageCount),
		zap.String("path", out))
	return nil
}

// snapshotDocument builds the document in memory and replays its stage and payments
func snapshotDocument(snap snapshot, now time.Time) (*billing.Document, error) {
	req := snap.Document
	if req.CustomerID == uuid.Nil {
		req.CustomerID = uuid.New()
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = previewNumber
	}
	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	doc, err := billingapp.NewDocumentFromRequest(uuid.New(), req, number, issueDate)
	if err != nil {
		return nil, err
	}

	switch stage := billing.Status(strings.ToUpper(snap.Stage)); stage {
	case "", billing.StatusDraft, billing.StatusPending:
	case billing.StatusSent:
		err = doc.Send(now)
	case billing.StatusApproved:
		if err = doc.Send(now); err == nil {
			err = doc.Approve(now)
		}
	default:
		err = fmt.Errorf("unsupported stage %q", snap.Stage)
	}
	if err != nil {
		return nil, err
	}

	for _, p := range snap.Payments {
		paidAt := now
		if p.PaidAt != nil {
			paidAt = *p.PaidAt
		}
		if _, err := doc.RecordPayment(billing.PaymentInput{
			Amount: p.Amount,
			Method: billing.PaymentMethod(strings.ToUpper(p.Method)),
			Notes:  p.Notes,
			PaidAt: paidAt,
		}, now); err != nil {
			return nil, err
		}
	}
	doc.Refresh(now)
	return doc, nil
}
