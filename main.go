package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/blob"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/browser"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/config"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/invoice"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/pdf"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/transport"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/util"
	"github.com/alapierre/go-simpleinvoicing-client/png"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = logrus.WithField("component", "main")

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if util.DebugEnabled() {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	outFlags := []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (default SIMPLEINVOICING_OUTPUT_DIR)"},
		&cli.StringFlag{Name: "name", Usage: "file name, defaults to <invoiceNr>.pdf"},
		&cli.BoolFlag{Name: "qr", Usage: "also write a QR code PNG for URL invoices"},
	}
	sourceFlags := []cli.Flag{
		&cli.StringFlag{Name: "source", Usage: "PDF URL or base64 payload"},
		&cli.StringFlag{Name: "response", Usage: "generator response JSON file to take the PDF from"},
	}

	return &cli.App{
		Name:  "simpleinvoicing",
		Usage: "validate, generate and deliver invoices with the Simple Invoicing service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Value: ".env", Usage: "optional .env file"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.New(c.String("env"))
			if err != nil {
				return err
			}
			if cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			c.App.Metadata = map[string]any{"config": cfg}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check an invoice file (.json or .xml) for required keys",
				ArgsUsage: "<invoice file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "payment-details", Usage: "also require every paymentDetails key"},
				},
				Action: validateCmd,
			},
			{
				Name:      "generate",
				Usage:     "validate an invoice, generate it remotely and save the PDF",
				ArgsUsage: "<invoice file>",
				Flags:     outFlags,
				Action:    generateCmd,
			},
			{
				Name:      "save",
				Usage:     "save the PDF of a generator response",
				ArgsUsage: "<response file>",
				Flags:     outFlags,
				Action:    saveCmd,
			},
			{
				Name:   "print",
				Usage:  "print a PDF through a Chromium tab",
				Flags:  sourceFlags,
				Action: printCmd,
			},
			{
				Name:  "download",
				Usage: "download a PDF through a Chromium tab",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "name", Value: pdf.DefaultFileName, Usage: "downloaded file name"},
				}, sourceFlags...),
				Action: downloadCmd,
			},
			{
				Name:  "render",
				Usage: "show a PDF inside the stage page",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "container", Value: "invoice", Usage: "container element id"},
					&cli.DurationFlag{Name: "hold", Usage: "keep the page open for this long"},
				}, sourceFlags...),
				Action: renderCmd,
			},
		},
	}
}

func cfgOf(c *cli.Context) config.Config {
	return c.App.Metadata["config"].(config.Config)
}

func validateCmd(c *cli.Context) error {
	inv, err := loadArg(c)
	if err != nil {
		return err
	}

	cfg := cfgOf(c)
	res := invoice.Validate(inv, invoice.WithPaymentDetails(cfg.ValidatePaymentDetail || c.Bool("payment-details")))
	if !res.Valid {
		for _, e := range res.Errors {
			fmt.Fprintln(c.App.Writer, e)
		}
		return cli.Exit("invoice is invalid", 2)
	}
	fmt.Fprintln(c.App.Writer, "valid")
	return nil
}

func generateCmd(c *cli.Context) error {
	inv, err := loadArg(c)
	if err != nil {
		return err
	}

	cfg := cfgOf(c)
	client := invoicing.NewClient(
		invoicing.WithEndpoint(cfg.Endpoint),
		invoicing.WithHTTPClient(transport.NewClient(cfg.HTTPTimeout)),
		invoicing.WithValidator(invoice.NewValidator(invoice.WithPaymentDetails(cfg.ValidatePaymentDetail))),
	)

	res, err := client.GenerateInvoice(c.Context, inv)
	if err != nil {
		var ve *invoicing.ValidationError
		if errors.As(err, &ve) {
			for _, e := range ve.Result.Errors {
				fmt.Fprintln(c.App.ErrWriter, e)
			}
		}
		return err
	}
	return save(c, res)
}

func saveCmd(c *cli.Context) error {
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	res, err := invoicing.DecodeResponse(data)
	if err != nil {
		return err
	}
	return save(c, res)
}

func save(c *cli.Context, res *invoicing.Response) error {
	cfg := cfgOf(c)
	dir := c.String("out")
	if dir == "" {
		dir = cfg.OutputDir
	}

	saved, err := pdf.SaveToFile(c.Context, res.Document(), dir, c.String("name"),
		pdf.WithHTTPClient(transport.NewClient(cfg.HTTPTimeout)))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, saved.FilePath)

	if c.Bool("qr") && res.Source().IsURL() {
		qrPath := filepath.Join(dir, strings.TrimSuffix(saved.FileName, filepath.Ext(saved.FileName))+".png")
		if err := png.WriteQr(qrPath, res.Invoice); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, qrPath)
	}
	return nil
}

func printCmd(c *cli.Context) error {
	return withDelivery(c, func(d *pdf.Delivery, src pdf.Source) error {
		if err := d.Print(c.Context, src); err != nil {
			return err
		}
		d.Wait()
		return nil
	})
}

func downloadCmd(c *cli.Context) error {
	return withDelivery(c, func(d *pdf.Delivery, src pdf.Source) error {
		return d.Download(c.Context, src, c.String("name"))
	})
}

func renderCmd(c *cli.Context) error {
	return withDelivery(c, func(d *pdf.Delivery, src pdf.Source) error {
		if err := d.Render(c.Context, src, c.String("container")); err != nil {
			return err
		}
		if hold := c.Duration("hold"); hold > 0 {
			select {
			case <-time.After(hold):
			case <-c.Context.Done():
			}
		}
		return nil
	})
}

// withDelivery serves a blob store, opens its stage page in Chromium and
// runs fn against it.
func withDelivery(c *cli.Context, fn func(*pdf.Delivery, pdf.Source) error) error {
	src, err := sourceOf(c)
	if err != nil {
		return err
	}
	cfg := cfgOf(c)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var storeOpts []blob.Option
	if id := c.String("container"); id != "" {
		storeOpts = append(storeOpts, blob.WithContainers(id))
	}
	store, err := blob.NewStore("", storeOpts...)
	if err != nil {
		return err
	}
	if _, err := store.Listen(ctx, cfg.Browser.StageAddr); err != nil {
		return err
	}

	opts := []browser.Option{
		browser.WithHeadless(cfg.Browser.Headless),
		browser.WithTimeout(cfg.Browser.Timeout),
		browser.WithDownloadDir(cfg.OutputDir),
	}
	if cfg.Browser.ChromePath != "" {
		opts = append(opts, browser.WithChromePath(cfg.Browser.ChromePath))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, browser.WithNoSandbox())
	}
	if cfg.Browser.AutoDownload {
		opts = append(opts, browser.WithAutoDownload())
	}

	host, err := browser.New(ctx, store.PageURL(), opts...)
	if err != nil {
		return err
	}
	defer host.Close()

	return fn(pdf.NewDelivery(host, store, pdf.WithPrintDelay(cfg.Browser.PrintDelay)), src)
}

func sourceOf(c *cli.Context) (pdf.Source, error) {
	switch {
	case c.String("source") != "":
		return pdf.ParseSource(c.String("source")), nil
	case c.String("response") != "":
		data, err := os.ReadFile(c.String("response"))
		if err != nil {
			return pdf.Source{}, errors.Wrap(err, "read response")
		}
		res, err := invoicing.DecodeResponse(data)
		if err != nil {
			return pdf.Source{}, err
		}
		return res.Source(), nil
	}
	return pdf.Source{}, cli.Exit("one of --source or --response is required", 2)
}

func loadArg(c *cli.Context) (invoice.Invoice, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit("expected exactly one invoice file", 2)
	}
	return invoice.Load(c.Args().First())
}
