package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/goliatone/go-labelform/internal/config"
	"github.com/goliatone/go-labelform/internal/dymo"
	"github.com/goliatone/go-labelform/internal/markup"
	"github.com/goliatone/go-labelform/internal/web"
	"github.com/goliatone/go-labelform/pkg/form"
	"github.com/goliatone/go-labelform/pkg/orchestrator"
	"github.com/goliatone/go-labelform/pkg/renderers/tui"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "labelform",
		Short:         "Form editor for label templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newFieldsCmd(),
		newPreviewCmd(&configPath),
		newPrintCmd(&configPath),
		newEditCmd(&configPath),
	)
	return root
}

func buildOrchestrator(configPath string) (*orchestrator.Orchestrator, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Config{}, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	service := dymo.New(
		dymo.WithBaseURL(cfg.ServiceURL),
		dymo.WithLogger(logger),
	)

	lang := language.English
	if cfg.Language != "" {
		if parsed, err := language.Parse(cfg.Language); err == nil {
			lang = parsed
		} else {
			logger.Warn("ignoring invalid language tag", "tag", cfg.Language)
		}
	}

	o := orchestrator.New(
		orchestrator.WithService(service),
		orchestrator.WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond),
		orchestrator.WithExtensions(cfg.Extensions...),
		orchestrator.WithLanguage(lang),
		orchestrator.WithLogger(logger),
	)
	return o, cfg, nil
}

func loadTemplate(cmd *cobra.Command, o *orchestrator.Orchestrator, path string) (*form.Form, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return o.Load(cmd.Context(), path, payload)
}

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, cfg, err := buildOrchestrator(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			return web.Run(web.NewServer(o, cfg.Listen, logger), logger)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <template>",
		Short: "List the editable fields in a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			defs := markup.ExtractFields(string(raw))
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no editable fields")
				return nil
			}
			for _, def := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", def.Name, def.Kind)
			}
			return nil
		},
	}
}

func newPreviewCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview <template>",
		Short: "Render a template preview to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := buildOrchestrator(*configPath)
			if err != nil {
				return err
			}
			if _, err := loadTemplate(cmd, o, args[0]); err != nil {
				return err
			}
			image, err := o.Preview(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, image, 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(image))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "output file")
	return cmd
}

func newPrintCmd(configPath *string) *cobra.Command {
	var printer string
	var copies int

	cmd := &cobra.Command{
		Use:   "print <template>",
		Short: "Print a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := buildOrchestrator(*configPath)
			if err != nil {
				return err
			}
			if _, err := loadTemplate(cmd, o, args[0]); err != nil {
				return err
			}
			if printer == "" {
				printers, err := o.Printers(cmd.Context())
				if err != nil {
					return err
				}
				printer, err = tui.NewEditor(nil).ChoosePrinter(printers)
				if err != nil {
					return err
				}
			}
			receipt, err := o.Print(cmd.Context(), orchestrator.PrintRequest{
				Printer: printer,
				Copies:  strconv.Itoa(copies),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d to %s\n", receipt.Copies, receipt.Printer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&printer, "printer", "p", "", "target printer (prompted when omitted)")
	cmd.Flags().IntVarP(&copies, "copies", "n", 1, "number of copies")
	return cmd
}

func newEditCmd(configPath *string) *cobra.Command {
	var doPrint bool
	var printer string
	var copies int

	cmd := &cobra.Command{
		Use:   "edit <template>",
		Short: "Edit a template's fields interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := buildOrchestrator(*configPath)
			if err != nil {
				return err
			}
			f, err := loadTemplate(cmd, o, args[0])
			if err != nil {
				return err
			}

			editor := tui.NewEditor(nil)
			if err := editor.Run(cmd.Context(), f); err != nil {
				return err
			}
			if !doPrint {
				return nil
			}

			if printer == "" {
				printers, err := o.Printers(cmd.Context())
				if err != nil {
					return err
				}
				printer, err = editor.ChoosePrinter(printers)
				if err != nil {
					return err
				}
			}
			receipt, err := o.Print(cmd.Context(), orchestrator.PrintRequest{
				Printer: printer,
				Copies:  strconv.Itoa(copies),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d to %s\n", receipt.Copies, receipt.Printer)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&doPrint, "print", false, "print after editing")
	cmd.Flags().StringVarP(&printer, "printer", "p", "", "target printer (prompted when omitted)")
	cmd.Flags().IntVarP(&copies, "copies", "n", 1, "number of copies")
	return cmd
}
