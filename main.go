package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/charmbracelet/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/gigurra/subs-analyzer/internal"
	"github.com/gigurra/subs-analyzer/internal/tui"
)

type OutputParams struct {
	Output string `descr:"Output format" alts:"table,json" strict:"true" default:"table" short:"o"`
}

type AddParams struct {
	Name     string `descr:"Subscription name" positional:"true" optional:"true"`
	Cost     string `descr:"Cost per billing cycle" default:"0"`
	Cycle    string `descr:"Billing cycle" alts:"Weekly,Monthly,Quarterly,Annual" default:"Monthly"`
	Category string `descr:"Category" alts:"Entertainment,Work,Productivity,Utilities,Education,Shopping,Other" default:"Other"`
	Start    string `descr:"Start date (YYYY-MM-DD)" optional:"true"`
	Notes    string `descr:"Free-form notes" optional:"true"`
}

type SetParams struct {
	ID    string `descr:"Record id (or unique prefix)" positional:"true"`
	Field string `descr:"Field to update" positional:"true" alts:"name,cost,cycle,category,start,notes"`
	Value string `descr:"New value" positional:"true"`
}

type IDParams struct {
	ID string `descr:"Record id (or unique prefix)" positional:"true"`
}

type SummaryParams struct {
	WhatIf float64 `descr:"Hypothetical price change in percent, e.g. 10 or -20" default:"0"`
	Output string  `descr:"Output format" alts:"table,json" strict:"true" default:"table" short:"o"`
}

type ExportParams struct {
	File   string `descr:"Destination file, '-' for stdout; may be prefixed with format (e.g. csv:out.txt)" positional:"true"`
	Format string `descr:"Export format (default: from file extension)" alts:"json,csv,xlsx" optional:"true"`
}

type ImportParams struct {
	File   string `descr:"File to import; may be prefixed with format (e.g. xlsx:backup.bin)" positional:"true"`
	Format string `descr:"Import format (default: from file extension)" alts:"json,xlsx" optional:"true"`
}

type CurrencyParams struct {
	Symbol string `descr:"Currency symbol or ISO code (e.g. € or EUR)" positional:"true" optional:"true"`
}

type ResetParams struct {
	Yes bool `descr:"Confirm clearing all data" short:"y" default:"false"`
}

type TUIParams struct {
	LogFile   string `descr:"Write logs to this file" optional:"true"`
	ExportDir string `descr:"Directory for exports" default:"."`
}

// session is everything a subcommand needs once config and storage are up.
type session struct {
	cfg    *internal.Config
	logger *log.Logger
	kv     internal.KV
	app    *internal.App
	locale language.Tag
}

func (s *session) formatter() internal.Formatter {
	return internal.NewFormatter(s.app.Currency(), s.locale)
}

func main() {
	_ = godotenv.Load()

	boa.NewCmdT[boa.NoParams]("subs-analyzer").
		WithShort("Track subscription costs").
		WithLong("Keeps a list of recurring subscriptions, normalizes their costs to monthly and annual totals, breaks spending down by category and suggests where to save.").
		WithCobraSubCmds(
			listCmd(),
			addCmd(),
			setCmd(),
			removeCmd(),
			duplicateCmd(),
			summaryCmd(),
			suggestCmd(),
			exportCmd(),
			importCmd(),
			currencyCmd(),
			resetCmd(),
			saveCmd(),
			tuiCmd(),
		).
		Run()
}

func listCmd() *cobra.Command {
	return boa.NewCmdT[OutputParams]("list").
		WithShort("List all subscriptions").
		WithRunFunc(func(params *OutputParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				if params.Output == "json" {
					return internal.PrintRecordsJSON(os.Stdout, s.app.Records())
				}
				if len(s.app.Records()) == 0 {
					fmt.Println("No subscriptions yet. Add one!")
					return nil
				}
				internal.PrintRecordsTable(os.Stdout, s.app.Records(), s.formatter())
				return nil
			})
		}).
		ToCobra()
}

func addCmd() *cobra.Command {
	return boa.NewCmdT[AddParams]("add").
		WithShort("Add a subscription").
		WithRunFunc(func(params *AddParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				r := internal.NewRecord()
				r.Name = params.Name
				r.Cost = internal.ParseCost(params.Cost)
				r.Cycle = internal.Cycle(params.Cycle)
				r.Category = internal.Category(params.Category)
				r.Start = params.Start
				r.Notes = params.Notes

				res, err := s.app.Dispatch(ctx, internal.AddRecord{Record: r})
				if err != nil {
					return fmt.Errorf("adding subscription: %w", err)
				}
				fmt.Println(res.ID)
				return nil
			})
		}).
		ToCobra()
}

func setCmd() *cobra.Command {
	return boa.NewCmdT[SetParams]("set").
		WithShort("Update one field of a subscription").
		WithRunFunc(func(params *SetParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				field, err := internal.ParseField(params.Field)
				if err != nil {
					return err
				}
				res, err := s.app.Dispatch(ctx, internal.UpdateField{ID: params.ID, Field: field, Value: params.Value})
				if err != nil {
					return fmt.Errorf("updating subscription: %w", err)
				}
				reportMissing(res, params.ID)
				return nil
			})
		}).
		ToCobra()
}

func removeCmd() *cobra.Command {
	return boa.NewCmdT[IDParams]("remove").
		WithShort("Remove a subscription").
		WithRunFunc(func(params *IDParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				res, err := s.app.Dispatch(ctx, internal.DeleteRecord{ID: params.ID})
				if err != nil {
					return fmt.Errorf("removing subscription: %w", err)
				}
				reportMissing(res, params.ID)
				return nil
			})
		}).
		ToCobra()
}

func duplicateCmd() *cobra.Command {
	return boa.NewCmdT[IDParams]("duplicate").
		WithShort("Duplicate a subscription").
		WithRunFunc(func(params *IDParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				res, err := s.app.Dispatch(ctx, internal.DuplicateRecord{ID: params.ID})
				if err != nil {
					return fmt.Errorf("duplicating subscription: %w", err)
				}
				reportMissing(res, params.ID)
				if res.Changed {
					fmt.Println(res.ID)
				}
				return nil
			})
		}).
		ToCobra()
}

func summaryCmd() *cobra.Command {
	return boa.NewCmdT[SummaryParams]("summary").
		WithShort("Show totals, category breakdown and savings ideas").
		WithRunFunc(func(params *SummaryParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				if _, err := s.app.Dispatch(ctx, internal.SetWhatIf{Percent: params.WhatIf}); err != nil {
					return err
				}
				summary := s.app.Summary()
				suggestions := s.app.Suggestions()

				if params.Output == "json" {
					return internal.PrintSummaryJSON(os.Stdout, s.app.Records(), summary, suggestions, s.app.Currency())
				}
				f := s.formatter()
				internal.PrintSummary(os.Stdout, summary, f)
				fmt.Println()
				internal.PrintSuggestions(os.Stdout, suggestions, f)
				return nil
			})
		}).
		ToCobra()
}

func suggestCmd() *cobra.Command {
	return boa.NewCmdT[OutputParams]("suggest").
		WithShort("Show savings ideas for the most expensive subscriptions").
		WithRunFunc(func(params *OutputParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				suggestions := s.app.Suggestions()
				if params.Output == "json" {
					return internal.PrintSummaryJSON(os.Stdout, nil, s.app.Summary(), suggestions, s.app.Currency())
				}
				internal.PrintSuggestions(os.Stdout, suggestions, s.formatter())
				return nil
			})
		}).
		ToCobra()
}

func exportCmd() *cobra.Command {
	return boa.NewCmdT[ExportParams]("export").
		WithShort("Export subscriptions to JSON, CSV or XLSX").
		WithRunFunc(func(params *ExportParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				format, path := internal.ParseFileArg(params.File)
				if params.Format != "" {
					format = params.Format
				}
				if format == "" {
					format = internal.FormatForPath(path)
				}
				if path == "-" && format == "xlsx" {
					return errors.New("xlsx export needs a file, not stdout")
				}

				res, err := s.app.Dispatch(ctx, internal.ExportRequest{Format: format})
				if err != nil {
					return err
				}
				if path == "-" {
					_, err := os.Stdout.Write(res.Export)
					return err
				}
				if err := os.WriteFile(path, res.Export, 0644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Printf("Exported %d subscriptions to %s\n", len(s.app.Records()), path)
				return nil
			})
		}).
		ToCobra()
}

func importCmd() *cobra.Command {
	return boa.NewCmdT[ImportParams]("import").
		WithShort("Replace all subscriptions with the contents of a file").
		WithRunFunc(func(params *ImportParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				format, path := internal.ParseFileArg(params.File)
				if params.Format != "" {
					format = params.Format
				}
				if format == "" {
					format = internal.FormatForPath(path)
				}

				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				if _, err := s.app.Dispatch(ctx, internal.ImportPayload{Format: format, Data: data}); err != nil {
					return err
				}
				fmt.Printf("Imported %d subscriptions\n", len(s.app.Records()))
				return nil
			})
		}).
		ToCobra()
}

func currencyCmd() *cobra.Command {
	return boa.NewCmdT[CurrencyParams]("currency").
		WithShort("Show or set the currency symbol").
		WithRunFunc(func(params *CurrencyParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				if params.Symbol != "" {
					if _, err := s.app.Dispatch(ctx, internal.SetCurrency{Symbol: internal.ResolveSymbol(params.Symbol)}); err != nil {
						return fmt.Errorf("setting currency: %w", err)
					}
				}
				fmt.Println(s.app.Currency())
				return nil
			})
		}).
		ToCobra()
}

func resetCmd() *cobra.Command {
	return boa.NewCmdT[ResetParams]("reset").
		WithShort("Clear all subscriptions").
		WithRunFunc(func(params *ResetParams) {
			if !params.Yes {
				fmt.Fprintln(os.Stderr, "Refusing to clear all data without --yes")
				os.Exit(1)
			}
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				if _, err := s.app.Dispatch(ctx, internal.Reset{}); err != nil {
					return fmt.Errorf("clearing data: %w", err)
				}
				fmt.Println("All subscriptions cleared")
				return nil
			})
		}).
		ToCobra()
}

func saveCmd() *cobra.Command {
	return boa.NewCmdT[boa.NoParams]("save").
		WithShort("Write the current state to storage").
		WithRunFunc(func(params *boa.NoParams) {
			withSession(os.Stderr, func(ctx context.Context, s *session) error {
				if _, err := s.app.Dispatch(ctx, internal.Save{}); err != nil {
					return err
				}
				fmt.Println(internal.StatusSaved)
				return nil
			})
		}).
		ToCobra()
}

func tuiCmd() *cobra.Command {
	return boa.NewCmdT[TUIParams]("tui").
		WithShort("Open the interactive subscription grid").
		WithRunFunc(func(params *TUIParams) {
			logOut := io.Discard
			if params.LogFile != "" {
				f, err := os.OpenFile(params.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
					os.Exit(1)
				}
				defer f.Close()
				logOut = f
			}
			withSession(logOut, func(ctx context.Context, s *session) error {
				m := tui.New(ctx, s.app, s.locale, tui.WithExportDir(params.ExportDir))
				if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
					return fmt.Errorf("running tui: %w", err)
				}
				return nil
			})
		}).
		ToCobra()
}

// withSession loads config, opens storage and the app, then runs fn. Any
// error is printed to stderr and exits with status 1.
func withSession(logOut io.Writer, fn func(ctx context.Context, s *session) error) {
	ctx := context.Background()

	s, err := openSession(ctx, logOut)
	if err != nil {
		exitWithError(err)
	}
	defer s.kv.Close()

	if err := fn(ctx, s); err != nil {
		s.logger.Debug("command failed", "err", err)
		s.kv.Close()
		exitWithError(err)
	}
}

func openSession(ctx context.Context, logOut io.Writer) (*session, error) {
	cfg, err := internal.LoadConfig(internal.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := internal.NewLogger(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	kv, err := internal.OpenKV(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("opened storage", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	p := internal.NewPersistence(kv,
		internal.WithSeed(cfg.Seed),
		internal.WithLogger(logger),
	)
	app, err := internal.NewApp(ctx, p, logger)
	if err != nil {
		kv.Close()
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		app:    app,
		locale: internal.ResolveLocale(cfg.Locale),
	}, nil
}

func reportMissing(res internal.Result, id string) {
	if !res.Changed {
		fmt.Fprintf(os.Stderr, "No subscription with id %s, nothing changed\n", id)
	}
}

func exitWithError(err error) {
	switch {
	case errors.Is(err, internal.ErrInvalidImport):
		msg := strings.TrimPrefix(err.Error(), internal.ErrInvalidImport.Error())
		msg = strings.TrimPrefix(msg, ": ")
		fmt.Fprintf(os.Stderr, "Invalid import file: %s\n", msg)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
