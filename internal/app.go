package internal

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// Command is a state transition request handled by App.Dispatch.
type Command interface {
	command()
}

// AddRecord appends Record (its id is ignored) and reports the new id.
type AddRecord struct {
	Record Record
}

// UpdateField sets one field of the record with the given id.
type UpdateField struct {
	ID    string
	Field Field
	Value string
}

type DeleteRecord struct {
	ID string
}

type DuplicateRecord struct {
	ID string
}

// ImportPayload replaces all records with the decoded file contents.
// Format is a registered importer name; empty means json.
type ImportPayload struct {
	Format string
	Data   []byte
}

// ExportRequest renders the current state with a registered exporter.
type ExportRequest struct {
	Format string
}

// SetWhatIf sets the hypothetical price adjustment in percent.
type SetWhatIf struct {
	Percent float64
}

type SetCurrency struct {
	Symbol string
}

// Reset removes every record.
type Reset struct{}

// Save forces an immediate flush.
type Save struct{}

func (AddRecord) command()       {}
func (UpdateField) command()     {}
func (DeleteRecord) command()    {}
func (DuplicateRecord) command() {}
func (ImportPayload) command()   {}
func (ExportRequest) command()   {}
func (SetWhatIf) command()       {}
func (SetCurrency) command()     {}
func (Reset) command()           {}
func (Save) command()            {}

// Result describes the outcome of a dispatched command.
type Result struct {
	// ID is the id of the added or duplicated record.
	ID string
	// Changed is false when the command targeted an id that no longer exists.
	Changed bool
	// Saved reports that state was flushed to storage.
	Saved bool
	// Export holds the rendered file for ExportRequest.
	Export []byte
}

// App owns the application state: the record store, the currency symbol and
// the transient what-if percentage. It is driven from a single goroutine.
type App struct {
	store       *Store
	currency    string
	whatIf      float64
	persistence *Persistence
	logger      *log.Logger
}

// NewApp loads the persisted state and returns a ready App.
func NewApp(ctx context.Context, p *Persistence, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = discardLogger()
	}
	records, currency, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &App{
		store:       NewStore(records),
		currency:    currency,
		persistence: p,
		logger:      logger.With("component", "app"),
	}, nil
}

// Dispatch applies cmd. Commands that change records or currency are
// persisted before Dispatch returns; SetWhatIf and ExportRequest never are.
// A command that fails to decode or render leaves the state as it was. When
// the flush itself fails, the in-memory change is kept and the storage
// error is returned.
func (a *App) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	var res Result

	switch c := cmd.(type) {
	case AddRecord:
		res.ID = a.store.Add(c.Record)
		res.Changed = true

	case UpdateField:
		id, ok := a.store.Resolve(c.ID)
		res.Changed = ok && a.store.Update(id, c.Field, c.Value)

	case DeleteRecord:
		id, ok := a.store.Resolve(c.ID)
		res.Changed = ok && a.store.Remove(id)

	case DuplicateRecord:
		if id, ok := a.store.Resolve(c.ID); ok {
			res.ID, res.Changed = a.store.Duplicate(id)
		}

	case ImportPayload:
		payload, err := a.decode(c)
		if err != nil {
			return Result{}, err
		}
		a.store.ReplaceAll(payload.Items)
		if strings.TrimSpace(payload.Currency) != "" {
			a.currency = payload.Currency
		}
		res.Changed = true
		a.logger.Info("imported records", "count", a.store.Len(), "format", formatOrDefault(c.Format))

	case ExportRequest:
		exp, err := GetExporter(formatOrDefault(c.Format))
		if err != nil {
			return Result{}, err
		}
		data, err := exp.Export(a.currency, a.store.Records())
		if err != nil {
			return Result{}, fmt.Errorf("exporting %s: %w", formatOrDefault(c.Format), err)
		}
		res.Export = data
		return res, nil

	case SetWhatIf:
		a.whatIf = sanitizeWhatIf(c.Percent)
		return res, nil

	case SetCurrency:
		a.currency = c.Symbol
		if strings.TrimSpace(a.currency) == "" {
			a.currency = DefaultCurrency
		}
		res.Changed = true

	case Reset:
		a.store.Clear()
		res.Changed = true

	case Save:
		res.Changed = true

	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}

	if !res.Changed {
		a.logger.Debug("command had no effect", "command", fmt.Sprintf("%T", cmd))
		return res, nil
	}
	if err := a.persistence.Save(ctx, a.store.Records(), a.currency); err != nil {
		return res, err
	}
	res.Saved = true
	return res, nil
}

func (a *App) decode(c ImportPayload) (Payload, error) {
	imp, err := GetImporter(formatOrDefault(c.Format))
	if err != nil {
		return Payload{}, err
	}
	payload, err := imp.Import(c.Data)
	if err != nil {
		a.logger.Warn("import rejected", "err", err)
		return Payload{}, err
	}
	return payload, nil
}

// Records returns the records in display order.
func (a *App) Records() []Record {
	return a.store.Records()
}

// Record returns the record with the given id or unique id prefix.
func (a *App) Record(id string) (Record, bool) {
	full, ok := a.store.Resolve(id)
	if !ok {
		return Record{}, false
	}
	return a.store.Get(full)
}

func (a *App) Currency() string {
	return a.currency
}

func (a *App) WhatIf() float64 {
	return a.whatIf
}

// Summary aggregates the records with the current what-if adjustment.
func (a *App) Summary() Summary {
	return Summarize(a.store.Records(), a.whatIf)
}

// Suggestions returns savings ideas based on actual costs.
func (a *App) Suggestions() []Suggestion {
	return Suggest(a.store.Records())
}

func formatOrDefault(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

func sanitizeWhatIf(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}
