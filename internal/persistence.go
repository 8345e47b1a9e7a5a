package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Storage keys.
const (
	RecordsKey  = "subs-analyzer-v1"
	CurrencyKey = "subs-currency"
)

// DefaultCurrency is used when no currency preference has been stored.
const DefaultCurrency = "$"

// SavedStatusDuration is how long the "Saved" status stays visible before
// reverting to idle.
const SavedStatusDuration = 700 * time.Millisecond

// Status is the persistence feedback shown to the user.
type Status string

const (
	StatusIdle  Status = "Idle"
	StatusSaved Status = "Saved"
)

// Persistence reads and writes records and the currency preference to a KV.
type Persistence struct {
	kv       KV
	seed     []Record
	logger   *log.Logger
	onStatus func(Status)
}

// PersistenceOption configures a Persistence.
type PersistenceOption func(*Persistence)

// WithSeed replaces the default seed records used when nothing valid is stored.
func WithSeed(seed []Record) PersistenceOption {
	return func(p *Persistence) { p.seed = seed }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) PersistenceOption {
	return func(p *Persistence) { p.logger = logger }
}

// WithStatusHook registers fn to be called with StatusSaved after every
// successful save.
func WithStatusHook(fn func(Status)) PersistenceOption {
	return func(p *Persistence) { p.onStatus = fn }
}

func NewPersistence(kv KV, opts ...PersistenceOption) *Persistence {
	p := &Persistence{kv: kv, logger: discardLogger()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "persistence")
	return p
}

// Load returns the stored records and currency. Missing or malformed record
// data is replaced by the seed records rather than reported; only storage
// I/O failures are returned as errors. Seed records are written back right
// away so their ids stay the same on the next Load.
func (p *Persistence) Load(ctx context.Context) ([]Record, string, error) {
	raw, ok, err := p.kv.Get(ctx, RecordsKey)
	if err != nil {
		return nil, "", fmt.Errorf("loading records: %w", err)
	}

	var records []Record
	if ok {
		records, err = DecodeRecords(raw)
		if err != nil {
			p.logger.Warn("stored records are malformed, using seed data", "err", err)
			records = nil
		}
	}
	seeded := records == nil
	if seeded {
		records = SeedRecords(p.seed)
		p.logger.Debug("seeded records", "count", len(records))
	}

	currency := DefaultCurrency
	cur, ok, err := p.kv.Get(ctx, CurrencyKey)
	if err != nil {
		return nil, "", fmt.Errorf("loading currency: %w", err)
	}
	if ok && strings.TrimSpace(string(cur)) != "" {
		currency = string(cur)
	}

	if seeded {
		if err := p.write(ctx, records, currency); err != nil {
			return nil, "", err
		}
	}

	p.logger.Debug("loaded state", "records", len(records), "currency", currency)
	return records, currency, nil
}

// Save overwrites the stored records and currency.
func (p *Persistence) Save(ctx context.Context, records []Record, currency string) error {
	if err := p.write(ctx, records, currency); err != nil {
		return err
	}
	if p.onStatus != nil {
		p.onStatus(StatusSaved)
	}
	return nil
}

func (p *Persistence) write(ctx context.Context, records []Record, currency string) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if err := p.kv.Set(ctx, RecordsKey, data); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}
	if err := p.kv.Set(ctx, CurrencyKey, []byte(currency)); err != nil {
		return fmt.Errorf("saving currency: %w", err)
	}

	p.logger.Debug("saved state", "records", len(records), "currency", currency)
	return nil
}
