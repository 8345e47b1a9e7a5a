package internal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

// countingKV counts writes so tests can tell whether a command persisted.
type countingKV struct {
	*MemoryKV
	sets int
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.MemoryKV.Set(ctx, key, value)
}

func newTestAppWithKV(t *testing.T) (*App, *countingKV) {
	t.Helper()
	kv := &countingKV{MemoryKV: NewMemoryKV()}
	app, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)
	return app, kv
}

func newTestApp(t *testing.T) *App {
	app, _ := newTestAppWithKV(t)
	return app
}

func storedRecords(t *testing.T, kv KV) []Record {
	t.Helper()
	raw, ok, err := kv.Get(ctx(t), RecordsKey)
	require.NoError(t, err)
	require.True(t, ok, "records were never persisted")
	records, err := DecodeRecords(raw)
	require.NoError(t, err)
	return records
}

func TestApp_StartsWithSeed(t *testing.T) {
	app := newTestApp(t)
	require.Len(t, app.Records(), 3)
	require.Equal(t, DefaultCurrency, app.Currency())
	require.Zero(t, app.WhatIf())
}

func TestApp_AddPersists(t *testing.T) {
	app, kv := newTestAppWithKV(t)

	res, err := app.Dispatch(ctx(t), AddRecord{Record: Record{Name: "Netflix", Cost: 15.49}})
	require.NoError(t, err)
	require.True(t, res.Saved)
	require.NotEmpty(t, res.ID)

	stored := storedRecords(t, kv)
	require.Len(t, stored, 4)
	require.Equal(t, res.ID, stored[3].ID)
	require.Equal(t, CycleMonthly, stored[3].Cycle)
}

func TestApp_MutationsPersistAndWhatIfDoesNot(t *testing.T) {
	app, kv := newTestAppWithKV(t)
	first := app.Records()[0].ID

	tests := []struct {
		name        string
		cmd         Command
		wantPersist bool
	}{
		{"update", UpdateField{ID: first, Field: FieldName, Value: "Renamed"}, true},
		{"duplicate", DuplicateRecord{ID: first}, true},
		{"set currency", SetCurrency{Symbol: "€"}, true},
		{"what-if", SetWhatIf{Percent: 20}, false},
		{"export", ExportRequest{Format: "csv"}, false},
		{"save", Save{}, true},
		{"delete", DeleteRecord{ID: first}, true},
		{"delete vanished id", DeleteRecord{ID: first}, false},
		{"update vanished id", UpdateField{ID: "nope", Field: FieldCost, Value: "1"}, false},
		{"reset", Reset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := kv.sets
			res, err := app.Dispatch(ctx(t), tt.cmd)
			require.NoError(t, err)
			require.Equal(t, tt.wantPersist, res.Saved)
			require.Equal(t, tt.wantPersist, kv.sets > before)
		})
	}
}

func TestApp_UpdateFieldCoerces(t *testing.T) {
	app, kv := newTestAppWithKV(t)
	id := app.Records()[0].ID

	_, err := app.Dispatch(ctx(t), UpdateField{ID: id, Field: FieldCost, Value: "abc"})
	require.NoError(t, err)

	r, ok := app.Record(id)
	require.True(t, ok)
	require.Zero(t, r.Cost)
	require.Zero(t, storedRecords(t, kv)[0].Cost)
}

func TestApp_IDPrefix(t *testing.T) {
	app := newTestApp(t)
	r := app.Records()[1]

	res, err := app.Dispatch(ctx(t), UpdateField{ID: r.ID[:8], Field: FieldNotes, Value: "student"})
	require.NoError(t, err)
	require.True(t, res.Changed)

	got, _ := app.Record(r.ID)
	require.Equal(t, "student", got.Notes)
}

func TestApp_DuplicateReportsNewID(t *testing.T) {
	app := newTestApp(t)
	orig := app.Records()[0]

	res, err := app.Dispatch(ctx(t), DuplicateRecord{ID: orig.ID})
	require.NoError(t, err)

	records := app.Records()
	require.Len(t, records, 4)
	require.Equal(t, res.ID, records[1].ID)
	require.Equal(t, orig.Name+" (copy)", records[1].Name)
}

func TestApp_ImportReplacesStoreAndCurrency(t *testing.T) {
	app, kv := newTestAppWithKV(t)

	data := []byte(`{"currency":"kr","items":[{"id":"x","name":"Viaplay","cost":449,"cycle":"Monthly","category":"Entertainment"}]}`)
	res, err := app.Dispatch(ctx(t), ImportPayload{Data: data})
	require.NoError(t, err)
	require.True(t, res.Saved)

	require.Equal(t, []string{"Viaplay"}, names(app.Records()))
	require.Equal(t, "kr", app.Currency())
	require.Equal(t, []string{"Viaplay"}, names(storedRecords(t, kv)))
}

func TestApp_ImportKeepsCurrencyWhenMissing(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Dispatch(ctx(t), SetCurrency{Symbol: "€"})
	require.NoError(t, err)

	_, err = app.Dispatch(ctx(t), ImportPayload{Format: "json", Data: []byte(`[{"name":"a"}]`)})
	require.NoError(t, err)
	require.Equal(t, "€", app.Currency())

	_, err = app.Dispatch(ctx(t), ImportPayload{Data: []byte(`{"currency":"","items":[]}`)})
	require.NoError(t, err)
	require.Equal(t, "€", app.Currency())
	require.Empty(t, app.Records())
}

func TestApp_InvalidImportLeavesStateUntouched(t *testing.T) {
	app, kv := newTestAppWithKV(t)
	before := app.Records()
	sets := kv.sets

	for _, payload := range []string{`not json`, `{"currency":"€"}`, `[1,2,3]`, `{"items":"nope"}`} {
		_, err := app.Dispatch(ctx(t), ImportPayload{Data: []byte(payload)})
		require.ErrorIs(t, err, ErrInvalidImport, payload)
	}

	require.Equal(t, before, app.Records())
	require.Equal(t, DefaultCurrency, app.Currency())
	require.Equal(t, sets, kv.sets)
}

func TestApp_UnknownFormat(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Dispatch(ctx(t), ImportPayload{Format: "csv", Data: []byte("x")})
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = app.Dispatch(ctx(t), ExportRequest{Format: "pdf"})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestApp_ExportJSON(t *testing.T) {
	app := newTestApp(t)
	res, err := app.Dispatch(ctx(t), ExportRequest{})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(res.Export, &doc))
	require.Equal(t, DefaultCurrency, doc.Currency)
	require.Equal(t, app.Records(), doc.Items)
}

func TestApp_WhatIfAffectsSummaryOnly(t *testing.T) {
	app := newTestApp(t)
	base := app.Summary().MonthlyTotal

	_, err := app.Dispatch(ctx(t), SetWhatIf{Percent: 100})
	require.NoError(t, err)
	require.InDelta(t, base*2, app.Summary().MonthlyTotal, 1e-9)
	require.Equal(t, 100.0, app.Summary().WhatIf)

	for _, r := range app.Records() {
		require.NotEqual(t, 0.0, r.Cost)
	}
}

func TestApp_EmptyCurrencyFallsBackToDefault(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Dispatch(ctx(t), SetCurrency{Symbol: "  "})
	require.NoError(t, err)
	require.Equal(t, DefaultCurrency, app.Currency())
}

func TestApp_StateSurvivesRestart(t *testing.T) {
	kv := NewMemoryKV()
	app, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)

	_, err = app.Dispatch(ctx(t), Reset{})
	require.NoError(t, err)
	_, err = app.Dispatch(ctx(t), AddRecord{Record: Record{Name: "Only"}})
	require.NoError(t, err)
	_, err = app.Dispatch(ctx(t), SetCurrency{Symbol: "£"})
	require.NoError(t, err)
	_, err = app.Dispatch(ctx(t), SetWhatIf{Percent: 30})
	require.NoError(t, err)

	restarted, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)
	require.Equal(t, app.Records(), restarted.Records())
	require.Equal(t, "£", restarted.Currency())
	require.Zero(t, restarted.WhatIf(), "what-if is never persisted")
}

func TestApp_SeedIDsSurviveRestart(t *testing.T) {
	kv := NewMemoryKV()
	first, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)
	id := first.Records()[0].ID

	second, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)

	res, err := second.Dispatch(ctx(t), DeleteRecord{ID: id})
	require.NoError(t, err)
	require.True(t, res.Changed, "seed id from the first run should still exist")
	require.Len(t, second.Records(), 2)
}

// flakyKV accepts reads and the initial seed write, then fails every write.
type flakyKV struct {
	*MemoryKV
	fail error
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail != nil {
		return f.fail
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestApp_FailedFlushKeepsInMemoryChange(t *testing.T) {
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	app, err := NewApp(ctx(t), NewPersistence(kv), nil)
	require.NoError(t, err)
	stored := storedRecords(t, kv)

	kv.fail = errors.New("disk full")
	res, err := app.Dispatch(ctx(t), AddRecord{Record: Record{Name: "Unsaved"}})
	require.ErrorIs(t, err, kv.fail)
	require.False(t, res.Saved)

	require.Len(t, app.Records(), 4, "in-memory change stays")
	require.Equal(t, stored, storedRecords(t, kv), "storage keeps the last successful flush")
}
