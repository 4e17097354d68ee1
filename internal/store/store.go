// Package store owns every in-memory collection of the ledger and keeps each
// one synchronized with a blob store under a fixed key. Loading is always
// best-effort: a corrupt document is quarantined into the error log and the
// previous in-memory state survives, so a broken snapshot never takes the
// caller down.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dvoronin/spendlog/internal/blob"
	"github.com/dvoronin/spendlog/internal/geo"
	"github.com/dvoronin/spendlog/internal/ledger"
)

// Blob keys, one per collection.
const (
	keyTransactions = "transactions"
	keyArchive      = "archive"
	keyLocations    = "locations"
	keyCategories   = "categories"
	keyParameters   = "parameters"
)

// ErrTransactionNotFound reports an update against an id that is not in the
// live set. That is a caller bug, not corrupt user data, so it propagates
// instead of being quarantined.
var ErrTransactionNotFound = errors.New("transaction not found")

// LogEntry is one recorded failure: when it happened, which collection or
// surface it belongs to, and the underlying cause.
type LogEntry struct {
	Time  time.Time
	Tag   string
	Cause string
}

// Config configures a Store.
type Config struct {
	// Blob is the external key-value store holding the persisted state.
	Blob blob.Store

	// Logger receives structured restore/quarantine events.
	Logger zerolog.Logger

	// Locale is the BCP 47 tag used for case-insensitive category
	// collation. Defaults to "de".
	Locale string

	// DateLayout formats dates in export text. Defaults to
	// ledger.DefaultDateLayout.
	DateLayout string

	// Now stamps error-log entries; defaults to time.Now. Tests override.
	Now func() time.Time
}

// Store is the single owner of all ledger collections for the life of the
// process. It is meant to be driven by one goroutine; there is no internal
// locking.
type Store struct {
	blob       blob.Store
	log        zerolog.Logger
	now        func() time.Time
	dateLayout string
	collator   *collate.Collator

	transactions []ledger.Transaction
	groups       []*ledger.Group
	archive      [][]ledger.TransactionData
	categories   []string
	locations    []geo.Location
	parameters   ledger.Parameters

	errors     []LogEntry
	exceptions []LogEntry
	firstTime  bool
}

// New seeds the store with its built-in defaults, detects whether this is the
// first run (no transactions key in the blob store), and restores every
// collection. Restore failures land in the error log, never in the return
// path.
func New(ctx context.Context, cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Locale == "" {
		cfg.Locale = "de"
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = ledger.DefaultDateLayout
	}

	s := &Store{
		blob:       cfg.Blob,
		log:        cfg.Logger,
		now:        cfg.Now,
		dateLayout: cfg.DateLayout,
		collator:   collate.New(language.Make(cfg.Locale), collate.IgnoreCase),

		transactions: ledger.NewTransactions(demoTransactions()),
		archive:      [][]ledger.TransactionData{},
		categories:   append([]string(nil), demoCategories...),
		parameters:   ledger.DefaultParameters(),
	}

	if _, ok, err := s.blob.Get(ctx, keyTransactions); err == nil && !ok {
		s.firstTime = true
	}

	s.RestoreCategories(ctx)
	s.RestoreTransactions(ctx)
	s.RestoreArchive(ctx)
	s.RestoreLocations(ctx)
	s.RestoreParameters(ctx)
	return s
}

// FirstTime reports whether the transactions key was absent when the store
// was constructed. Cleared by the first persisted transaction write.
func (s *Store) FirstTime() bool {
	return s.firstTime
}

// restore runs the shared load-with-quarantine sequence: fetch the raw
// document, hand it to install (which decodes, validates and swaps in the new
// state), and on any failure log it and keep the previous state. An absent
// key is not an error; the current in-memory value simply stands.
func (s *Store) restore(ctx context.Context, key string, install func(raw string) error) {
	raw, ok, err := s.blob.Get(ctx, key)
	if err != nil {
		s.quarantine(key, err)
		return
	}
	if !ok {
		return
	}
	if err := install(raw); err != nil {
		s.quarantine(key, err)
		return
	}
	s.log.Debug().Str("key", key).Msg("collection restored")
}

func (s *Store) quarantine(key string, cause error) {
	s.errors = append(s.errors, LogEntry{
		Time:  s.now(),
		Tag:   key + " format error",
		Cause: cause.Error(),
	})
	s.log.Warn().Str("key", key).Err(cause).Msg("collection failed to load, keeping previous state")
}

// RecordException appends an externally observed unhandled failure to the
// exception log. No recovery is attempted; this layer cannot know the
// failure's origin.
func (s *Store) RecordException(cause error) {
	s.exceptions = append(s.exceptions, LogEntry{
		Time:  s.now(),
		Tag:   "unhandled exception",
		Cause: cause.Error(),
	})
	s.log.Warn().Err(cause).Msg("unhandled exception recorded")
}

// Errors returns the recoverable-failure log.
func (s *Store) Errors() []LogEntry {
	return s.errors
}

// Exceptions returns the unhandled-failure log.
func (s *Store) Exceptions() []LogEntry {
	return s.exceptions
}

// ErrorText renders the error log for display.
func (s *Store) ErrorText() string {
	return formatLog(s.errors)
}

// ExceptionText renders the exception log for display.
func (s *Store) ExceptionText() string {
	return formatLog(s.exceptions)
}

func formatLog(entries []LogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s: %s", e.Time.Format(time.RFC3339), e.Tag, e.Cause))
	}
	result := ""
	for i, l := range lines {
		if i > 0 {
			result += "\n\n"
		}
		result += l
	}
	return result
}

// ReadRaw returns the raw stored document under key, or "???" when the key
// is absent or unreadable. Debugging aid only.
func (s *Store) ReadRaw(ctx context.Context, key string) string {
	raw, ok, err := s.blob.Get(ctx, key)
	if err != nil || !ok {
		return "???"
	}
	return raw
}

// ---- transactions ----

// Transactions returns the live transaction set.
func (s *Store) Transactions() []ledger.Transaction {
	return s.transactions
}

// RestoreTransactions reloads the live set from the blob store, repairing
// wire dates and rebuilding ids from 0.
func (s *Store) RestoreTransactions(ctx context.Context) {
	s.restore(ctx, keyTransactions, func(raw string) error {
		data, err := decodeTransactions(raw)
		if err != nil {
			return err
		}
		s.transactions = ledger.NewTransactions(data)
		return nil
	})
}

// TransactionsJSON serializes the live set, identity-stripped.
func (s *Store) TransactionsJSON() (string, error) {
	return marshalJSON(ledger.ExtractData(s.transactions))
}

// SetTransactionsJSON writes raw text to the blob store and reloads from it.
// Malformed text is quarantined on reload and never reaches the in-memory
// set, but the rejected document stays in the blob store until the next
// valid write.
func (s *Store) SetTransactionsJSON(ctx context.Context, text string) error {
	if err := s.blob.Set(ctx, keyTransactions, text); err != nil {
		return fmt.Errorf("SetTransactionsJSON: %w", err)
	}
	s.RestoreTransactions(ctx)
	return nil
}

// StoreTransactions persists the live set and clears the first-run flag.
func (s *Store) StoreTransactions(ctx context.Context) error {
	text, err := s.TransactionsJSON()
	if err != nil {
		return fmt.Errorf("StoreTransactions: %w", err)
	}
	if err := s.blob.Set(ctx, keyTransactions, text); err != nil {
		return fmt.Errorf("StoreTransactions: %w", err)
	}
	s.firstTime = false
	return nil
}

// NewTransaction appends a transaction with the next free id, persists the
// set, and expands the weekly group the new entry landed in.
func (s *Store) NewTransaction(ctx context.Context, data ledger.TransactionData) (ledger.Transaction, error) {
	t := ledger.Transaction{
		ID:       ledger.NextID(s.transactions),
		Date:     data.Date,
		Amount:   data.Amount,
		Category: data.Category,
		Info:     data.Info,
	}
	s.transactions = append(s.transactions, t)
	if err := s.StoreTransactions(ctx); err != nil {
		return ledger.Transaction{}, err
	}
	groups, err := s.Groups()
	if err != nil {
		return ledger.Transaction{}, err
	}
	if g := ledger.GroupForTransaction(t, groups); g != nil {
		g.Expanded = true
	}
	return t, nil
}

// UpdateTransaction replaces every field except the id of the transaction
// with the given id. Returns ErrTransactionNotFound when the id is not live.
func (s *Store) UpdateTransaction(ctx context.Context, id int, data ledger.TransactionData) error {
	for i := range s.transactions {
		if s.transactions[i].ID != id {
			continue
		}
		s.transactions[i] = ledger.Transaction{
			ID:       id,
			Date:     data.Date,
			Amount:   data.Amount,
			Category: data.Category,
			Info:     data.Info,
		}
		return s.StoreTransactions(ctx)
	}
	return fmt.Errorf("UpdateTransaction: id %d: %w", id, ErrTransactionNotFound)
}

// DeleteTransaction removes the transaction with the given id and persists.
// Deleting an absent id is a no-op that still persists the unchanged set.
func (s *Store) DeleteTransaction(ctx context.Context, id int) error {
	kept := s.transactions[:0:0]
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	return s.StoreTransactions(ctx)
}

// Groups re-derives the weekly grouping from the live set, carrying each
// group's expanded flag over from the previous derivation.
func (s *Store) Groups() ([]*ledger.Group, error) {
	groups, err := ledger.BuildGroups(s.transactions, s.groups)
	if err != nil {
		return nil, err
	}
	s.groups = groups
	return groups, nil
}

func (s *Store) groupsInternal() ([]*ledger.Group, error) {
	if s.groups != nil {
		return s.groups, nil
	}
	return s.Groups()
}

// ExportText renders the current grouping in the line-oriented export format.
func (s *Store) ExportText() (string, error) {
	groups, err := s.groupsInternal()
	if err != nil {
		return "", err
	}
	return ledger.ExportGroups(groups, s.dateLayout), nil
}

// ---- archive ----

// Archive returns the archived batches, oldest first.
func (s *Store) Archive() [][]ledger.TransactionData {
	return s.archive
}

// RestoreArchive reloads the archive, repairing wire dates in every element
// of every batch.
func (s *Store) RestoreArchive(ctx context.Context) {
	s.restore(ctx, keyArchive, func(raw string) error {
		archive, err := decodeArchive(raw)
		if err != nil {
			return err
		}
		s.archive = archive
		return nil
	})
}

// ArchiveJSON serializes the archive.
func (s *Store) ArchiveJSON() (string, error) {
	return marshalJSON(s.archive)
}

// SetArchiveJSON writes raw text to the blob store and reloads from it.
func (s *Store) SetArchiveJSON(ctx context.Context, text string) error {
	if err := s.blob.Set(ctx, keyArchive, text); err != nil {
		return fmt.Errorf("SetArchiveJSON: %w", err)
	}
	s.RestoreArchive(ctx)
	return nil
}

// StoreArchive persists the archive.
func (s *Store) StoreArchive(ctx context.Context) error {
	text, err := s.ArchiveJSON()
	if err != nil {
		return fmt.Errorf("StoreArchive: %w", err)
	}
	if err := s.blob.Set(ctx, keyArchive, text); err != nil {
		return fmt.Errorf("StoreArchive: %w", err)
	}
	return nil
}

// ClearAndUpdateArchive moves the whole live set into a new archive batch:
// the batch is appended and persisted first, then the live set is cleared
// and persisted. The two writes are not atomic; a crash in between leaves
// both the new batch and the old live set present.
func (s *Store) ClearAndUpdateArchive(ctx context.Context) error {
	s.archive = append(s.archive, ledger.ExtractData(s.transactions))
	if err := s.StoreArchive(ctx); err != nil {
		return err
	}
	s.transactions = []ledger.Transaction{}
	return s.StoreTransactions(ctx)
}

// ArchiveExportText renders every archived batch, re-grouped from scratch.
func (s *Store) ArchiveExportText() (string, error) {
	return ledger.ExportArchive(s.archive, s.dateLayout)
}

// ---- locations ----

// Locations returns the known locations.
func (s *Store) Locations() []geo.Location {
	return s.locations
}

// RestoreLocations reloads the known locations, rebuilding ids from 0.
func (s *Store) RestoreLocations(ctx context.Context) {
	s.restore(ctx, keyLocations, func(raw string) error {
		data, err := decodeLocations(raw)
		if err != nil {
			return err
		}
		s.locations = geo.LocationsFromData(data)
		return nil
	})
}

// LocationsJSON serializes the known locations, identity-stripped.
func (s *Store) LocationsJSON() (string, error) {
	return marshalJSON(geo.LocationsToData(s.locations))
}

// SetLocationsJSON writes raw text to the blob store and reloads from it.
func (s *Store) SetLocationsJSON(ctx context.Context, text string) error {
	if err := s.blob.Set(ctx, keyLocations, text); err != nil {
		return fmt.Errorf("SetLocationsJSON: %w", err)
	}
	s.RestoreLocations(ctx)
	return nil
}

// StoreLocations persists the known locations.
func (s *Store) StoreLocations(ctx context.Context) error {
	text, err := s.LocationsJSON()
	if err != nil {
		return fmt.Errorf("StoreLocations: %w", err)
	}
	if err := s.blob.Set(ctx, keyLocations, text); err != nil {
		return fmt.Errorf("StoreLocations: %w", err)
	}
	return nil
}

// NewLocation appends a location with the next free id and persists.
func (s *Store) NewLocation(ctx context.Context, data geo.LocationData) (geo.Location, error) {
	id := 0
	for _, l := range s.locations {
		if l.ID > id {
			id = l.ID
		}
	}
	l := geo.Location{ID: id + 1, Coords: data.Coords, Category: data.Category, Info: data.Info}
	s.locations = append(s.locations, l)
	if err := s.StoreLocations(ctx); err != nil {
		return geo.Location{}, err
	}
	return l, nil
}

// DeleteLocation removes the location with the given id and persists.
// Idempotent like DeleteTransaction.
func (s *Store) DeleteLocation(ctx context.Context, id int) error {
	kept := s.locations[:0:0]
	for _, l := range s.locations {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.locations = kept
	return s.StoreLocations(ctx)
}

// SuggestLocation returns the known location nearest to point within the
// configured maximum distance, or nil. Its category is the auto-suggestion
// for a transaction entered at that fix.
func (s *Store) SuggestLocation(point geo.Coordinates, category *string) *geo.Location {
	return geo.FindNearestWithin(s.locations, point, s.parameters.MaxDistance, category)
}

// ---- categories ----

// Categories returns the category names, sorted case-insensitively.
func (s *Store) Categories() []string {
	return s.categories
}

// RestoreCategories reloads the category list. The list is re-sorted with
// the configured collator whether or not the load succeeded, so the
// sorted-order invariant holds even over the seeded defaults.
func (s *Store) RestoreCategories(ctx context.Context) {
	s.restore(ctx, keyCategories, func(raw string) error {
		categories, err := decodeCategories(raw)
		if err != nil {
			return err
		}
		s.categories = categories
		return nil
	})
	s.sortCategories()
}

func (s *Store) sortCategories() {
	sort.SliceStable(s.categories, func(i, j int) bool {
		return s.collator.CompareString(s.categories[i], s.categories[j]) < 0
	})
}

// CategoriesJSON serializes the category list.
func (s *Store) CategoriesJSON() (string, error) {
	return marshalJSON(s.categories)
}

// SetCategoriesJSON writes raw text to the blob store and reloads from it.
func (s *Store) SetCategoriesJSON(ctx context.Context, text string) error {
	if err := s.blob.Set(ctx, keyCategories, text); err != nil {
		return fmt.Errorf("SetCategoriesJSON: %w", err)
	}
	s.RestoreCategories(ctx)
	return nil
}

// StoreCategories persists the category list.
func (s *Store) StoreCategories(ctx context.Context) error {
	text, err := s.CategoriesJSON()
	if err != nil {
		return fmt.Errorf("StoreCategories: %w", err)
	}
	if err := s.blob.Set(ctx, keyCategories, text); err != nil {
		return fmt.Errorf("StoreCategories: %w", err)
	}
	return nil
}

// ---- parameters ----

// Parameters returns the tunable parameters.
func (s *Store) Parameters() ledger.Parameters {
	return s.parameters
}

// RestoreParameters reloads the parameters.
func (s *Store) RestoreParameters(ctx context.Context) {
	s.restore(ctx, keyParameters, func(raw string) error {
		p, err := decodeParameters(raw)
		if err != nil {
			return err
		}
		s.parameters = p
		return nil
	})
}

// ParametersJSON serializes the parameters.
func (s *Store) ParametersJSON() (string, error) {
	return marshalJSON(s.parameters)
}

// SetParametersJSON writes raw text to the blob store and reloads from it.
func (s *Store) SetParametersJSON(ctx context.Context, text string) error {
	if err := s.blob.Set(ctx, keyParameters, text); err != nil {
		return fmt.Errorf("SetParametersJSON: %w", err)
	}
	s.RestoreParameters(ctx)
	return nil
}

// ---- reset ----

// Reset deletes the archive, transactions and locations blobs and clears the
// matching in-memory collections. Categories and parameters are deliberately
// retained.
func (s *Store) Reset(ctx context.Context) error {
	for _, key := range []string{keyArchive, keyTransactions, keyLocations} {
		if err := s.blob.Remove(ctx, key); err != nil {
			return fmt.Errorf("Reset: %w", err)
		}
	}
	s.transactions = []ledger.Transaction{}
	s.locations = []geo.Location{}
	s.archive = [][]ledger.TransactionData{}
	return nil
}

func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling json: %w", err)
	}
	return string(data), nil
}
