// Package actions journals every command handed to the venue in a WAL for auditing.
package actions

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

const (
	defaultJournalDir   = "./wal/actions"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	actionKeyPrefix     = "action_"
)

// Record journaled command. Uses string fields to avoid float precision issues for consumers.
type Record struct {
	Timestamp   time.Time `json:"ts"`
	Action      string    `json:"action"`
	Symbol      string    `json:"symbol,omitempty"`
	Side        string    `json:"side,omitempty"`
	TimeInForce string    `json:"time_in_force,omitempty"`
	Quantity    string    `json:"quantity,omitempty"`
	Price       string    `json:"price,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	ClOrdID     string    `json:"cl_ord_id,omitempty"`
}

// NewRecord converts a command into its journal form.
func NewRecord(ts time.Time, cmd domain.Command, clOrdID string) Record {
	r := Record{
		Timestamp: ts,
		Action:    cmd.Action.String(),
		Symbol:    cmd.Symbol.String(),
		Side:      string(cmd.Side),
		OrderID:   cmd.OrderID,
		ClOrdID:   clOrdID,
	}
	if cmd.Action == domain.ActionPlaceLimit {
		r.TimeInForce = string(cmd.TimeInForce)
		r.Quantity = cmd.Quantity.String()
		r.Price = cmd.Price.String()
	}
	return r
}

// IndexedRecord bundles a record with its WAL index.
type IndexedRecord struct {
	Index  uint64
	Record Record
}

// WALStore persists dispatched commands in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed journal under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "actions_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init action journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the record to the WAL.
func (s *WALStore) Save(record Record) error {
	if s == nil || s.wal == nil {
		return errors.New("action journal is not initialized")
	}
	if record.Action == "" {
		return fmt.Errorf("action journal record action is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal action record")
	}

	key := actionKeyPrefix + record.Action

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RecordsAfter returns all records written after the provided WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]IndexedRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("action journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]IndexedRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, actionKeyPrefix) {
			continue
		}
		var record Record
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrap(err, "decode action record")
		}
		records = append(records, IndexedRecord{Index: idx, Record: record})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("action journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
