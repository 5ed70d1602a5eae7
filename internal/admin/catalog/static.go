package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// StaticService keeps rows in memory and mirrors the endpoint's behaviour. It backs
// local development when no endpoint is configured, and tests.
type StaticService struct {
	mu      sync.Mutex
	records []Record

	listErr  error
	writeErr error

	listCalls  int
	writeCalls int
}

// NewStaticService returns a StaticService seeded with records. A nil slice
// yields the demo catalog.
func NewStaticService(records []Record) *StaticService {
	if records == nil {
		records = demoRecords()
	}
	cloned := make([]Record, 0, len(records))
	for _, rec := range records {
		cloned = append(cloned, cloneRecord(rec))
	}
	return &StaticService{records: cloned}
}

// List returns the stored rows normalized in order.
func (s *StaticService) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	products := make([]Product, 0, len(s.records))
	for i, rec := range s.records {
		products = append(products, Normalize(rec, i))
	}
	return products, nil
}

// Create appends the draft as a new row.
func (s *StaticService) Create(ctx context.Context, draft Draft) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCalls++
	if s.writeErr != nil {
		return Envelope{}, s.writeErr
	}
	rec := draft.Record()
	resolveImageField(rec)
	s.records = append(s.records, rec)
	return Envelope{OK: true}, nil
}

// Update applies changes to the first row whose title matches businessKey.
func (s *StaticService) Update(ctx context.Context, businessKey string, changes Changes) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCalls++
	if s.writeErr != nil {
		return Envelope{}, s.writeErr
	}
	idx := s.indexOf(businessKey)
	if idx < 0 {
		return Envelope{OK: false, Error: notFoundMessage(businessKey)}, newRemoteError(http.StatusOK, notFoundMessage(businessKey))
	}
	updates := changes.Record()
	resolveImageField(updates)
	for k, v := range updates {
		s.records[idx][k] = v
	}
	return Envelope{OK: true}, nil
}

// Delete removes the first row whose title matches businessKey.
func (s *StaticService) Delete(ctx context.Context, businessKey string) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCalls++
	if s.writeErr != nil {
		return Envelope{}, s.writeErr
	}
	idx := s.indexOf(businessKey)
	if idx < 0 {
		return Envelope{OK: false, Error: notFoundMessage(businessKey)}, newRemoteError(http.StatusOK, notFoundMessage(businessKey))
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return Envelope{OK: true}, nil
}

// SetListErr makes List fail with err until cleared with nil.
func (s *StaticService) SetListErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// SetWriteErr makes Create, Update and Delete fail with err without applying the write.
func (s *StaticService) SetWriteErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// ListCalls reports how many times List was invoked.
func (s *StaticService) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// WriteCalls reports how many create, update or delete calls were received.
func (s *StaticService) WriteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCalls
}

// Records returns a copy of the stored rows.
func (s *StaticService) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	return out
}

func (s *StaticService) indexOf(businessKey string) int {
	key := strings.TrimSpace(businessKey)
	for i, rec := range s.records {
		if recordString(rec, FieldTitle) == key {
			return i
		}
	}
	return -1
}

func notFoundMessage(key string) string {
	return fmt.Sprintf("Producto no encontrado: %s", key)
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func demoRecords() []Record {
	return []Record{
		{FieldCategory: "Bebidas", FieldTitle: "Café de olla", FieldStock: 24, FieldPrice: 85.5, FieldImage: ""},
		{FieldCategory: "Bebidas", FieldTitle: "Té verde", FieldStock: 4, FieldPrice: 60, FieldImage: ""},
		{FieldCategory: "Panadería", FieldTitle: "Concha de vainilla", FieldStock: 0, FieldPrice: 18, FieldImage: ""},
		{FieldCategory: "Panadería", FieldTitle: "Pan integral", FieldStock: 12, FieldPrice: "$45.00", FieldImage: ""},
		{FieldCategory: "Abarrotes", FieldTitle: "Azúcar morena 1kg", FieldStock: "31", FieldPrice: "32.90", FieldImage: ""},
	}
}
