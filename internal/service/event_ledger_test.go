package service

import (
	"testing"

	"github.com/comanda/comanda/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type EventLedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	ledger EventLedgerService
}

func TestEventLedgerService(t *testing.T) {
	suite.Run(t, new(EventLedgerServiceSuite))
}

func (s *EventLedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.ledger = NewEventLedgerService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *EventLedgerServiceSuite) TestDeriveKeyFromIdentifiers() {
	key := s.ledger.DeriveKey("payment", "12345", []byte(`{"id":"12345"}`))
	s.Equal("mercadopago:payment:12345", key)
}

func (s *EventLedgerServiceSuite) TestDeriveKeyFallsBackToContentHash() {
	payload := []byte(`{"action":"payment.updated"}`)

	// Missing either identifier forces the content hash
	noID := s.ledger.DeriveKey("payment", "", payload)
	noType := s.ledger.DeriveKey("", "12345", payload)

	s.Equal(noID, noType)
	s.NotEqual(noID, s.ledger.DeriveKey("", "", []byte(`different`)))

	// Deterministic across calls
	s.Equal(noID, s.ledger.DeriveKey("payment", "", payload))
}

func (s *EventLedgerServiceSuite) TestRecordIfNew() {
	key := s.ledger.DeriveKey("payment", "12345", nil)

	isNew, err := s.ledger.RecordIfNew(s.GetContext(), key, []byte(`first`))
	s.NoError(err)
	s.True(isNew)

	isNew, err = s.ledger.RecordIfNew(s.GetContext(), key, []byte(`second`))
	s.NoError(err)
	s.False(isNew)

	store := s.GetStores().WebhookEventRepo.(*testutil.InMemoryWebhookEventStore)
	s.Equal(1, store.Count())

	// The duplicate delivery refreshed the stored payload
	event, err := store.GetByKey(s.GetContext(), key)
	s.NoError(err)
	s.Equal([]byte(`second`), event.RawPayload)
}

func (s *EventLedgerServiceSuite) TestDistinctKeysBothRecorded() {
	first, err := s.ledger.RecordIfNew(s.GetContext(), s.ledger.DeriveKey("payment", "1", nil), nil)
	s.NoError(err)
	s.True(first)

	second, err := s.ledger.RecordIfNew(s.GetContext(), s.ledger.DeriveKey("payment", "2", nil), nil)
	s.NoError(err)
	s.True(second)
}
