package service

import (
	"clientsvc/internal/metrics"
	"clientsvc/internal/ports"
	"clientsvc/internal/types"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// ClientService applies the client business rules on top of a RecordStore.
type ClientService struct {
	store ports.RecordStore

	pub   ports.Publisher
	topic string
	now   func() time.Time
}

type Option func(*ClientService)

// WithPublisher publishes a ChangeEvent to topicArn after each successful write.
func WithPublisher(pub ports.Publisher, topicArn string) Option {
	return func(s *ClientService) {
		s.pub = pub
		s.topic = topicArn
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *ClientService) { s.now = now }
}

func NewClientService(store ports.RecordStore, opts ...Option) *ClientService {
	s := &ClientService{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindAll returns every client.
func (s *ClientService) FindAll(ctx context.Context) ([]types.Record, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		log.WithError(err).Error("error getting all clients")
		return nil, types.Err(types.ErrOperationFailed, nil, "failed to retrieve clients")
	}
	return records, nil
}

// FindByID returns the client with the given id or a *types.NotFoundError.
// Storage errors are returned unchanged.
func (s *ClientService) FindByID(ctx context.Context, id string) (types.Record, error) {
	if id == "" {
		return nil, types.Err(types.ErrInvalidInput, nil, "client id is required")
	}
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, types.NotFound(id)
	}
	return record, nil
}

// Create validates the candidate and stores it under a fresh id.
func (s *ClientService) Create(ctx context.Context, candidate types.Record) (types.Record, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	record, err := s.store.Insert(ctx, candidate)
	if err != nil {
		log.WithError(err).Error("error creating client")
		return nil, types.Err(types.ErrOperationFailed, nil, "failed to create client")
	}
	s.publish(ctx, types.ClientCreated, record.ID(), record)
	return record, nil
}

// CreateAll validates every candidate before inserting any of them. The inserts are
// independent; a *types.BatchError lists the inputs that were not stored.
func (s *ClientService) CreateAll(ctx context.Context, candidates []types.Record) ([]types.Record, error) {
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("client #%d: %w", i, err)
		}
	}
	records, err := s.store.InsertAll(ctx, candidates)
	for _, r := range records {
		s.publish(ctx, types.ClientCreated, r.ID(), r)
	}
	if err != nil {
		var be *types.BatchError
		if errors.As(err, &be) {
			log.WithFields(log.Fields{"failed": be.FailedIndexes(), "total": be.Total}).Warn("batch create partially failed")
			return records, be
		}
		log.WithError(err).Error("error creating clients")
		return records, types.Err(types.ErrOperationFailed, nil, "failed to create clients")
	}
	return records, nil
}

// Update applies the fields of candidate to an existing client. The id field is ignored.
func (s *ClientService) Update(ctx context.Context, id string, candidate types.Record) (types.Record, error) {
	if id == "" || candidate == nil {
		return nil, types.Err(types.ErrInvalidInput, nil, "client id and update are required")
	}
	res, err := s.store.Update(ctx, id, candidate)
	if err != nil {
		return nil, err
	}
	metrics.CountOutcome("update", res.Outcome.String())
	switch res.Outcome {
	case types.NoFieldsProvided:
		return nil, types.ErrNoFieldsProvided
	case types.UpdateNotFound:
		return nil, types.NotFound(id)
	}
	s.publish(ctx, types.ClientUpdated, id, res.Record)
	return res.Record, nil
}

// Delete removes the client. Deleting an unknown id succeeds.
func (s *ClientService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, types.Err(types.ErrInvalidInput, nil, "client id is required")
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		log.WithError(err).WithField("id", id).Error("error deleting client")
		return false, types.Err(types.ErrOperationFailed, nil, "failed to delete client")
	}
	s.publish(ctx, types.ClientDeleted, id, nil)
	return true, nil
}

func (s *ClientService) publish(ctx context.Context, kind types.ChangeType, id string, record types.Record) {
	if s.pub == nil || s.topic == "" {
		return
	}
	b, err := json.Marshal(types.ChangeEvent{Type: kind, ID: id, Record: record, At: s.now().UTC()})
	if err != nil {
		log.WithError(err).WithField("id", id).Error("failed to marshal change event")
		return
	}
	if err := s.pub.PublishRaw(ctx, s.topic, b); err != nil {
		log.WithError(err).WithFields(log.Fields{"id": id, "type": kind}).Warn("failed to publish change event")
	}
}
