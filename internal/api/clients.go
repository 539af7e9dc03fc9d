package api

import (
	"clientsvc/internal/query"
	"clientsvc/internal/types"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	MsgCreated      = "Successfully created client."
	MsgRetrievedAll = "Successfully retrieved all clients !"
	MsgRetrieved    = "Successfully retrieved client."
	MsgUpdated      = "Successfully client updated."
	MsgDeleted      = "Successfully deleted client."
	MsgNotFound     = "Client not found."
	MsgInternal     = "Internal server error."
)

// Clients is the service surface the entry points are allowed to call.
type Clients interface {
	FindAll(ctx context.Context) ([]types.Record, error)
	FindByID(ctx context.Context, id string) (types.Record, error)
	Create(ctx context.Context, candidate types.Record) (types.Record, error)
	Update(ctx context.Context, id string, candidate types.Record) (types.Record, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// reply is a status code and a JSON envelope shared by the HTTP and Lambda entry points.
type reply struct {
	status int
	body   map[string]any
}

func ok(message string, data any) reply {
	return reply{status: http.StatusOK, body: map[string]any{"message": message, "data": data}}
}

func failure(err error) reply {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return reply{status: http.StatusNotFound, body: map[string]any{"message": MsgNotFound}}
	case errors.Is(err, types.ErrInvalidInput):
		return reply{status: http.StatusBadRequest, body: map[string]any{"message": errorMessage(err)}}
	default:
		log.WithError(err).Error("client request failed")
		return reply{status: http.StatusInternalServerError, body: map[string]any{"message": MsgInternal}}
	}
}

// errorMessage flattens joined errors into a single line.
func errorMessage(err error) string {
	parts := strings.FieldsFunc(err.Error(), func(r rune) bool { return r == '\n' })
	return strings.Join(parts, ": ")
}

func decodeCandidate(body []byte) (types.Record, error) {
	if len(body) == 0 {
		return nil, types.Err(types.ErrInvalidInput, nil, "empty body")
	}
	var candidate types.Record
	if err := json.Unmarshal(body, &candidate); err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "invalid json")
	}
	return candidate, nil
}

func listClients(ctx context.Context, svc Clients, filter string) reply {
	records, err := svc.FindAll(ctx)
	if err != nil {
		return failure(err)
	}
	records, err = query.Select(filter, records)
	if err != nil {
		return failure(err)
	}
	return ok(MsgRetrievedAll, records)
}

func getClient(ctx context.Context, svc Clients, id string) reply {
	record, err := svc.FindByID(ctx, id)
	if err != nil {
		return failure(err)
	}
	return ok(MsgRetrieved, record)
}

func createClient(ctx context.Context, svc Clients, body []byte) reply {
	candidate, err := decodeCandidate(body)
	if err != nil {
		return failure(err)
	}
	record, err := svc.Create(ctx, candidate)
	if err != nil {
		return failure(err)
	}
	return ok(MsgCreated, record)
}

func updateClient(ctx context.Context, svc Clients, id string, body []byte) reply {
	candidate, err := decodeCandidate(body)
	if err != nil {
		return failure(err)
	}
	record, err := svc.Update(ctx, id, candidate)
	if err != nil {
		return failure(err)
	}
	return ok(MsgUpdated, record)
}

func deleteClient(ctx context.Context, svc Clients, id string) reply {
	deleted, err := svc.Delete(ctx, id)
	if err != nil {
		return failure(err)
	}
	return reply{status: http.StatusOK, body: map[string]any{"message": MsgDeleted, "deleteResult": deleted}}
}
