package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// HandleAPIGateway serves the client routes behind an API Gateway REST proxy integration.
// The id is taken from the {id} path parameter.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return response(reply{status: http.StatusBadRequest, body: map[string]any{"message": "invalid body encoding"}})
		}
		body = decoded
	}
	id := req.PathParameters["id"]
	hasID := id != "" || strings.Contains(req.Resource, "{id}")

	log.WithFields(log.Fields{
		"method":    req.HTTPMethod,
		"path":      req.Path,
		"requestID": req.RequestContext.RequestID,
	}).Debug("api gateway request")

	var rep reply
	switch {
	case req.HTTPMethod == http.MethodGet && !hasID:
		rep = listClients(ctx, h.Clients, req.QueryStringParameters["filter"])
	case req.HTTPMethod == http.MethodPost && !hasID:
		rep = createClient(ctx, h.Clients, body)
	case req.HTTPMethod == http.MethodGet:
		rep = getClient(ctx, h.Clients, id)
	case req.HTTPMethod == http.MethodPut:
		rep = updateClient(ctx, h.Clients, id, body)
	case req.HTTPMethod == http.MethodDelete:
		rep = deleteClient(ctx, h.Clients, id)
	default:
		rep = reply{status: http.StatusMethodNotAllowed, body: map[string]any{"message": "method not allowed"}}
	}
	return response(rep)
}

func response(rep reply) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(rep.body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: rep.status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}, nil
}
