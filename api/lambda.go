// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package api

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/envelope"
	"github.com/relabs-tech/showcase/core/logger"
)

// HandleAPIGateway serves the pipeline as a lambda behind an API gateway proxy
// integration. The identity claims are taken from the authorizer context, the
// gateway has already verified them. The returned error is always nil, failures are
// expressed by the status code.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		requestID = lc.AwsRequestID
	}
	ctx, _ = logger.ContextWithRequestID(ctx, requestID)
	ctx, _ = logger.ContextWithLoggerFunction(ctx, lambdacontext.FunctionName)

	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: envelope.Headers()}, nil
	}

	claims := access.ClaimsFromAuthorizer(req.RequestContext.Authorizer)
	if claims.Email != "" {
		ctx, _ = logger.ContextWithLoggerIdentity(ctx, claims.Email)
	}
	status, body := h.Serve(ctx, claims)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    envelope.Headers(),
		Body:       string(body),
	}, nil
}
