// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package api implements the data functions.

Every function runs the same pipeline for a request:

  resolve access level -> fetch from the system of record
      success: shape envelope (source=live)
      failure: fallback data -> shape envelope (source=fallback)

Failures of the system of record never reach the caller, they only show up as
source=fallback. A 500 is returned for defects of the handler itself, like a
malformed configuration or an envelope that cannot be encoded.

The pipeline is transport agnostic. HandleAPIGateway serves it as a lambda behind
an API gateway, ServeHTTP as a plain net/http handler for local development.
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/envelope"
	"github.com/relabs-tech/showcase/core/logger"
	"github.com/relabs-tech/showcase/core/schema"
)

// Batch is the data of one response
type Batch struct {
	Data  interface{}
	Count int
	// UserName is the caller's display name, if the source knows it
	UserName string
}

// Source is a system of record together with its fallback data
type Source interface {
	// DataKey is the name of the data in the envelope
	DataKey() string
	// Fetch reads the data visible at level from the system of record
	Fetch(ctx context.Context, claims access.Claims, level access.Level) (Batch, error)
	// Fallback returns the substitute data for level. It must not fail.
	Fallback(ctx context.Context, level access.Level) Batch
}

// internalErrorMessage is the only detail a caller gets about a handler defect
const internalErrorMessage = "Internal server error"

// Handler serves one data function
type Handler struct {
	source    Source
	validator *schema.Validator
	schemaID  string
	setupErr  error
	now       func() time.Time
}

// NewHandler returns a new handler for source
func NewHandler(source Source) *Handler {
	return &Handler{source: source, now: time.Now}
}

// WithValidation makes the handler validate every envelope against the given schema
// before it is returned. An invalid envelope is a handler defect.
func (h *Handler) WithValidation(validator *schema.Validator, schemaID string) *Handler {
	h.validator = validator
	h.schemaID = schemaID
	return h
}

// WithSetupError marks the handler as broken. Every request is answered with a 500
// as long as err is not nil. This is used when the configuration of the function
// instance is malformed.
func (h *Handler) WithSetupError(err error) *Handler {
	h.setupErr = err
	return h
}

// Serve runs the pipeline for a caller with the given claims and returns the status
// code and body of the response.
func (h *Handler) Serve(ctx context.Context, claims access.Claims) (status int, body []byte) {
	rlog := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			rlog.WithField("stack", string(debug.Stack())).Errorf("Error 4500: handler panic: %v", r)
			status, body = http.StatusInternalServerError, h.errorBody(ctx)
		}
	}()

	if h.setupErr != nil {
		rlog.WithError(h.setupErr).Errorln("Error 4501: function is not configured correctly")
		return http.StatusInternalServerError, h.errorBody(ctx)
	}

	level := access.ResolveLevel(claims)
	rlog = rlog.WithField("level", level.String())
	rlog.Infoln("serving", h.source.DataKey())

	source := envelope.Live
	batch, err := h.fetch(ctx, claims, level)
	if err != nil {
		rlog.WithError(err).Warnln("Error 4502: system of record failed, serving fallback data")
		source = envelope.Fallback
		batch = h.source.Fallback(ctx, level)
	}

	e := envelope.Build(h.source.DataKey(), batch.Data, batch.Count, claims, level, source, h.message(batch.Count, level, source), h.now())
	e.User.Name = batch.UserName

	body, err = json.Marshal(e)
	if err != nil {
		rlog.WithError(err).Errorln("Error 4503: cannot encode envelope")
		return http.StatusInternalServerError, h.errorBody(ctx)
	}
	if h.validator != nil {
		if err := h.validator.ValidateBytes(body, h.schemaID); err != nil {
			rlog.WithError(err).Errorln("Error 4504: envelope does not match its schema")
			return http.StatusInternalServerError, h.errorBody(ctx)
		}
	}
	rlog.Infof("served %d %s from %s source", batch.Count, h.source.DataKey(), source)
	return http.StatusOK, body
}

func (h *Handler) errorBody(ctx context.Context) []byte {
	return envelope.ErrorBody(internalErrorMessage, logger.RequestIDFromContext(ctx), h.now())
}

// fetch calls the source. A panic inside the source counts as a failure of the
// system of record. Sources reading in goroutines of their own recover there and
// return the panic as an error.
func (h *Handler) fetch(ctx context.Context, claims access.Claims, level access.Level) (batch Batch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while fetching %s: %v", h.source.DataKey(), r)
		}
	}()
	return h.source.Fetch(ctx, claims, level)
}

func (h *Handler) message(count int, level access.Level, source envelope.Source) string {
	if source == envelope.Fallback {
		return fmt.Sprintf("Showing %d sample %s (%s access), the data source is currently unavailable", count, h.source.DataKey(), level.AccessLevel())
	}
	return fmt.Sprintf("Showing %d %s (%s access)", count, h.source.DataKey(), level.AccessLevel())
}

// ServeHTTP serves the pipeline over net/http. The claims are taken from the request
// context.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body := h.Serve(r.Context(), access.ClaimsFromContext(r.Context()))
	envelope.SetHeaders(w)
	w.WriteHeader(status)
	w.Write(body)
}
