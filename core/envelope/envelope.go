// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package envelope shapes the JSON responses of the data functions.

Every successful response is an envelope of the form

  {
    "<data key>": [...],
    "user": {"email": ..., "role": ..., "groups": [...]},
    "metadata": {"totalCount": ..., "isAdmin": ..., "accessLevel": ..., "timestamp": ..., "source": ...},
    "message": "..."
  }

where source tells the caller whether the data is live or a fallback substitute.
*/
package envelope

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/showcase/core/access"
)

// Source tells where the data of an envelope comes from
type Source string

const (
	// Live data comes from the system of record
	Live Source = "live"
	// Fallback data is the fixed substitute served when the system of record failed
	Fallback Source = "fallback"
)

// TimestampFormat is the format of all timestamps in envelopes
const TimestampFormat = time.RFC3339

// User is the user block of an envelope
type User struct {
	Email  string   `json:"email"`
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
	Name   string   `json:"name,omitempty"`
}

// Metadata is the metadata block of an envelope
type Metadata struct {
	TotalCount  int    `json:"totalCount"`
	IsAdmin     bool   `json:"isAdmin"`
	AccessLevel string `json:"accessLevel"`
	Timestamp   string `json:"timestamp"`
	Source      Source `json:"source"`
}

// Envelope is the response of a data function
type Envelope struct {
	DataKey  string
	Data     interface{}
	User     User
	Metadata Metadata
	Message  string
}

// Build assembles an envelope. count is the number of records in data.
func Build(dataKey string, data interface{}, count int, claims access.Claims, level access.Level, source Source, message string, now time.Time) Envelope {
	groups := claims.Groups
	if groups == nil {
		groups = []string{}
	}
	return Envelope{
		DataKey: dataKey,
		Data:    data,
		User: User{
			Email:  claims.Email,
			Role:   level.String(),
			Groups: groups,
		},
		Metadata: Metadata{
			TotalCount:  count,
			IsAdmin:     level.IsAdmin(),
			AccessLevel: level.AccessLevel(),
			Timestamp:   now.UTC().Format(TimestampFormat),
			Source:      source,
		},
		Message: message,
	}
}

// MarshalJSON encodes the envelope with the data under its data key
func (e Envelope) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = []interface{}{}
	}
	return json.Marshal(map[string]interface{}{
		e.DataKey:  data,
		"user":     e.User,
		"metadata": e.Metadata,
		"message":  e.Message,
	})
}

// Headers returns the headers of every response: permissive CORS and JSON content
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, OPTIONS",
		"Access-Control-Allow-Headers": "Accept, Content-Type, Authorization, X-Amz-Date, X-Api-Key, X-Amz-Security-Token",
	}
}

// SetHeaders sets the headers of Headers on w
func SetHeaders(w http.ResponseWriter) {
	for k, v := range Headers() {
		w.Header().Set(k, v)
	}
}

// errorBody is the body of a 500 response
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorBody returns the body of an error response. The message is generic, details
// only go to the log. The request ID lets a caller point at the log entries.
func ErrorBody(message, requestID string, now time.Time) []byte {
	data, _ := json.Marshal(errorBody{
		Error:     http.StatusText(http.StatusInternalServerError),
		Message:   message,
		RequestID: requestID,
		Timestamp: now.UTC().Format(TimestampFormat),
	})
	return data
}
