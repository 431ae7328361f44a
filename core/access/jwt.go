// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/relabs-tech/showcase/core/logger"
)

// ClaimsFromBearer decodes the claims of a bearer token WITHOUT verifying its signature.
//
// This is only meant for the local development server, which stands in for the API
// gateway. In production the gateway's authorizer verifies the token and passes the
// claims in the request context. A malformed token yields empty claims.
func ClaimsFromBearer(bearer string) Claims {
	tokenString := strings.TrimSpace(bearer)
	if len(tokenString) >= 7 && strings.ToLower(tokenString[:7]) == "bearer " {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	if tokenString == "" || tokenString == "null" {
		return Claims{}
	}

	mapClaims := jwt.MapClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(tokenString, mapClaims)
	if err != nil {
		logger.Default().WithError(err).Debugln("cannot decode bearer token, continuing without claims")
		return Claims{}
	}
	return ClaimsFromMap(mapClaims)
}

// NewUnverifiedClaimsMiddleware returns a middleware which decodes the claims from the
// Authorization header and stores them in the request context. See ClaimsFromBearer
// for why this must never face the internet.
func NewUnverifiedClaimsMiddleware() func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromBearer(r.Header.Get("Authorization"))
			ctx := ContextWithClaims(r.Context(), claims)
			if claims.Email != "" {
				ctx, _ = logger.ContextWithLoggerIdentity(ctx, claims.Email)
			}
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
