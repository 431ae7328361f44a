// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/envelope"
	"github.com/relabs-tech/showcase/core/logger"
)

// NewRouter returns a router serving both data functions over plain HTTP:
//
//	GET /data    product catalog
//	GET /images  dashboard images
//	GET /health  liveness
//
// The claims are decoded from the bearer token without verification, so the router
// is only meant for local development.
func NewRouter(products, images http.Handler) *mux.Router {
	router := mux.NewRouter()
	logger.AddRequestID(router)
	router.Use(corsMiddleware)
	router.Use(access.NewUnverifiedClaimsMiddleware())

	router.Handle("/data", products).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/images", images).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		envelope.SetHeaders(w)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet, http.MethodOptions)
	return router
}

func corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope.SetHeaders(w)
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method, "(handled by CORS middleware)")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
