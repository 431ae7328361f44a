// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command local serves both data functions over plain HTTP for local development.
//
// use DB_HOST=localhost DB_USER=postgres DB_PASSWORD=docker DB_SSLMODE=disable LOG_JSON=false
//
// Bearer tokens are decoded without verification, never expose this server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/gorilla/handlers"

	"github.com/relabs-tech/showcase/api"
	"github.com/relabs-tech/showcase/core/logger"
)

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	flag.Parse()

	cfg, err := api.LoadConfiguration()
	if err != nil {
		logger.Default().WithError(err).Fatalln("Error 4603: cannot load configuration")
	}
	ctx := context.Background()
	router := api.NewRouter(api.NewProductsFunction(ctx, cfg), api.NewImagesFunction(ctx, cfg))

	logger.Default().Infoln("listen on", *addr)
	if err := http.ListenAndServe(*addr, handlers.LoggingHandler(os.Stdout, router)); err != nil {
		logger.Default().WithError(err).Fatalln("Error 4604: server stopped")
	}
}
