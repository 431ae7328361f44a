// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command data is the lambda serving the product catalog
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/relabs-tech/showcase/api"
	"github.com/relabs-tech/showcase/core/logger"
)

func main() {
	cfg, err := api.LoadConfiguration()
	handler := api.NewProductsFunction(context.Background(), cfg)
	if err != nil {
		logger.Default().WithError(err).Errorln("Error 4601: cannot load configuration")
		handler.WithSetupError(err)
	}
	lambda.Start(handler.HandleAPIGateway)
}
