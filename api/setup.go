// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package api

import (
	"context"
	"fmt"

	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/kss"
	"github.com/relabs-tech/showcase/core/logger"
	"github.com/relabs-tech/showcase/core/secrets"
)

// LoadConfiguration decodes the configuration from the environment and initializes
// the logger. On error the defaults are returned together with the error, so the
// caller can still build a handler which answers with a 500.
func LoadConfiguration() (config.Configuration, error) {
	cfg, err := config.FromEnvironment()
	if err != nil {
		logger.InitLogger(logger.ParseLevel("info"), true)
		return config.Default(), err
	}
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	return cfg, nil
}

// NewProductsFunction builds the products handler with its cloud dependencies. The
// secret store client is only created when DB_SECRET_ARN is set.
func NewProductsFunction(ctx context.Context, cfg config.Configuration) *Handler {
	var reader config.SecretReader
	if cfg.DBSecretARN != "" {
		awsConfig, err := kss.LoadAWSConfig(ctx, cfg.AWSRegion, "", "")
		if err != nil {
			return NewProductsHandler(cfg, nil).WithSetupError(fmt.Errorf("cannot load AWS configuration: %w", err))
		}
		reader = secrets.NewFromConfig(awsConfig)
	}
	return NewProductsHandler(cfg, DatabaseOpener(cfg, reader))
}

// NewImagesFunction builds the images handler with its cloud dependencies. A missing
// bucket is a configuration defect.
func NewImagesFunction(ctx context.Context, cfg config.Configuration) *Handler {
	driver, err := kss.NewS3(ctx, kss.S3Configuration{
		AWSBucketName: cfg.ImagesBucket,
		AWSRegion:     cfg.AWSRegion,
		Endpoint:      cfg.S3Endpoint,
	})
	if err != nil {
		return NewImagesHandler(cfg, nil).WithSetupError(fmt.Errorf("cannot create object store client (IMAGES_BUCKET=%q): %w", cfg.ImagesBucket, err))
	}
	return NewImagesHandler(cfg, driver)
}
