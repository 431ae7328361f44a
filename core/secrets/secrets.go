// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package secrets reads the database credentials from AWS Secrets Manager
package secrets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/goccy/go-json"

	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/logger"
)

// Client is the part of the Secrets Manager API used by the Reader
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var _ Client = (*secretsmanager.Client)(nil)
var _ config.SecretReader = (*Reader)(nil)

// Reader reads database secrets
type Reader struct {
	client Client
}

// New returns a new Reader
func New(client Client) *Reader {
	return &Reader{client: client}
}

// NewFromConfig returns a Reader using a Secrets Manager client for the AWS configuration
func NewFromConfig(cfg aws.Config) *Reader {
	return New(secretsmanager.NewFromConfig(cfg))
}

// databaseSecret is the layout of a database secret as created by RDS. The port is a
// number there, but hand written secrets often have it as a string.
type databaseSecret struct {
	Host     string          `json:"host"`
	Port     json.RawMessage `json:"port"`
	DBName   string          `json:"dbname"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	SSLMode  string          `json:"sslmode"`
}

// ReadDatabase reads and decodes the database secret with the given id or ARN
func (r *Reader) ReadDatabase(ctx context.Context, secretID string) (config.Database, error) {
	rlog := logger.FromContext(ctx)
	rlog.Debugln("reading database secret", secretID)

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return config.Database{}, fmt.Errorf("cannot get secret value: %w", err)
	}
	if out.SecretString == nil {
		return config.Database{}, fmt.Errorf("secret %s has no string value", secretID)
	}
	return ParseDatabase([]byte(*out.SecretString))
}

// ParseDatabase decodes a database secret
func ParseDatabase(data []byte) (config.Database, error) {
	var s databaseSecret
	if err := json.Unmarshal(data, &s); err != nil {
		return config.Database{}, fmt.Errorf("cannot decode database secret: %w", err)
	}
	db := config.Database{
		Host:     s.Host,
		Name:     s.DBName,
		User:     s.Username,
		Password: s.Password,
		SSLMode:  s.SSLMode,
	}
	if port := strings.Trim(strings.TrimSpace(string(s.Port)), `"`); port != "" && port != "null" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return config.Database{}, fmt.Errorf("invalid port %q in database secret", port)
		}
		db.Port = p
	}
	return db, nil
}
