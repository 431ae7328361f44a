// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package config holds the configuration of the data functions.

The configuration is decoded from the environment once per process instance and
passed explicitly into every handler call:

  cfg, err := config.FromEnvironment()

The database connection parameters come from two places: the secret store (when
DB_SECRET_ARN is set) and plain environment variables. MergeDatabase decides which
value wins.
*/
package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Configuration holds the configuration for the data functions
//
// use DB_HOST=localhost DB_USER=postgres DB_PASSWORD=docker DB_NAME=postgres DB_SSLMODE=disable
// for a local database
type Configuration struct {
	DBSecretARN string `env:"DB_SECRET_ARN" description:"ARN of the secret holding the database credentials"`
	DBHost      string `env:"DB_HOST" description:"database host, used when the secret does not provide one"`
	DBPort      int    `env:"DB_PORT,default=5432" description:"database port"`
	DBName      string `env:"DB_NAME,default=postgres" description:"database name"`
	DBUser      string `env:"DB_USER" description:"database user"`
	DBPassword  string `env:"DB_PASSWORD" description:"database password"`
	DBSSLMode   string `env:"DB_SSLMODE,default=require" description:"lib/pq sslmode"`
	DBSchema    string `env:"DB_SCHEMA,default=public" description:"schema of the catalog tables"`

	ImagesBucket string `env:"IMAGES_BUCKET" description:"bucket holding the dashboard images"`
	ImagesPrefix string `env:"IMAGES_PREFIX,default=images/" description:"key prefix of the images in the bucket"`
	AWSRegion    string `env:"AWS_REGION,default=us-east-1" description:"region of the bucket and the secret"`
	S3Endpoint   string `env:"S3_ENDPOINT" description:"custom S3 endpoint, e.g. for a local S3 emulator"`

	LogLevel string `env:"LOG_LEVEL,default=info" description:"logrus log level"`
	LogJSON  bool   `env:"LOG_JSON,default=true" description:"log as JSON"`

	AdminProductLimit    int           `env:"ADMIN_PRODUCT_LIMIT,default=10" description:"maximum number of products for admins"`
	StandardProductLimit int           `env:"STANDARD_PRODUCT_LIMIT,default=5" description:"maximum number of products for standard users"`
	StandardImageLimit   int           `env:"STANDARD_IMAGE_LIMIT,default=3" description:"number of images shown to standard users"`
	StandardCategories   string        `env:"STANDARD_CATEGORIES" description:"comma separated categories visible to standard users, defaults to DefaultCategories"`
	URLTTL               time.Duration `env:"URL_TTL,default=1h" description:"validity of signed image URLs"`
	ValidateResponses    bool          `env:"VALIDATE_RESPONSES,default=false" description:"validate response envelopes against the JSON schemas"`
}

// Default returns the configuration with all defaults applied and nothing else set.
func Default() Configuration {
	return Configuration{
		DBPort:               5432,
		DBName:               "postgres",
		DBSSLMode:            "require",
		DBSchema:             "public",
		ImagesPrefix:         "images/",
		AWSRegion:            "us-east-1",
		LogLevel:             "info",
		LogJSON:              true,
		AdminProductLimit:    10,
		StandardProductLimit: 5,
		StandardImageLimit:   3,
		URLTTL:               time.Hour,
	}
}

// FromEnvironment decodes the configuration from the environment
func FromEnvironment() (Configuration, error) {
	cfg := Configuration{}
	if err := envdecode.Decode(&cfg); err != nil {
		// envdecode refuses structs where no variable at all is set
		if err != envdecode.ErrNoTargetFieldsAreSet {
			return cfg, fmt.Errorf("cannot decode configuration: %w", err)
		}
		cfg = Default()
	}
	return cfg, nil
}

// Validate reports configurations the handlers cannot work with
func (c Configuration) Validate() error {
	var problems []string
	if c.AdminProductLimit <= 0 {
		problems = append(problems, "ADMIN_PRODUCT_LIMIT must be positive")
	}
	if c.StandardProductLimit <= 0 {
		problems = append(problems, "STANDARD_PRODUCT_LIMIT must be positive")
	}
	if c.StandardProductLimit >= c.AdminProductLimit {
		problems = append(problems, "STANDARD_PRODUCT_LIMIT must be less than ADMIN_PRODUCT_LIMIT")
	}
	if c.StandardImageLimit <= 0 {
		problems = append(problems, "STANDARD_IMAGE_LIMIT must be positive")
	}
	if c.URLTTL <= 0 {
		problems = append(problems, "URL_TTL must be positive")
	}
	if c.URLTTL > 7*24*time.Hour {
		problems = append(problems, "URL_TTL must not exceed 7 days")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DefaultCategories are the product categories visible to standard users unless
// STANDARD_CATEGORIES says otherwise
var DefaultCategories = []string{"Electronics", "Books"}

// Categories returns the categories visible to standard users
func (c Configuration) Categories() []string {
	if strings.TrimSpace(c.StandardCategories) == "" {
		return append([]string(nil), DefaultCategories...)
	}
	var categories []string
	for _, s := range strings.Split(c.StandardCategories, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			categories = append(categories, s)
		}
	}
	return categories
}

// Database holds the connection parameters of the relational store
type Database struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"dbname"`
	User     string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslmode,omitempty"`
}

// Database returns the connection parameters given by the environment
func (c Configuration) Database() Database {
	return Database{
		Host:     c.DBHost,
		Port:     c.DBPort,
		Name:     c.DBName,
		User:     c.DBUser,
		Password: c.DBPassword,
		SSLMode:  c.DBSSLMode,
	}
}

// DSN returns a lib/pq connection string
func (d Database) DSN() string {
	var parts []string
	add := func(k, v string) {
		if v == "" {
			return
		}
		parts = append(parts, k+"="+quote(v))
	}
	add("host", d.Host)
	if d.Port != 0 {
		add("port", strconv.Itoa(d.Port))
	}
	add("dbname", d.Name)
	add("user", d.User)
	add("password", d.Password)
	add("sslmode", d.SSLMode)
	add("connect_timeout", "5")
	return strings.Join(parts, " ")
}

// Redacted returns a description of the database without the password, for logging
func (d Database) Redacted() string {
	u := url.URL{Scheme: "postgres", Host: d.Host + ":" + strconv.Itoa(d.Port), Path: "/" + d.Name}
	if d.User != "" {
		u.User = url.User(d.User)
	}
	return u.String()
}

// quote escapes a value for the key/value form of a lib/pq connection string
func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// MergeDatabase merges the parameters from the secret store with those from the
// environment. A non-empty value from the secret store always wins.
func MergeDatabase(secret, env Database) Database {
	pick := func(s, e string) string {
		if s != "" {
			return s
		}
		return e
	}
	merged := Database{
		Host:     pick(secret.Host, env.Host),
		Name:     pick(secret.Name, env.Name),
		User:     pick(secret.User, env.User),
		Password: pick(secret.Password, env.Password),
		SSLMode:  pick(secret.SSLMode, env.SSLMode),
		Port:     env.Port,
	}
	if secret.Port != 0 {
		merged.Port = secret.Port
	}
	return merged
}

// SecretReader reads database parameters from a secret store
type SecretReader interface {
	ReadDatabase(ctx context.Context, secretID string) (Database, error)
}

// ResolveDatabase returns the effective database parameters. When DB_SECRET_ARN is
// set, the secret is read and merged over the environment values. Failing to read the
// secret is an error, the same as failing to reach the database.
func (c Configuration) ResolveDatabase(ctx context.Context, secrets SecretReader) (Database, error) {
	env := c.Database()
	if c.DBSecretARN == "" || secrets == nil {
		return env, nil
	}
	secret, err := secrets.ReadDatabase(ctx, c.DBSecretARN)
	if err != nil {
		return env, fmt.Errorf("cannot read database secret: %w", err)
	}
	return MergeDatabase(secret, env), nil
}
