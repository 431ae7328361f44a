//go:build integration

// Package test holds the integration tests. They need a docker daemon and run with
//
//	go test -tags integration ./test/...
package test

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/relabs-tech/showcase/catalog"
	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/csql"
)

// IntegrationTestSuite runs the tests against a Postgres container seeded the same
// way the seed command seeds a fresh environment
type IntegrationTestSuite struct {
	suite.Suite
	postgresContainer testcontainers.Container
	cfg               config.Configuration
	db                *sql.DB
}

const (
	postgresUser     = "testuser"
	postgresPassword = "testpass"
	postgresDB       = "testdb"
	testSchema       = "showcase"
	adminEmail       = "admin@example.com"
)

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	s.Require().NoError(err)
	s.postgresContainer = pgC

	pgHost, err := pgC.Host(ctx)
	s.Require().NoError(err)
	pgPort, err := pgC.MappedPort(ctx, "5432")
	s.Require().NoError(err)

	s.cfg = config.Default()
	s.cfg.DBHost = pgHost
	s.cfg.DBPort, err = strconv.Atoi(pgPort.Port())
	s.Require().NoError(err)
	s.cfg.DBUser = postgresUser
	s.cfg.DBPassword = postgresPassword
	s.cfg.DBName = postgresDB
	s.cfg.DBSSLMode = "disable"
	s.cfg.DBSchema = testSchema

	s.db, err = csql.Open(ctx, s.cfg.Database().DSN())
	s.Require().NoError(err)
	s.Require().NoError(catalog.Migrate(ctx, s.db, testSchema))
	_, err = catalog.Seed(ctx, s.db, testSchema, []catalog.SeedUser{{Email: adminEmail, DisplayName: "Ada Admin", Role: "admin"}})
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	if s.db != nil {
		s.db.Close()
	}
	if s.postgresContainer != nil {
		if err := s.postgresContainer.Terminate(ctx); err != nil {
			fmt.Println("cannot terminate postgres container:", err)
		}
	}
}
