//go:build integration

package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/relabs-tech/showcase/api"
	"github.com/relabs-tech/showcase/catalog"
	"github.com/relabs-tech/showcase/core/access"
)

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(catalog.Migrate(context.Background(), s.db, testSchema))
}

func (s *IntegrationTestSuite) TestStoreFetch() {
	ctx := context.Background()
	store := catalog.NewStore(api.DatabaseOpener(s.cfg, nil), testSchema, api.ProductPolicy(s.cfg))

	admin, err := store.Fetch(ctx, access.Claims{Email: adminEmail, Groups: []string{"Admin"}}, access.Admin)
	s.Require().NoError(err)
	s.Len(admin.Products, 8)
	s.Require().NotNil(admin.User)
	s.Equal("Ada Admin", admin.User.DisplayName)

	standard, err := store.Fetch(ctx, access.Claims{Email: "user@example.com"}, access.Standard)
	s.Require().NoError(err)
	s.NotEmpty(standard.Products)
	s.LessOrEqual(len(standard.Products), s.cfg.StandardProductLimit)
	for _, p := range standard.Products {
		s.Contains(s.cfg.Categories(), p.Category)
	}
	s.Nil(standard.User)
}

func (s *IntegrationTestSuite) TestProductsHandlerLive() {
	cfg := s.cfg
	cfg.ValidateResponses = true
	h := api.NewProductsHandler(cfg, api.DatabaseOpener(cfg, nil))

	status, body := h.Serve(context.Background(), access.Claims{Email: adminEmail, Groups: []string{"Admin"}})
	s.Require().Equal(http.StatusOK, status, string(body))

	var r struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Metadata struct {
			Source     string `json:"source"`
			TotalCount int    `json:"totalCount"`
		} `json:"metadata"`
	}
	s.Require().NoError(json.Unmarshal(body, &r))
	s.Equal("live", r.Metadata.Source)
	s.Equal(8, r.Metadata.TotalCount)
	s.Equal("Ada Admin", r.User.Name)
}
