package controllers

import (
	"net/http"

	gql "github.com/graphql-go/graphql"

	appgraphql "github.com/emberwick/storefront/app/graphql"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/ctx"
)

// GraphQLController serves the catalog query schema on a single POST
// endpoint.
type GraphQLController struct {
	schema gql.Schema
}

func NewGraphQLController(catalog *services.CatalogService) (*GraphQLController, error) {
	schema, err := appgraphql.NewSchema(catalog)
	if err != nil {
		return nil, err
	}
	return &GraphQLController{schema: schema}, nil
}

type graphqlRequest struct {
	Query         string                 `json:"query" validate:"required"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Query executes one GraphQL request. Query errors come back in the
// standard "errors" array with a 200, as GraphQL clients expect.
func (gc *GraphQLController) Query(c *ctx.Context) {
	var in graphqlRequest
	if !c.BindJSON(&in) {
		return
	}

	result := gql.Do(gql.Params{
		Schema:         gc.schema,
		RequestString:  in.Query,
		OperationName:  in.OperationName,
		VariableValues: in.Variables,
		Context:        c.Context(),
	})
	c.JSON(http.StatusOK, result)
}
