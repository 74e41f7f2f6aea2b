// Package graphql exposes a read-only GraphQL view of the catalog,
// mirroring the REST product filters.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/services"
	pkggraphql "github.com/emberwick/storefront/pkg/graphql"
)

func productType() *gql.Object {
	return gql.NewObject(gql.ObjectConfig{
		Name: "Product",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.Int,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return int(p.Source.(models.Product).ID), nil
				},
			},
			"name":        &gql.Field{Type: gql.String},
			"description": &gql.Field{Type: gql.String},
			"price":       &gql.Field{Type: gql.String},
			"image":       &gql.Field{Type: gql.String},
			"category":    &gql.Field{Type: gql.String},
			"featured":    &gql.Field{Type: gql.Boolean},
			"inStock":     &gql.Field{Type: gql.Boolean},
			"scent":       &gql.Field{Type: gql.String},
			"size":        &gql.Field{Type: gql.String},
			"burnTime":    &gql.Field{Type: gql.Int},
			"ingredients": &gql.Field{Type: gql.String},
		},
	})
}

// NewSchema builds the query schema over the catalog service.
func NewSchema(catalog *services.CatalogService) (gql.Schema, error) {
	product := productType()

	root := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(product),
				Args: gql.FieldConfigArgument{
					"featured": &gql.ArgumentConfig{Type: gql.Boolean},
					"category": &gql.ArgumentConfig{Type: gql.String},
					"search":   &gql.ArgumentConfig{Type: gql.String},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					filter := services.ProductFilter{}
					if v, ok := p.Args["featured"].(bool); ok {
						filter.Featured = v
					}
					if v, ok := p.Args["category"].(string); ok {
						filter.Category = v
					}
					if v, ok := p.Args["search"].(string); ok {
						filter.Search = v
					}
					return catalog.Products(p.Context, filter)
				},
			},
			"product": &gql.Field{
				Type: product,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					return catalog.Product(p.Context, uint(id))
				},
			},
		},
	})

	return pkggraphql.NewSchema(root)
}
