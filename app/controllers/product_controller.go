package controllers

import (
	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/ctx"
)

// ProductController serves the catalog.
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index lists products. Exactly one filter applies per request: featured
// wins over category, category over search.
func (pc *ProductController) Index(c *ctx.Context) {
	filter := services.ProductFilter{
		Featured: c.Query("featured") == "true",
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	products, err := pc.catalog.Products(c.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(products)
}

// Show returns one product by id.
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	product, err := pc.catalog.Product(c.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(product)
}

type productInput struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description"`
	Price       string  `json:"price"       validate:"required"`
	Image       string  `json:"image"`
	Category    string  `json:"category"    validate:"required"`
	Featured    bool    `json:"featured"`
	InStock     *bool   `json:"inStock"`
	Scent       *string `json:"scent"`
	Size        string  `json:"size"`
	BurnTime    int     `json:"burnTime"`
	Ingredients string  `json:"ingredients"`
}

// Create adds a product to the catalog.
func (pc *ProductController) Create(c *ctx.Context) {
	var in productInput
	if !c.BindJSON(&in) {
		return
	}

	// A new product is in stock unless the payload says otherwise.
	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
		Featured:    in.Featured,
		InStock:     in.InStock == nil || *in.InStock,
		Scent:       in.Scent,
		Size:        in.Size,
		BurnTime:    in.BurnTime,
		Ingredients: in.Ingredients,
	}
	if err := pc.catalog.CreateProduct(c.Context(), &product); err != nil {
		respondErr(c, err)
		return
	}
	c.Created(product)
}
