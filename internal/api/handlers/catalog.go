package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/domain"
)

// CatalogResponse is the storefront's view of the catalog. Formulas, option
// prices and margin settings stay server-side.
type CatalogResponse struct {
	Shapes   []ShapeView                     `json:"shapes"`
	Options  map[domain.Section][]OptionView `json:"options"`
	Sections domain.SectionVisibility        `json:"sections,omitempty"`
	Pieces   []domain.PieceConfig            `json:"pieces,omitempty"`
}

type ShapeView struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Is2D         bool                    `json:"is_2d"`
	EnablePanels bool                    `json:"enable_panels"`
	InputFields  []domain.DimensionField `json:"input_fields"`
}

type OptionView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Weatherproof bool   `json:"weatherproof,omitempty"`
}

// NewCatalogResponse builds the public catalog view
func NewCatalogResponse(cat *catalog.Catalog) CatalogResponse {
	resp := CatalogResponse{
		Shapes:   make([]ShapeView, 0, len(cat.Shapes)),
		Options:  make(map[domain.Section][]OptionView, len(cat.Options)),
		Sections: cat.Sections,
		Pieces:   cat.Pieces,
	}
	for _, s := range cat.Shapes {
		resp.Shapes = append(resp.Shapes, ShapeView{
			ID:           s.ID,
			Name:         s.Name,
			Is2D:         s.Is2D,
			EnablePanels: s.EnablePanels,
			InputFields:  s.InputFields,
		})
	}
	for section, opts := range cat.Options {
		views := make([]OptionView, 0, len(opts))
		for _, o := range opts {
			views = append(views, OptionView{ID: o.ID, Name: o.Name, Weatherproof: o.Weatherproof})
		}
		resp.Options[section] = views
	}
	return resp
}

// HandleGetCatalog handles GET /v1/catalog
func HandleGetCatalog(cat *catalog.Catalog) gin.HandlerFunc {
	resp := NewCatalogResponse(cat)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}
