package dictionary

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authrules/internal/logger"
	"authrules/internal/rules"
	"authrules/pkg/errors"
)

// Handler serves the dictionary data the rule builder UI needs: the
// standard field catalog, per-field value sets, and custom field
// templates.
type Handler struct {
	cache *Cache
	log   logger.Logger
}

func NewHandler(cache *Cache, log logger.Logger) *Handler {
	return &Handler{cache: cache, log: log}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		dict := v1.Group("/dictionary")
		{
			dict.GET("/catalog", h.GetCatalog)
			dict.GET("/fields", h.ListFieldValues)
			dict.GET("/fields/:field", h.GetFieldValues)
			dict.GET("/templates", h.ListTemplates)
			dict.POST("/refresh", h.Refresh)
		}
	}
}

// GetCatalog godoc
// @Summary      Get the standard field catalog
// @Description  List every standard field with its data type and allowed operators
// @Tags         dictionary
// @Produce      json
// @Success      200  {array}  rules.FieldDefinition
// @Router       /dictionary/catalog [get]
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, rules.StandardFields())
}

// ListFieldValues godoc
// @Summary      List all field value dictionaries
// @Tags         dictionary
// @Produce      json
// @Success      200  {array}  FieldValueSet
// @Router       /dictionary/fields [get]
func (h *Handler) ListFieldValues(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.AllFieldValues())
}

// GetFieldValues godoc
// @Summary      Get the value dictionary for a field
// @Tags         dictionary
// @Produce      json
// @Param        field  path      string  true  "Standard field name"
// @Success      200    {object}  FieldValueSet
// @Failure      404    {object}  errors.ErrorResponse
// @Router       /dictionary/fields/{field} [get]
func (h *Handler) GetFieldValues(c *gin.Context) {
	field := c.Param("field")
	set, ok := h.cache.FieldValues(field)
	if !ok {
		err := errors.ErrNotFound.WithDetail("field", field)
		c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, set)
}

// ListTemplates godoc
// @Summary      List custom field templates
// @Tags         dictionary
// @Produce      json
// @Success      200  {array}  CustomFieldTemplate
// @Router       /dictionary/templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Templates())
}

// Refresh godoc
// @Summary      Reload dictionary data
// @Description  Re-pull dictionaries from the backing store, bypassing cached snapshots
// @Tags         dictionary
// @Produce      json
// @Success      204  "No Content"
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /dictionary/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.cache.Refresh(c.Request.Context()); err != nil {
		h.log.ErrorwCtx(c.Request.Context(), "Dictionary refresh failed", "error", err)
		appErr := errors.ErrServiceUnavailable.WithCause(err)
		c.JSON(errors.ToHTTPStatus(appErr), errors.ToErrorResponse(appErr))
		return
	}
	c.Status(http.StatusNoContent)
}
