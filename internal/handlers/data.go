package handlers

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/cheatday/planner/pkg/models"
	plansync "github.com/cheatday/planner/pkg/sync"
	"github.com/cheatday/planner/pkg/tracing"
)

// DataHandler handles loading and saving the plan document
type DataHandler struct {
	controller *plansync.Controller
}

// NewDataHandler creates a new data handler
func NewDataHandler(controller *plansync.Controller) *DataHandler {
	return &DataHandler{controller: controller}
}

// SaveDataRequest is the request body for saving the plan document
type SaveDataRequest struct {
	Data json.RawMessage `json:"data"`
}

// RegisterRoutes registers the data routes
func (h *DataHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/data", h.GetData)
	g.POST("/data", h.SaveData)
}

// GetData handles GET /data. Absent data returns {"data": null} so the
// client can seed a fresh document.
func (h *DataHandler) GetData(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DataHandler.GetData")
	defer span.End()

	set, err := h.controller.Hydrate(ctx)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]any{"data": set})
}

// SaveData handles POST /data. The document is written as-is; the client
// owns its shape beyond being valid JSON for a plan set.
func (h *DataHandler) SaveData(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DataHandler.SaveData")
	defer span.End()

	var req SaveDataRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if len(req.Data) == 0 {
		return BadRequest("data is required")
	}

	var set models.PlanSet
	if err := json.Unmarshal(req.Data, &set); err != nil {
		return BadRequest("data is not a valid plan document")
	}

	if err := h.controller.Save(ctx, set); err != nil {
		return err
	}

	return SuccessResponse(c, map[string]any{"success": true})
}
