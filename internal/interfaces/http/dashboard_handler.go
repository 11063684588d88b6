package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/analytics"
)

// DashboardHandler maneja el resumen operativo de la tienda.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del día y del mes en curso de la tienda.
// GET /api/v1/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (today_sales, month_sales, top_products[5],
// low_stock_count, expiring_batch_count, date_label).
// Las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.Context(), storeIDFromRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
