package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
)

// ReportHandler maneja los reportes de ventas y de inventario.
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// reportRange resuelve el período del reporte. Sin parámetros el período es
// el mes en curso: primer día del mes hasta ahora.
func reportRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, to, err := parseDateRange(c)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := time.Now()
	if from == nil {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		from = &first
	}
	if to == nil {
		to = &now
	}
	return *from, *to, nil
}

// SalesSummary godoc
// @Summary      Resumen de ventas del período
// @Description  Totales de ambos canales (retail y farmacia), descuentos,
// @Description  impuestos, anulaciones y ticket promedio.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD). Default: primer día del mes."
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive). Default: hoy."
// @Success      200       {object}  dto.SalesSummaryResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *fiber.Ctx) error {
	from, to, err := reportRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.uc.SalesSummary(c.Context(), storeIDFromRequest(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Productos minoristas más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD). Default: primer día del mes."
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive). Default: hoy."
// @Param        limit     query  int     false  "Máx. productos (default 10, max 100)"
// @Success      200       {array}   dto.TopItemDTO
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	from, to, err := reportRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.uc.TopProducts(c.Context(), storeIDFromRequest(c), from, to, c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopMedicines godoc
// @Summary      Medicamentos más dispensados
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD). Default: primer día del mes."
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive). Default: hoy."
// @Param        limit     query  int     false  "Máx. medicamentos (default 10, max 100)"
// @Success      200       {array}   dto.TopItemDTO
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/reports/top-medicines [get]
func (h *ReportHandler) TopMedicines(c *fiber.Ctx) error {
	from, to, err := reportRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.uc.TopMedicines(c.Context(), storeIDFromRequest(c), from, to, c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PaymentBreakdown godoc
// @Summary      Recaudo por medio de pago
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD). Default: primer día del mes."
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive). Default: hoy."
// @Success      200       {array}   dto.PaymentBreakdownDTO
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/reports/payments [get]
func (h *ReportHandler) PaymentBreakdown(c *fiber.Ctx) error {
	from, to, err := reportRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.uc.PaymentBreakdown(c.Context(), storeIDFromRequest(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExpiringBatches godoc
// @Summary      Lotes vencidos o próximos a vencer
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days    query  int  false  "Ventana en días (default 30)"
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.ExpiringBatchDTO
// @Router       /api/v1/reports/expiring-batches [get]
func (h *ReportHandler) ExpiringBatches(c *fiber.Ctx) error {
	out, err := h.uc.ExpiringBatches(c.QueryInt("days"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
