package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// BatchHandler maneja las operaciones sobre lotes de farmacia: consultas,
// ajustes, bloqueo y baja de vencidos.
type BatchHandler struct {
	admin  *inventory.BatchAdminUseCase
	ledger *inventory.BatchLedgerUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(admin *inventory.BatchAdminUseCase, ledger *inventory.BatchLedgerUseCase) *BatchHandler {
	return &BatchHandler{admin: admin, ledger: ledger}
}

// ListByMedicine godoc
// @Summary      Listar lotes de un medicamento en orden FEFO
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del medicamento"
// @Success      200  {object}  dto.BatchListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/medicines/{id}/batches [get]
func (h *BatchHandler) ListByMedicine(c *fiber.Ctx) error {
	out, err := h.admin.ListBatches(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.admin.GetBatch(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual sobre un lote
// @Description  Delta o cantidad absoluta contada; los controlados asientan
// @Description  también en el registro legal.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.AdjustBatchRequest  true  "delta o new_quantity, con notas"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id}/adjust [post]
func (h *BatchHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.admin.AdjustBatch(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Block godoc
// @Summary      Bloquear lote manualmente
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.BlockBatchRequest  true  "Motivo del bloqueo"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id}/block [post]
func (h *BatchHandler) Block(c *fiber.Ctx) error {
	var in dto.BlockBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Reason == "" {
		return badRequest(c, "VALIDATION", "reason es requerido")
	}
	out, err := h.admin.BlockBatch(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Unblock godoc
// @Summary      Desbloquear lote
// @Description  Un lote vencido no puede desbloquearse.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id}/unblock [post]
func (h *BatchHandler) Unblock(c *fiber.Ctx) error {
	out, err := h.admin.UnblockBatch(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Writeoff godoc
// @Summary      Dar de baja un lote vencido
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.WriteoffBatchRequest  true  "Notas y testigo"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id}/writeoff [post]
func (h *BatchHandler) Writeoff(c *fiber.Ctx) error {
	var in dto.WriteoffBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.admin.WriteoffExpired(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MedicineMovements godoc
// @Summary      Historial de movimientos de un medicamento
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del medicamento"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.MedicineMovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/v1/medicines/{id}/movements [get]
func (h *BatchHandler) MedicineMovements(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	page := parsePage(c)
	list, err := h.ledger.ListByMedicine(c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MedicineMovementListResponse{
		Items: toMedicineMovementResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// BatchMovements godoc
// @Summary      Historial de movimientos de un lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}  dto.MedicineMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/batches/{id}/movements [get]
func (h *BatchHandler) BatchMovements(c *fiber.Ctx) error {
	list, err := h.ledger.ListByBatch(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMedicineMovementResponses(list))
}

func toMedicineMovementResponses(list []*entity.MedicineStockMovement) []dto.MedicineMovementResponse {
	items := make([]dto.MedicineMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MedicineMovementResponse{
			ID:               m.ID,
			MedicineID:       m.MedicineID,
			BatchID:          m.BatchID,
			MovementType:     m.MovementType,
			Quantity:         m.Quantity,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			PharmacySaleID:   m.PharmacySaleID,
			ReceivingID:      m.ReceivingID,
			Reference:        m.Reference,
			Notes:            m.Notes,
			CreatedBy:        m.CreatedBy,
			CreatedAt:        m.CreatedAt,
		})
	}
	return items
}
