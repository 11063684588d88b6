package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
)

// ReceivingHandler maneja las recepciones de mercancía de farmacia.
type ReceivingHandler struct {
	uc *inventory.ReceivingUseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *inventory.ReceivingUseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar recepción de mercancía
// @Description  Crea o repone los lotes de cada línea en una sola transacción;
// @Description  los controlados asientan en el registro legal.
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceivingRequest  true  "Líneas de la recepción"
// @Success      201   {object}  dto.ReceivingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/receivings [post]
func (h *ReceivingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceivingRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	if len(in.Items) == 0 {
		return badRequest(c, "VALIDATION", "items no puede estar vacío")
	}
	out, err := h.uc.CreateReceiving(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener recepción por ID
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceivingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/receivings/{id} [get]
func (h *ReceivingHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReceiving(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recepciones de una tienda
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.ReceivingListResponse
// @Router       /api/v1/receivings [get]
func (h *ReceivingHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	out, err := h.uc.ListReceivings(storeIDFromRequest(c), from, to, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
