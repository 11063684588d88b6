package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
)

// PharmacyHandler maneja las dispensas de medicamentos, el registro de
// controlados y su exportación regulatoria.
type PharmacyHandler struct {
	dispense *pharmacy.DispenseUseCase
	queries  *pharmacy.SaleQueryUseCase
	void     *pharmacy.VoidDispenseUseCase
	register *pharmacy.RegisterQueryUseCase
	export   *pharmacy.RegulatoryExportUseCase
}

// NewPharmacyHandler construye el handler.
func NewPharmacyHandler(
	dispense *pharmacy.DispenseUseCase,
	queries *pharmacy.SaleQueryUseCase,
	void *pharmacy.VoidDispenseUseCase,
	register *pharmacy.RegisterQueryUseCase,
	export *pharmacy.RegulatoryExportUseCase,
) *PharmacyHandler {
	return &PharmacyHandler{
		dispense: dispense,
		queries:  queries,
		void:     void,
		register: register,
		export:   export,
	}
}

// Dispense godoc
// @Summary      Dispensar medicamentos
// @Description  Asigna lotes por FEFO (primero el que vence antes), exige
// @Description  datos de receta para medicamentos controlados y asienta cada
// @Description  controlado en el registro, todo en una transacción.
// @Tags         pharmacy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePharmacySaleRequest  true  "Líneas, receta y pago"
// @Success      201   {object}  dto.PharmacySaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente en el primer lote"
// @Failure      422   {object}  dto.ErrorResponse  "Receta obligatoria"
// @Router       /api/v1/pharmacy-sales [post]
func (h *PharmacyHandler) Dispense(c *fiber.Ctx) error {
	var in dto.CreatePharmacySaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	if len(in.Items) == 0 {
		return badRequest(c, "VALIDATION", "items no puede estar vacío")
	}
	out, err := h.dispense.Dispense(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener dispensa por ID
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la dispensa"
// @Success      200  {object}  dto.PharmacySaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/pharmacy-sales/{id} [get]
func (h *PharmacyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queries.GetSale(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar dispensas de una tienda
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        status    query  string  false  "Filtrar por estado (completed, voided)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.PharmacySaleListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/pharmacy-sales [get]
func (h *PharmacyHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.queries.ListSales(storeIDFromRequest(c), from, to, c.Query("status"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular una dispensa
// @Description  Devuelve las unidades a sus lotes originales y asienta la
// @Description  devolución en el registro de controlados cuando corresponde.
// @Tags         pharmacy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la dispensa"
// @Param        body  body  dto.VoidSaleRequest  true  "Motivo de la anulación"
// @Success      200   {object}  dto.PharmacySaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "La dispensa ya está anulada"
// @Router       /api/v1/pharmacy-sales/{id}/void [post]
func (h *PharmacyHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Reason == "" {
		return badRequest(c, "VALIDATION", "reason es obligatorio")
	}
	out, err := h.void.VoidDispense(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RegisterByMedicine godoc
// @Summary      Registro de controlados por medicamento
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del medicamento"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.RegisterListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/medicines/{id}/register [get]
func (h *PharmacyHandler) RegisterByMedicine(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.register.ListByMedicine(c.Params("id"), from, to, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RegisterByBatch godoc
// @Summary      Registro de controlados por lote
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {array}  dto.RegisterEntryResponse
// @Router       /api/v1/batches/{id}/register [get]
func (h *PharmacyHandler) RegisterByBatch(c *fiber.Ctx) error {
	out, err := h.register.ListByBatch(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportRegister godoc
// @Summary      Exportar el registro de controlados en XML firmado
// @Description  Genera el documento del período con saldo por asiento y lo
// @Description  firma con el certificado de la tienda si está configurado.
// @Tags         pharmacy
// @Security     Bearer
// @Produce      application/xml
// @Param        from  query  string  true  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  true  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200   {file}    file
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/pharmacy/register/export [get]
func (h *PharmacyHandler) ExportRegister(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	if from == nil || to == nil {
		return badRequest(c, "VALIDATION", "from y to son obligatorios")
	}
	xmlBytes, filename, err := h.export.ExportRegisterXML(c.Context(), *from, *to)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(xmlBytes)
}
