package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/sales"
)

// SaleHandler maneja las ventas retail de punto de venta.
type SaleHandler struct {
	create  *sales.CreateSaleUseCase
	queries *sales.SaleQueryUseCase
	void    *sales.VoidSaleUseCase
	pdf     *sales.PDFUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(
	create *sales.CreateSaleUseCase,
	queries *sales.SaleQueryUseCase,
	void *sales.VoidSaleUseCase,
	pdf *sales.PDFUseCase,
) *SaleHandler {
	return &SaleHandler{create: create, queries: queries, void: void, pdf: pdf}
}

// Create godoc
// @Summary      Registrar una venta
// @Description  Valida stock y precios, descuenta inventario vía el libro de
// @Description  movimientos y registra el pago, todo en una transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas y pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente"
// @Router       /api/v1/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	if len(in.Items) == 0 {
		return badRequest(c, "VALIDATION", "items no puede estar vacío")
	}
	out, err := h.create.CreateSale(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queries.GetSale(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas de una tienda
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (por defecto la del token)"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        status    query  string  false  "Filtrar por estado (completed, voided)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.SaleListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
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
// @Summary      Anular una venta
// @Description  Restaura el stock con movimientos de devolución y marca la
// @Description  venta como anulada. La anulación no se puede revertir.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la venta"
// @Param        body  body  dto.VoidSaleRequest   true  "Motivo de la anulación"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "La venta ya está anulada"
// @Router       /api/v1/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Reason == "" {
		return badRequest(c, "VALIDATION", "reason es obligatorio")
	}
	out, err := h.void.VoidSale(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar el ticket de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/sales/{id}/pdf [get]
func (h *SaleHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadSalePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}
