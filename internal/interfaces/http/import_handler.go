package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
)

// ImportHandler maneja la carga masiva de catálogo desde archivos CSV.
type ImportHandler struct {
	uc *usecase.ImportUseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *usecase.ImportUseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// ImportProducts godoc
// @Summary      Importar productos desde CSV
// @Description  Carga masiva del catálogo retail. Filas con error se reportan
// @Description  por número de línea sin abortar el resto del archivo.
// @Tags         import
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file      formData  file    true   "Archivo CSV"
// @Param        store_id  query     string  false  "Tienda (por defecto la del token)"
// @Param        latin1    query     bool    false  "El archivo está en Latin-1 en vez de UTF-8"
// @Success      200       {object}  dto.ImportResultResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/v1/import/products [post]
func (h *ImportHandler) ImportProducts(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "VALIDATION", "file es obligatorio")
	}
	f, err := header.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", "no se pudo leer el archivo")
	}
	defer f.Close()

	out, err := h.uc.ImportProductsCSV(storeIDFromRequest(c), f, c.QueryBool("latin1"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ImportMedicines godoc
// @Summary      Importar medicamentos desde CSV
// @Description  Carga masiva del catálogo farmacéutico. El catálogo de
// @Description  medicamentos es global, no requiere tienda.
// @Tags         import
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        file    formData  file  true   "Archivo CSV"
// @Param        latin1  query     bool  false  "El archivo está en Latin-1 en vez de UTF-8"
// @Success      200     {object}  dto.ImportResultResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/import/medicines [post]
func (h *ImportHandler) ImportMedicines(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "VALIDATION", "file es obligatorio")
	}
	f, err := header.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", "no se pudo leer el archivo")
	}
	defer f.Close()

	out, err := h.uc.ImportMedicinesCSV(f, c.QueryBool("latin1"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
