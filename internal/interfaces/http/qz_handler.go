package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/infrastructure/qz"
)

// QZHandler firma los retos de QZ Tray para que el navegador pueda imprimir
// tickets sin diálogo de confirmación. Ambos endpoints son públicos: QZ Tray
// los consulta antes de que el cajero inicie sesión.
type QZHandler struct {
	signer *qz.ChallengeSigner
}

// NewQZHandler construye el handler.
func NewQZHandler(signer *qz.ChallengeSigner) *QZHandler {
	return &QZHandler{signer: signer}
}

// Certificate godoc
// @Summary      Certificado público para QZ Tray
// @Tags         qz
// @Produce      plain
// @Success      200  {string}  string  "Certificado en PEM"
// @Failure      404  {object}  dto.ErrorResponse  "Firma QZ no configurada"
// @Router       /api/v1/qz/certificate [get]
func (h *QZHandler) Certificate(c *fiber.Ctx) error {
	if !h.signer.Enabled() {
		return notFound(c, "firma QZ no configurada")
	}
	pem, err := h.signer.CertificatePEM()
	if err != nil {
		return notFound(c, "firma QZ no configurada")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(pem)
}

// Sign godoc
// @Summary      Firmar un reto de QZ Tray
// @Tags         qz
// @Produce      json
// @Param        data  query  string  true  "Reto a firmar"
// @Success      200   {object}  map[string]string  "signature en base64"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse  "Firma QZ no configurada"
// @Router       /api/v1/qz/sign [get]
func (h *QZHandler) Sign(c *fiber.Ctx) error {
	if !h.signer.Enabled() {
		return notFound(c, "firma QZ no configurada")
	}
	data := c.Query("data")
	if data == "" {
		return badRequest(c, "VALIDATION", "data es obligatorio")
	}
	signature, err := h.signer.SignChallenge(data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"signature": signature})
}
