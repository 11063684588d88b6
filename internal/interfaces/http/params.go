package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
)

// parsePage lee limit/offset de la query con los defaults de PageRequest.
func parsePage(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	return page
}

// parseDate acepta YYYY-MM-DD o RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("fecha inválida: %q (se espera YYYY-MM-DD o RFC3339)", s)
}

// parseDateRange lee from/to de la query; vacíos significan sin filtro por ese
// extremo. Un "to" de solo fecha se extiende al final del día para que el
// rango sea inclusivo.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, err
		}
		if len(s) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Second)
		}
		to = &t
	}
	return from, to, nil
}

// storeIDFromRequest resuelve la tienda de la operación: query explícita o la
// del token.
func storeIDFromRequest(c *fiber.Ctx) string {
	if s := c.Query("store_id"); s != "" {
		return s
	}
	return GetStoreID(c)
}
