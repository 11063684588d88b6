// Package docnum genera y valida los números de documento del sistema:
// facturas de farmacia (INV), ventas minoristas (SAL), recepciones de
// stock (RCV) y órdenes de compra (PO).
package docnum

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefijos de documento reconocidos.
const (
	PrefixInvoice       = "INV"
	PrefixSale          = "SAL"
	PrefixReceiving     = "RCV"
	PrefixPurchaseOrder = "PO"
)

var numberPattern = regexp.MustCompile(`^(INV|SAL|RCV|PO)-(\d{8})-([0-9A-F]{6,8})$`)

// Invoice genera un número de factura INV-YYYYMMDD-XXXXXXXX
// (fecha local + 8 caracteres hexadecimales de un UUID v4 en mayúsculas).
func Invoice(now time.Time) string {
	return build(PrefixInvoice, now, 8)
}

// Sale genera un número de venta minorista SAL-YYYYMMDD-XXXXXXXX.
func Sale(now time.Time) string {
	return build(PrefixSale, now, 8)
}

// Receiving genera un número de recepción RCV-YYYYMMDD-XXXXXX (sufijo de 6 caracteres).
func Receiving(now time.Time) string {
	return build(PrefixReceiving, now, 6)
}

// PurchaseOrder genera un número de orden de compra PO-YYYYMMDD-XXXXXX.
func PurchaseOrder(now time.Time) string {
	return build(PrefixPurchaseOrder, now, 6)
}

func build(prefix string, now time.Time, suffixLen int) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	suffix := strings.ToUpper(raw[:suffixLen])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// Validate verifica que un número de documento tenga forma válida y devuelve su prefijo.
func Validate(number string) (string, error) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return "", fmt.Errorf("docnum: número de documento inválido: %q", number)
	}
	if _, err := time.Parse("20060102", m[2]); err != nil {
		return "", fmt.Errorf("docnum: fecha inválida en número de documento %q", number)
	}
	return m[1], nil
}

// VoidReference devuelve la referencia usada por los movimientos de reversa de una anulación.
func VoidReference(invoiceNumber string) string {
	return "VOID-" + invoiceNumber
}
