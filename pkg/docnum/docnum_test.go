package docnum

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func TestInvoice_Formato(t *testing.T) {
	n := Invoice(testDay)

	assert.True(t, strings.HasPrefix(n, "INV-20250314-"), "número generado: %s", n)
	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 8, "el sufijo de factura debe tener 8 caracteres")
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2], "el sufijo debe ir en mayúsculas")
}

func TestReceivingYPurchaseOrder_Formato(t *testing.T) {
	r := Receiving(testDay)
	p := PurchaseOrder(testDay)

	assert.True(t, strings.HasPrefix(r, "RCV-20250314-"))
	assert.True(t, strings.HasPrefix(p, "PO-20250314-"))
	assert.Len(t, strings.Split(r, "-")[2], 6)
	assert.Len(t, strings.Split(p, "-")[2], 6)
}

func TestSale_Formato(t *testing.T) {
	s := Sale(testDay)

	assert.True(t, strings.HasPrefix(s, "SAL-20250314-"))
	assert.Len(t, strings.Split(s, "-")[2], 8)

	prefix, err := Validate(s)
	assert.NoError(t, err)
	assert.Equal(t, PrefixSale, prefix)
}

func TestInvoice_SufijosNoRepetidos(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := Invoice(testDay)
		assert.False(t, seen[n], "número repetido: %s", n)
		seen[n] = true
	}
}

func TestValidate(t *testing.T) {
	prefix, err := Validate(Invoice(testDay))
	require.NoError(t, err)
	assert.Equal(t, PrefixInvoice, prefix)

	prefix, err = Validate(Receiving(testDay))
	require.NoError(t, err)
	assert.Equal(t, PrefixReceiving, prefix)

	_, err = Validate("FOO-20250314-ABCDEF")
	assert.Error(t, err, "prefijo desconocido debe rechazarse")

	_, err = Validate("INV-20251399-ABCDEF12")
	assert.Error(t, err, "fecha imposible debe rechazarse")

	_, err = Validate("INV-20250314-abcdef12")
	assert.Error(t, err, "sufijo en minúsculas debe rechazarse")
}

func TestVoidReference(t *testing.T) {
	assert.Equal(t, "VOID-INV-20250314-AABBCCDD", VoidReference("INV-20250314-AABBCCDD"))
}
