// seed_catalog genera un script SQL de siembra del catálogo de medicamentos
// a partir de un CSV exportado del sistema anterior, para entornos donde la
// carga inicial se aplica como migración en vez de contra la API.
//
// Uso: go run ./cmd/seed_catalog -file medicamentos.csv [-latin1]
// Escribe: internal/infrastructure/postgres/migrations/003_seed_medicines.sql
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func main() {
	var (
		filePath = flag.String("file", "", "ruta del archivo CSV")
		latin1   = flag.Bool("latin1", false, "el archivo está en ISO-8859-1 en vez de UTF-8")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "-file es obligatorio")
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var src io.Reader = f
	if *latin1 {
		src = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	if len(records) < 2 {
		fmt.Fprintln(os.Stderr, "El CSV no tiene filas de datos")
		os.Exit(1)
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["sku"]; !ok {
		fmt.Fprintln(os.Stderr, "Falta la columna sku")
		os.Exit(1)
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "003_seed_medicines.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de medicamentos (siembra inicial)\n")
	out.WriteString("-- Generado desde " + filepath.Base(*filePath) + " por cmd/seed_catalog\n\n")

	written, skipped := 0, 0
	for n, row := range records[1:] {
		line := n + 2
		sku := cell(row, "sku")
		brand := cell(row, "brand_name")
		if sku == "" || brand == "" {
			fmt.Fprintf(os.Stderr, "fila %d: sku y brand_name son obligatorios\n", line)
			skipped++
			continue
		}
		schedule := cell(row, "schedule")
		if schedule == "" {
			schedule = entity.ScheduleOTC
		}
		if !entity.ValidSchedule(schedule) {
			fmt.Fprintf(os.Stderr, "fila %d: clasificación desconocida: %s\n", line, schedule)
			skipped++
			continue
		}
		medicineType := cell(row, "medicine_type")
		if medicineType == "" {
			medicineType = entity.MedicineTypeGeneric
		}
		buying, err := parsePrice(cell(row, "buying_price"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "fila %d: buying_price inválido\n", line)
			skipped++
			continue
		}
		selling, err := parsePrice(cell(row, "selling_price"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "fila %d: selling_price inválido\n", line)
			skipped++
			continue
		}
		minStock, err := parseLevel(cell(row, "min_stock_level"), 10)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fila %d: min_stock_level inválido\n", line)
			skipped++
			continue
		}
		reorder, err := parseLevel(cell(row, "reorder_level"), 20)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fila %d: reorder_level inválido\n", line)
			skipped++
			continue
		}

		fmt.Fprintf(out, "INSERT INTO medicines (id, brand_name, generic_name, medicine_type, sku, barcode, schedule,\n")
		fmt.Fprintf(out, "    dosage_form, strength, manufacturer, buying_price, selling_price, min_stock_level, reorder_level)\n")
		fmt.Fprintf(out, "VALUES (gen_random_uuid(), '%s', '%s', '%s', '%s', NULLIF('%s', ''), '%s',\n",
			escapeSQL(brand), escapeSQL(cell(row, "generic_name")), escapeSQL(medicineType),
			escapeSQL(sku), escapeSQL(cell(row, "barcode")), schedule)
		fmt.Fprintf(out, "    '%s', '%s', '%s', %s, %s, %d, %d)\n",
			escapeSQL(cell(row, "dosage_form")), escapeSQL(cell(row, "strength")),
			escapeSQL(cell(row, "manufacturer")), buying.StringFixed(2), selling.StringFixed(2),
			minStock, reorder)
		out.WriteString("ON CONFLICT (sku) DO UPDATE SET\n")
		out.WriteString("    brand_name = EXCLUDED.brand_name, generic_name = EXCLUDED.generic_name,\n")
		out.WriteString("    schedule = EXCLUDED.schedule, buying_price = EXCLUDED.buying_price,\n")
		out.WriteString("    selling_price = EXCLUDED.selling_price, updated_at = now();\n\n")
		written++
	}

	fmt.Printf("Generado %s: %d medicamentos, %d filas omitidas\n", outPath, written, skipped)
	if skipped > 0 {
		os.Exit(1)
	}
}

// parsePrice acepta coma o punto decimal; vacío cuenta como cero.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// parseLevel entero con valor por defecto cuando viene vacío o cero.
func parseLevel(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, err
	}
	n := d.IntPart()
	if n == 0 {
		n = def
	}
	return n, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
