// import_catalog importa el catálogo desde archivos CSV exportados del
// sistema anterior, directamente contra la base de datos.
//
// Uso: go run ./cmd/import_catalog -type products -file productos.csv [-store <id>] [-latin1]
//
// Para products el store es obligatorio; sin -store usa la tienda default.
// Para medicines el catálogo es global y -store se ignora.
// Con -latin1 el archivo se decodifica como ISO-8859-1 (exportes de Excel viejos).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
	"github.com/jhoicas/Farmapos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmapos-api/pkg/config"
)

func main() {
	var (
		filePath = flag.String("file", "", "ruta del archivo CSV")
		kind     = flag.String("type", "products", "qué importar: products o medicines")
		storeID  = flag.String("store", "", "ID de la tienda (solo products; default: tienda default)")
		latin1   = flag.Bool("latin1", false, "el archivo está en ISO-8859-1 en vez de UTF-8")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "-file es obligatorio")
		flag.Usage()
		os.Exit(2)
	}
	if *kind != "products" && *kind != "medicines" {
		fmt.Fprintf(os.Stderr, "-type desconocido: %s (products o medicines)\n", *kind)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	medicineRepo := postgres.NewMedicineRepository(pool)
	importUC := usecase.NewImportUseCase(productRepo, medicineRepo)

	f, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var result *dto.ImportResultResponse
	switch *kind {
	case "products":
		target := *storeID
		if target == "" {
			storeRepo := postgres.NewStoreRepository(pool)
			store, err := storeRepo.GetDefault()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Obtener tienda default: %v\n", err)
				os.Exit(1)
			}
			if store == nil {
				fmt.Fprintln(os.Stderr, "No hay tienda default; indique -store")
				os.Exit(1)
			}
			target = store.ID
		}
		result, err = importUC.ImportProductsCSV(target, f, *latin1)
	case "medicines":
		result, err = importUC.ImportMedicinesCSV(f, *latin1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importación terminada: %d creados, %d actualizados, %d omitidos\n",
		result.Created, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
