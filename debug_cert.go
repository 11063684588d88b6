package main

import (
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/infrastructure/qz"
)

func main() {
	// 1. Rutas copiadas EXACTAMENTE de tu .env (QZ_CERT_PATH / QZ_KEY_PATH)
	certPath := os.Getenv("QZ_CERT_PATH")
	keyPath := os.Getenv("QZ_KEY_PATH")
	if len(os.Args) > 1 {
		certPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		keyPath = os.Args[2]
	}

	fmt.Println("🔍 DIAGNÓSTICO DEL CERTIFICADO DE LA TIENDA")
	fmt.Println("-------------------------------------------")
	if certPath == "" {
		fmt.Println("❌ QZ_CERT_PATH vacío. Expórtalo o pásalo como argumento:")
		fmt.Println("   go run ./debug_cert.go certs/store.crt.pem certs/store.key.pem")
		return
	}
	fmt.Printf("📂 Certificado: %s\n", certPath)
	fmt.Printf("🔑 Llave:       %s\n", keyPath)

	// 2. Intentar leer el archivo (File System Check)
	if _, err := os.ReadFile(certPath); err != nil {
		fmt.Println("\n❌ ERROR DE ARCHIVO:")
		fmt.Printf("   Go no puede encontrar o abrir el certificado.\n")
		fmt.Printf("   Detalle técnico: %v\n", err)
		return
	}

	// 3. Intentar cargar el par cert+key (Key Pair Check)
	fmt.Println("\n🔐 Intentando cargar el par certificado/llave...")
	cert, err := qz.LoadCertFromPEM(certPath, keyPath)
	if err != nil {
		fmt.Println("\n❌ ERROR DE FORMATO O DE LLAVE:")
		fmt.Printf("   El archivo existe pero el par PEM no carga (¿llave equivocada?).\n")
		fmt.Printf("   Detalle técnico: %v\n", err)
		return
	}

	// 4. Vigencia
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		fmt.Printf("\n❌ No se pudo parsear el certificado: %v\n", err)
		return
	}
	fmt.Printf("✅ Par cargado. Sujeto: %s\n", leaf.Subject.CommonName)
	fmt.Printf("   Vigente desde %s hasta %s\n",
		leaf.NotBefore.Format("2006-01-02"), leaf.NotAfter.Format("2006-01-02"))
	if time.Now().After(leaf.NotAfter) {
		fmt.Println("\n❌ El certificado está VENCIDO. QZ Tray va a rechazar la firma.")
		return
	}

	fmt.Println("\n✨ ¡ÉXITO! El certificado y la llave son correctos.")
	fmt.Println("   El problema NO es el archivo, es cómo tu app carga el .env.")
}
