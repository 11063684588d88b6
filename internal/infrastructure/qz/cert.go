package qz

import (
	"crypto/tls"
	"fmt"
)

// LoadCertFromPEM carga el certificado y la llave privada desde archivos PEM.
// Si certPath está vacío retorna cert vacío y err nil (firma deshabilitada).
func LoadCertFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, nil
	}
	if keyPath == "" {
		// Un solo archivo puede contener cert+key en PEM
		return tls.LoadX509KeyPair(certPath, certPath)
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("cargar certificado de la tienda: %w", err)
	}
	return cert, nil
}
