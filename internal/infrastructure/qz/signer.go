// Package qz firma los retos de QZ Tray con el certificado de la tienda.
// QZ Tray exige una firma RSA-SHA256 (PKCS#1 v1.5) en Base64 del dato que
// envía como reto para autorizar la impresión silenciosa desde el navegador.
package qz

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"os"
)

// ChallengeSigner mantiene el certificado de la tienda y firma retos.
type ChallengeSigner struct {
	certPath string
	cert     tls.Certificate
}

// NewChallengeSigner carga el certificado desde disco. Con certPath vacío el
// firmador queda deshabilitado y los endpoints responden 404.
func NewChallengeSigner(certPath, keyPath string) (*ChallengeSigner, error) {
	cert, err := LoadCertFromPEM(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	return &ChallengeSigner{certPath: certPath, cert: cert}, nil
}

// Enabled indica si hay certificado configurado.
func (s *ChallengeSigner) Enabled() bool {
	return len(s.cert.Certificate) > 0
}

// Certificate expone el certificado cargado para otros firmadores (el
// exportador regulatorio usa la misma llave).
func (s *ChallengeSigner) Certificate() tls.Certificate {
	return s.cert
}

// CertificatePEM devuelve el certificado tal como está en disco, con su
// cadena si el archivo la incluye. QZ Tray lo consume como texto plano.
func (s *ChallengeSigner) CertificatePEM() ([]byte, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("qz: certificado no configurado")
	}
	pem, err := os.ReadFile(s.certPath)
	if err != nil {
		return nil, fmt.Errorf("qz: leer certificado: %w", err)
	}
	return pem, nil
}

// SignChallenge firma el reto con RSA-SHA256 y devuelve la firma en Base64.
func (s *ChallengeSigner) SignChallenge(data string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("qz: certificado no configurado")
	}
	priv, ok := s.cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return "", fmt.Errorf("qz: el certificado debe incluir llave privada RSA")
	}

	hash := sha256.Sum256([]byte(data))
	signature, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, hash[:])
	if err != nil {
		return "", fmt.Errorf("qz: firmar reto: %w", err)
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}
