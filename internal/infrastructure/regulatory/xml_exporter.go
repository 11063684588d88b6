// Package regulatory construye el reporte XML del libro de sustancias
// controladas de un período y lo firma con el certificado de la tienda
// (firma enveloped, RSA-SHA256 sobre el documento canonicalizado).
package regulatory

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
)

// Namespaces y algoritmos XML-DSig.
const (
	NamespaceReport = "urn:farmapos:registro-controlados:v1"
	NamespaceDS     = "http://www.w3.org/2000/09/xmldsig#"

	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2000/09/xmldsig#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"

	// Id del elemento raíz, referenciado por la firma (Reference URI).
	reportElementID = "registro-controlados"
)

// XMLExporter implementa pharmacy.RegisterExporter.
type XMLExporter struct {
	cert tls.Certificate
}

// NewXMLExporter construye el exportador. Con certificado vacío el documento
// se emite sin firmar (modo desarrollo).
func NewXMLExporter(cert tls.Certificate) *XMLExporter {
	return &XMLExporter{cert: cert}
}

var _ pharmacy.RegisterExporter = (*XMLExporter)(nil)

// BuildAndSign arma el documento del período y le inyecta la firma digital.
func (e *XMLExporter) BuildAndSign(_ context.Context, from, to time.Time, entries []pharmacy.ExportEntry) ([]byte, error) {
	doc := buildReport(from, to, entries)

	unsigned, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("regulatory: serializar documento: %w", err)
	}
	if len(e.cert.Certificate) == 0 {
		return unsigned, nil
	}

	signatureXML, err := e.buildSignature(unsigned)
	if err != nil {
		return nil, err
	}

	// Inyectar ds:Signature como último hijo de la raíz.
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("regulatory: parsear nodo Signature: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		doc.Root().AddChild(sigRoot)
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("regulatory: serializar documento firmado: %w", err)
	}
	return out.Bytes(), nil
}

// buildReport arma el árbol del reporte con etree.
func buildReport(from, to time.Time, entries []pharmacy.ExportEntry) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("RegistroControlados")
	root.CreateAttr("xmlns", NamespaceReport)
	root.CreateAttr("Id", reportElementID)

	periodo := root.CreateElement("Periodo")
	periodo.CreateElement("Desde").SetText(from.Format("2006-01-02"))
	periodo.CreateElement("Hasta").SetText(to.Format("2006-01-02"))
	root.CreateElement("GeneradoEn").SetText(time.Now().UTC().Format(time.RFC3339))
	root.CreateElement("TotalAsientos").SetText(strconv.Itoa(len(entries)))

	asientos := root.CreateElement("Asientos")
	for _, entry := range entries {
		writeEntry(asientos, entry)
	}

	doc.Indent(2)
	return doc
}

// writeEntry serializa un asiento. Los campos vacíos se omiten.
func writeEntry(parent *etree.Element, exp pharmacy.ExportEntry) {
	e := exp.Entry

	a := parent.CreateElement("Asiento")
	a.CreateAttr("fecha", e.CreatedAt.UTC().Format(time.RFC3339))
	a.CreateAttr("tipo", e.TransactionType)

	med := a.CreateElement("Medicamento")
	med.CreateAttr("id", e.MedicineID)
	if exp.MedicineName != "" {
		med.CreateAttr("marca", exp.MedicineName)
	}
	if exp.GenericName != "" {
		med.CreateAttr("generico", exp.GenericName)
	}

	lote := a.CreateElement("Lote")
	lote.CreateAttr("id", e.BatchID)
	if exp.BatchNumber != "" {
		lote.CreateAttr("numero", exp.BatchNumber)
	}

	a.CreateElement("Cantidad").SetText(strconv.FormatInt(e.Quantity, 10))
	a.CreateElement("Saldo").SetText(strconv.FormatInt(e.Balance, 10))

	writeOptional(a, "Cliente", e.CustomerName)
	if e.PrescriptionNumber != "" || e.PrescriberName != "" {
		receta := a.CreateElement("Receta")
		if e.PrescriptionNumber != "" {
			receta.CreateAttr("numero", e.PrescriptionNumber)
		}
		if e.PrescriberName != "" {
			receta.CreateAttr("prescriptor", e.PrescriberName)
		}
	}
	writeOptional(a, "DispensadoPor", e.DispensedByID)
	writeOptional(a, "Testigo", e.WitnessedByID)
	writeOptional(a, "VentaFarmacia", e.PharmacySaleID)
	writeOptional(a, "Recepcion", e.ReceivingID)
	writeOptional(a, "Notas", e.Notes)
}

func writeOptional(parent *etree.Element, tag, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(tag).SetText(value)
}

// ── Firma ─────────────────────────────────────────────────────────────────────

// buildSignature genera el nodo ds:Signature del documento sin firma.
func (e *XMLExporter) buildSignature(unsigned []byte) (string, error) {
	priv, ok := e.cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return "", fmt.Errorf("regulatory: el certificado debe incluir llave privada RSA")
	}
	x509Cert, err := x509.ParseCertificate(e.cert.Certificate[0])
	if err != nil {
		return "", fmt.Errorf("regulatory: parsear certificado: %w", err)
	}

	// 1) Digest del documento canonicalizado (Reference URI="#registro-controlados").
	canonical, err := canonicalizeXML(unsigned)
	if err != nil {
		canonical = unsigned
	}
	docDigest := sha256.Sum256(canonical)
	signedInfoXML := buildSignedInfo(base64.StdEncoding.EncodeToString(docDigest[:]))

	// 2) Firmar SignedInfo canonicalizado con RSA-SHA256.
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return "", fmt.Errorf("regulatory: firmar SignedInfo: %w", err)
	}

	// 3) Nodo completo con KeyInfo (certificado en Base64).
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + base64.StdEncoding.EncodeToString(signatureValue) + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + base64.StdEncoding.EncodeToString(x509Cert.Raw) + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String(), nil
}

func buildSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="#` + reportElementID + `">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"/>`)
	sb.WriteString(`<ds:Transform Algorithm="` + AlgC14N + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
