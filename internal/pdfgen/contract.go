// internal/pdfgen/contract.go
package pdfgen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// UsageLimits are the numeric caps of a templated (non-custom) license. A
// negative value means unlimited; zero means the limit was never defined and
// renders as "No definido".
type UsageLimits struct {
	Streams       int64 `json:"streams"`
	Copies        int64 `json:"copies"`
	MusicVideos   int64 `json:"music_videos"`
	RadioStations int64 `json:"radio_stations"`
}

// ContractData is everything the renderer needs to certify a license grant.
// Identity fields (producer, buyer, product) are required; rendering fails
// fast rather than producing a contract with blank parties.
type ContractData struct {
	OrderID         string
	TransactionDate string
	LicenseType     string
	ProductName     string
	Price           float64
	Currency        string
	ProducerName    string
	ProducerEmail   string
	BuyerName       string
	BuyerEmail      string

	IsCustomText      bool
	CustomText        string
	IncludeProClauses bool
	Limits            *UsageLimits
}

// SecurityHash is the contract's content-integrity fingerprint: the SHA-256
// hex digest of "orderId-buyerEmail-transactionDate". It is reproducible by
// anyone holding the three inputs and exists for human-visible traceability.
// It is NOT a signature; tamper evidence would need an HMAC over a
// server-held secret.
func SecurityHash(orderID, buyerEmail, transactionDate string) string {
	sum := sha256.Sum256([]byte(orderID + "-" + buyerEmail + "-" + transactionDate))
	return hex.EncodeToString(sum[:])
}

// SubstitutePlaceholders replaces the literal contract tokens with the
// transaction's parties. Each token is replaced globally, case-sensitive,
// exact match; no other characters are altered.
func SubstitutePlaceholders(s string, d *ContractData) string {
	s = strings.ReplaceAll(s, "{ARTISTA}", d.BuyerName)
	s = strings.ReplaceAll(s, "{PRODUCTOR}", d.ProducerName)
	s = strings.ReplaceAll(s, "{BEAT}", d.ProductName)
	s = strings.ReplaceAll(s, "{FECHA}", d.TransactionDate)
	return s
}

// QRPayload is the fixed-format verification payload embedded in the
// authenticity seal.
func QRPayload(d *ContractData) string {
	return strings.Join([]string{
		"TIANGUIS BEATS - VERIFICACION DE LICENCIA",
		"Orden: " + d.OrderID,
		"Licencia: " + d.LicenseType,
		"Comprador: " + d.BuyerEmail,
	}, "\n")
}

var mandatoryClauses = []string{
	"El comprador no podrá revender, sublicenciar ni transferir el beat en su forma original a terceros.",
	"El productor conserva la titularidad de la composición original salvo pacto de exclusividad.",
	"El uso del beat fuera de los límites aquí establecidos requiere la adquisición de una licencia superior.",
	"Esta licencia es intransferible y queda vinculada a los datos del comprador aquí asentados.",
}

var proClauses = []string{
	"CLÁUSULA PRO I: El comprador podrá registrar la obra derivada ante sociedades de gestión colectiva, declarando al productor como coautor de la composición.",
	"CLÁUSULA PRO II: El comprador podrá monetizar la obra derivada en plataformas de distribución digital dentro de los límites de streams establecidos.",
	"CLÁUSULA PRO III: Cualquier sincronización con medios audiovisuales comerciales deberá acreditar al productor en los créditos de la producción.",
}

// Renderer produces license contract PDFs. It is stateless and safe for
// concurrent use; each render is request-scoped.
type Renderer struct {
	verifyBaseURL string
}

func NewRenderer(verifyBaseURL string) *Renderer {
	return &Renderer{verifyBaseURL: verifyBaseURL}
}

// Render produces the complete contract PDF as a byte buffer. It either fully
// completes or returns an error; a caller must treat any error as "no
// contract produced". Identical input yields identical textual content.
func (r *Renderer) Render(d *ContractData) ([]byte, error) {
	if err := validate(d); err != nil {
		return nil, err
	}

	hash := SecurityHash(d.OrderID, d.BuyerEmail, d.TransactionDate)
	qrBytes, err := qrPNG(QRPayload(d), 256)
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total} — Tianguis Beats",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	// Header
	m.AddRow(14,
		text.NewCol(12, "CONTRATO DE LICENCIA DE USO", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Licencia "+d.LicenseType, props.Text{
			Size:  12,
			Align: align.Center,
		}),
	)
	m.AddRow(3, line.NewCol(12))

	// Order metadata
	m.AddRow(16,
		col.New(6).Add(
			text.New("Orden: "+d.OrderID, props.Text{Size: 9}),
			text.New("Fecha: "+d.TransactionDate, props.Text{Size: 9, Top: 5}),
			text.New(fmt.Sprintf("Precio pagado: $%.2f %s", d.Price, d.Currency), props.Text{Size: 9, Top: 10}),
		),
		col.New(6).Add(
			text.New("Producto: "+d.ProductName, props.Text{Size: 9}),
		),
	)

	// Parties
	m.AddRow(8, text.NewCol(12, "PARTES", props.Text{Size: 11, Style: fontstyle.Bold}))
	m.AddRow(20,
		col.New(6).Add(
			text.New("EL PRODUCTOR (licenciante)", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(d.ProducerName, props.Text{Size: 9, Top: 5}),
			text.New(d.ProducerEmail, props.Text{Size: 8, Top: 10}),
		),
		col.New(6).Add(
			text.New("EL ARTISTA (licenciatario)", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(d.BuyerName, props.Text{Size: 9, Top: 5}),
			text.New(d.BuyerEmail, props.Text{Size: 8, Top: 10}),
		),
	)

	// License terms: templated limits or the producer's own legal text.
	m.AddRow(8, text.NewCol(12, "TÉRMINOS DE LA LICENCIA", props.Text{Size: 11, Style: fontstyle.Bold}))
	if d.IsCustomText {
		for _, paragraph := range splitParagraphs(SubstitutePlaceholders(d.CustomText, d)) {
			m.AddRow(12, text.NewCol(12, paragraph, props.Text{Size: 9, Align: align.Left}))
		}
	} else {
		limits := d.Limits
		if limits == nil {
			limits = &UsageLimits{}
		}
		m.AddRow(10,
			text.NewCol(6, "Streams permitidos: "+formatLimit(limits.Streams), props.Text{Size: 9}),
			text.NewCol(6, "Copias distribuibles: "+formatLimit(limits.Copies), props.Text{Size: 9}),
		)
		m.AddRow(10,
			text.NewCol(6, "Videos musicales: "+formatLimit(limits.MusicVideos), props.Text{Size: 9}),
			text.NewCol(6, "Estaciones de radio: "+formatLimit(limits.RadioStations), props.Text{Size: 9}),
		)
	}

	// Mandatory restrictions apply to every license type.
	m.AddRow(8, text.NewCol(12, "RESTRICCIONES", props.Text{Size: 11, Style: fontstyle.Bold}))
	for i, clause := range mandatoryClauses {
		m.AddRow(10, text.NewCol(12, fmt.Sprintf("%d. %s", i+1, clause), props.Text{Size: 9, Align: align.Left}))
	}

	if d.IncludeProClauses {
		m.AddRow(8, text.NewCol(12, "CLÁUSULAS ADICIONALES", props.Text{Size: 11, Style: fontstyle.Bold}))
		for _, clause := range proClauses {
			m.AddRow(12, text.NewCol(12, clause, props.Text{Size: 9, Align: align.Left}))
		}
	}

	// Signature block
	m.AddRow(6, col.New(12))
	m.AddRow(18,
		col.New(6).Add(
			text.New("_________________________", props.Text{Size: 9, Top: 6, Align: align.Center}),
			text.New(d.ProducerName, props.Text{Size: 8, Top: 12, Align: align.Center}),
		),
		col.New(6).Add(
			text.New("_________________________", props.Text{Size: 9, Top: 6, Align: align.Center}),
			text.New(d.BuyerName, props.Text{Size: 8, Top: 12, Align: align.Center}),
		),
	)

	// Authenticity seal: QR plus the displayed hash prefix. The full digest
	// is the canonical value; the document shows a prefix for readability.
	m.AddRow(3, line.NewCol(12))
	m.AddRow(30,
		image.NewFromBytesCol(3, qrBytes, extension.Png, props.Rect{
			Center:  true,
			Percent: 90,
		}),
		col.New(9).Add(
			text.New("SELLO DE AUTENTICIDAD", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New("Hash de seguridad: "+hash[:16], props.Text{Size: 8, Top: 5}),
			text.New("Verifica este contrato en "+r.verifyBaseURL, props.Text{Size: 8, Top: 10}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contract PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func validate(d *ContractData) error {
	switch {
	case d.OrderID == "":
		return errors.New("contract requires an order id")
	case d.ProducerName == "":
		return errors.New("contract requires the producer's name")
	case d.BuyerName == "":
		return errors.New("contract requires the buyer's name")
	case d.BuyerEmail == "":
		return errors.New("contract requires the buyer's email")
	case d.ProductName == "":
		return errors.New("contract requires a product name")
	case d.TransactionDate == "":
		return errors.New("contract requires a transaction date")
	case !d.IsCustomText && d.LicenseType == "":
		return errors.New("contract requires a license type")
	}
	return nil
}

func formatLimit(v int64) string {
	switch {
	case v < 0:
		return "Ilimitado"
	case v == 0:
		return "No definido"
	default:
		return fmt.Sprintf("%d", v)
	}
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
