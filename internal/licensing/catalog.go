// internal/licensing/catalog.go
package licensing

import (
	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

// TierID identifies a license tier. Tiers are intrinsically ordered
// (Free < Básica < MP3 < Pro < Premium < Ilimitada < Exclusiva < SoundKit)
// but independently activatable per beat.
type TierID string

const (
	TierFree      TierID = "free"
	TierBasica    TierID = "basica"
	TierMp3       TierID = "mp3"
	TierPro       TierID = "pro"
	TierPremium   TierID = "premium"
	TierIlimitada TierID = "ilimitada"
	TierExclusiva TierID = "exclusiva"
	TierSoundKit  TierID = "sound_kit"
)

// tierOrder fixes the display and iteration order of beat license tiers.
// TierSoundKit is priced per kit, not per beat, so it never appears in a
// beat's purchasable set.
var tierOrder = []TierID{
	TierFree,
	TierBasica,
	TierMp3,
	TierPro,
	TierPremium,
	TierIlimitada,
	TierExclusiva,
}

// Default prices in MXN. The storefront fixtures depend on these exact
// constants; a beat with a null/zero stored price falls back here.
var defaultPrices = map[TierID]float64{
	TierFree:      0,
	TierBasica:    199,
	TierMp3:       349,
	TierPro:       499,
	TierPremium:   999,
	TierIlimitada: 1499,
	TierExclusiva: 3500,
	TierSoundKit:  499,
}

var tierNames = map[TierID]string{
	TierFree:      "Free",
	TierBasica:    "Básica",
	TierMp3:       "MP3",
	TierPro:       "Pro",
	TierPremium:   "Premium",
	TierIlimitada: "Ilimitada",
	TierExclusiva: "Exclusiva",
	TierSoundKit:  "Sound Kit",
}

var tierFeatures = map[TierID][]string{
	TierFree: {
		"MP3 con tag de voz",
		"Solo uso no comercial",
		"Crédito obligatorio al productor",
	},
	TierBasica: {
		"MP3 320kbps sin tag",
		"Hasta 50,000 streams",
		"1 video musical",
		"Crédito obligatorio al productor",
	},
	TierMp3: {
		"MP3 320kbps sin tag",
		"Hasta 150,000 streams",
		"2 videos musicales",
		"Distribución en plataformas digitales",
	},
	TierPro: {
		"MP3 + WAV",
		"Hasta 500,000 streams",
		"Videos musicales ilimitados",
		"Hasta 2,500 copias físicas",
		"1 estación de radio",
	},
	TierPremium: {
		"MP3 + WAV + stems (pistas separadas)",
		"Hasta 1,000,000 de streams",
		"Videos musicales ilimitados",
		"Hasta 10,000 copias físicas",
		"Estaciones de radio ilimitadas",
	},
	TierIlimitada: {
		"MP3 + WAV + stems (pistas separadas)",
		"Streams ilimitados",
		"Copias y videos ilimitados",
		"Presentaciones en vivo con fines de lucro",
	},
	TierExclusiva: {
		"Todos los archivos (MP3, WAV, stems)",
		"Derechos exclusivos: el beat sale de la venta",
		"Uso comercial ilimitado",
		"Contrato de exclusividad en PDF",
	},
	TierSoundKit: {
		"Samples y loops 100% libres de regalías",
		"Uso ilimitado en producciones propias",
		"Descarga inmediata",
	},
}

// License is one purchasable tier of a specific beat.
type License struct {
	ID       TierID   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Active   bool     `json:"active"`
}

// DefaultPrice returns the fixed fallback price for a tier.
func DefaultPrice(id TierID) float64 {
	return defaultPrices[id]
}

// Name returns the display name for a tier, or the raw id for unknown tiers.
func Name(id TierID) string {
	if n, ok := tierNames[id]; ok {
		return n
	}
	return string(id)
}

// Features returns the ordered feature list of a tier.
func Features(id TierID) []string {
	return tierFeatures[id]
}

// IsValidTier reports whether id names a known beat license tier.
func IsValidTier(id TierID) bool {
	for _, t := range tierOrder {
		if t == id {
			return true
		}
	}
	return false
}

func tierActive(b *models.Beat, id TierID) bool {
	switch id {
	case TierFree:
		return b.FreeActiva
	case TierBasica:
		return b.BasicaActiva
	case TierMp3:
		return b.Mp3Activa
	case TierPro:
		return b.ProActiva
	case TierPremium:
		return b.PremiumActiva
	case TierIlimitada:
		return b.IlimitadaActiva
	case TierExclusiva:
		return b.ExclusivaActiva
	}
	return false
}

func tierPrice(b *models.Beat, id TierID) float64 {
	var stored float64
	switch id {
	case TierBasica:
		stored = b.PrecioBasica
	case TierMp3:
		stored = b.PrecioMp3
	case TierPro:
		stored = b.PrecioPro
	case TierPremium:
		stored = b.PrecioPremium
	case TierIlimitada:
		stored = b.PrecioIlimitada
	case TierExclusiva:
		stored = b.PrecioExclusiva
	}
	if stored <= 0 {
		return defaultPrices[id]
	}
	return stored
}

// PurchasableLicenses returns the ordered set of licenses currently for sale
// on a beat. A sold beat has an empty purchasable set: exclusivity is sold at
// most once and the whole catalog closes with it.
func PurchasableLicenses(b *models.Beat) []License {
	if b.Sold {
		return []License{}
	}

	licenses := make([]License, 0, len(tierOrder))
	for _, id := range tierOrder {
		if !tierActive(b, id) {
			continue
		}
		licenses = append(licenses, License{
			ID:       id,
			Name:     tierNames[id],
			Price:    tierPrice(b, id),
			Features: tierFeatures[id],
			Active:   true,
		})
	}
	return licenses
}

// LicenseFor returns the purchasable license with the given tier id, if any.
func LicenseFor(b *models.Beat, id TierID) (License, bool) {
	for _, l := range PurchasableLicenses(b) {
		if l.ID == id {
			return l, true
		}
	}
	return License{}, false
}
