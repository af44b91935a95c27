// internal/models/beat.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Beat is a producer's track. Per-tier activation flags and prices use the
// es_{tier}_activa / precio_{tier}_mxn column layout the storefront fixtures
// were built against; prices are denominated in MXN (base currency) and a
// zero/absent price falls back to the catalog default for that tier.
type Beat struct {
	BaseModel
	ProducerID  uuid.UUID      `json:"producer_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Genre       string         `json:"genre" gorm:"size:100;index"`
	BPM         int            `json:"bpm"`
	MusicalKey  string         `json:"musical_key" gorm:"size:10"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	AudioURL    string         `json:"audio_url" gorm:"size:512"`
	ArtworkURL  string         `json:"artwork_url" gorm:"size:512"`

	// Exclusivity is sold at most once; a sold beat leaves the catalog entirely.
	Sold   bool       `json:"sold" gorm:"column:vendido;default:false;index"`
	SoldAt *time.Time `json:"sold_at" gorm:"column:vendido_at"`

	FreeActiva      bool `json:"es_free_activa" gorm:"column:es_free_activa;default:true"`
	BasicaActiva    bool `json:"es_basica_activa" gorm:"column:es_basica_activa;default:true"`
	Mp3Activa       bool `json:"es_mp3_activa" gorm:"column:es_mp3_activa;default:true"`
	ProActiva       bool `json:"es_pro_activa" gorm:"column:es_pro_activa;default:true"`
	PremiumActiva   bool `json:"es_premium_activa" gorm:"column:es_premium_activa;default:true"`
	IlimitadaActiva bool `json:"es_ilimitada_activa" gorm:"column:es_ilimitada_activa;default:true"`
	ExclusivaActiva bool `json:"es_exclusiva_activa" gorm:"column:es_exclusiva_activa;default:true"`

	PrecioBasica    float64 `json:"precio_basica_mxn" gorm:"column:precio_basica_mxn;type:decimal(10,2);default:0"`
	PrecioMp3       float64 `json:"precio_mp3_mxn" gorm:"column:precio_mp3_mxn;type:decimal(10,2);default:0"`
	PrecioPro       float64 `json:"precio_pro_mxn" gorm:"column:precio_pro_mxn;type:decimal(10,2);default:0"`
	PrecioPremium   float64 `json:"precio_premium_mxn" gorm:"column:precio_premium_mxn;type:decimal(10,2);default:0"`
	PrecioIlimitada float64 `json:"precio_ilimitada_mxn" gorm:"column:precio_ilimitada_mxn;type:decimal(10,2);default:0"`
	PrecioExclusiva float64 `json:"precio_exclusiva_mxn" gorm:"column:precio_exclusiva_mxn;type:decimal(10,2);default:0"`

	// Producers may replace the templated contract terms with their own legal
	// text; {ARTISTA}, {PRODUCTOR}, {BEAT} and {FECHA} are substituted at render
	// time.
	UsesCustomContract bool   `json:"uses_custom_contract" gorm:"default:false"`
	CustomContractText string `json:"custom_contract_text,omitempty" gorm:"type:text"`

	PlayCount int64 `json:"play_count" gorm:"default:0"`
	LikeCount int64 `json:"like_count" gorm:"default:0"`

	// Relationships
	Producer User `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
}
