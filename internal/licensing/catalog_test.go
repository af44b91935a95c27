// internal/licensing/catalog_test.go
package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

func allTiersActiveBeat() *models.Beat {
	return &models.Beat{
		Title:           "Noches de Tepito",
		FreeActiva:      true,
		BasicaActiva:    true,
		Mp3Activa:       true,
		ProActiva:       true,
		PremiumActiva:   true,
		IlimitadaActiva: true,
		ExclusivaActiva: true,
	}
}

func TestPurchasableLicensesOrderAndDefaults(t *testing.T) {
	beat := allTiersActiveBeat()

	licenses := PurchasableLicenses(beat)
	assert.Len(t, licenses, 7)

	wantOrder := []TierID{TierFree, TierBasica, TierMp3, TierPro, TierPremium, TierIlimitada, TierExclusiva}
	wantPrices := []float64{0, 199, 349, 499, 999, 1499, 3500}
	for i, l := range licenses {
		assert.Equal(t, wantOrder[i], l.ID)
		assert.Equal(t, wantPrices[i], l.Price)
		assert.True(t, l.Active)
		assert.NotEmpty(t, l.Name)
		assert.NotEmpty(t, l.Features)
	}
}

func TestPurchasableLicensesSoldBeatIsEmpty(t *testing.T) {
	beat := allTiersActiveBeat()
	beat.Sold = true

	licenses := PurchasableLicenses(beat)
	assert.NotNil(t, licenses)
	assert.Empty(t, licenses)
}

func TestPurchasableLicensesExcludesInactiveTiers(t *testing.T) {
	beat := allTiersActiveBeat()
	beat.FreeActiva = false
	beat.ExclusivaActiva = false

	licenses := PurchasableLicenses(beat)
	assert.Len(t, licenses, 5)
	for _, l := range licenses {
		assert.NotEqual(t, TierFree, l.ID)
		assert.NotEqual(t, TierExclusiva, l.ID)
	}
}

func TestStoredPriceOverridesDefault(t *testing.T) {
	beat := allTiersActiveBeat()
	beat.PrecioMp3 = 349
	beat.PrecioPro = 750

	mp3, ok := LicenseFor(beat, TierMp3)
	assert.True(t, ok)
	assert.Equal(t, 349.0, mp3.Price)

	pro, ok := LicenseFor(beat, TierPro)
	assert.True(t, ok)
	assert.Equal(t, 750.0, pro.Price)

	// Zero stored price falls back to the catalog default.
	premium, ok := LicenseFor(beat, TierPremium)
	assert.True(t, ok)
	assert.Equal(t, 999.0, premium.Price)
}

func TestOnlyMp3ActiveYieldsSingleLicense(t *testing.T) {
	beat := &models.Beat{
		Title:     "Solo MP3",
		Mp3Activa: true,
		PrecioMp3: 349,
	}

	licenses := PurchasableLicenses(beat)
	assert.Len(t, licenses, 1)
	assert.Equal(t, TierMp3, licenses[0].ID)
	assert.Equal(t, 349.0, licenses[0].Price)
}

func TestLicenseForInactiveTier(t *testing.T) {
	beat := allTiersActiveBeat()
	beat.ProActiva = false

	_, ok := LicenseFor(beat, TierPro)
	assert.False(t, ok)
}

func TestLicenseForSoldBeat(t *testing.T) {
	beat := allTiersActiveBeat()
	beat.Sold = true

	_, ok := LicenseFor(beat, TierBasica)
	assert.False(t, ok)
}

func TestSoundKitNeverInBeatSet(t *testing.T) {
	beat := allTiersActiveBeat()
	for _, l := range PurchasableLicenses(beat) {
		assert.NotEqual(t, TierSoundKit, l.ID)
	}
	_, ok := LicenseFor(beat, TierSoundKit)
	assert.False(t, ok)
}

func TestIsValidTier(t *testing.T) {
	assert.True(t, IsValidTier(TierBasica))
	assert.True(t, IsValidTier(TierExclusiva))
	assert.False(t, IsValidTier(TierSoundKit))
	assert.False(t, IsValidTier(TierID("platinum")))
}

func TestNameFallsBackToRawID(t *testing.T) {
	assert.Equal(t, "Básica", Name(TierBasica))
	assert.Equal(t, "weird", Name(TierID("weird")))
}
