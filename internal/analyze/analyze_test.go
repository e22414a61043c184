package analyze

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallscan/wallscan/internal/raster"
	"github.com/wallscan/wallscan/internal/refmark"
)

// testWall builds a 400x300 bright wall with a 130x180 reference sheet
// (exactly 5 px/cm for the default 26x36 cm marker) and a 50-pixel
// horizontal crack.
func testWall(t *testing.T, withCrack bool) *raster.Gray {
	t.Helper()
	img, err := raster.NewGraySize(400, 300)
	require.NoError(t, err)
	for r := 0; r < 300; r++ {
		for c := 0; c < 400; c++ {
			img.Pix[r][c] = 200
		}
	}
	for r := 50; r < 230; r++ {
		for c := 240; c < 370; c++ {
			img.Pix[r][c] = 230
		}
	}
	if withCrack {
		for c := 20; c < 70; c++ {
			img.Pix[280][c] = 20
		}
	}
	return img
}

func TestAnalyze_UncalibratedCrackSummary(t *testing.T) {
	img := testWall(t, true)

	s, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)

	require.Len(t, s.Cracks, 1)
	assert.Equal(t, 50, s.CrackPixels)
	assert.Equal(t, 400*300, s.WallPixels)
	assert.InDelta(t, 50.0/120000.0, s.DamageRatio, 1e-12)
	assert.Equal(t, SeverityMinor, s.Severity)
	assert.Nil(t, s.Calibration)
	assert.Zero(t, s.CrackAreaCM2)
}

func TestAnalyze_CalibratedPhysicalUnits(t *testing.T) {
	img := testWall(t, true)

	cfg := DefaultConfig()
	cfg.LocateReference = true

	s, err := Analyze(img, cfg)
	require.NoError(t, err)

	require.NotNil(t, s.Calibration)
	assert.InDelta(t, 5.0, s.Calibration.PxPerCM, 1e-9)

	// The marker's 23400 pixels are excluded from the assessed wall area.
	assert.Equal(t, 400*300-130*180, s.WallPixels)
	assert.InDelta(t, 2.0, s.CrackAreaCM2, 1e-9) // 50 px / 25 px-per-cm2
	assert.InDelta(t, float64(s.WallPixels)/25.0, s.WallAreaCM2, 1e-6)

	// Combined mask covers both the crack and the marker.
	require.NotNil(t, s.Mask)
	assert.Equal(t, 50+130*180, s.Mask.ForegroundCount())
}

func TestAnalyze_NoCracks(t *testing.T) {
	img := testWall(t, false)

	s, err := Analyze(img, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, s.Cracks)
	assert.Equal(t, SeverityNone, s.Severity)
	assert.Zero(t, s.DamageRatio)
}

func TestAnalyze_MissingMarkerFails(t *testing.T) {
	img, err := raster.NewGraySize(100, 100)
	require.NoError(t, err)
	for r := 0; r < 100; r++ {
		for c := 0; c < 100; c++ {
			img.Pix[r][c] = 120 // nothing bright enough to be the sheet
		}
	}

	cfg := DefaultConfig()
	cfg.LocateReference = true

	_, err = Analyze(img, cfg)
	require.Error(t, err)
	assert.True(t, IsMarkerMissing(err))
	assert.ErrorIs(t, err, refmark.ErrMarkerNotFound)
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityNone, severityFor(0, 0))
	assert.Equal(t, SeverityMinor, severityFor(0.001, 2))
	assert.Equal(t, SeverityModerate, severityFor(0.01, 2))
	assert.Equal(t, SeveritySevere, severityFor(0.05, 2))
}

func TestBatch_OrderedResultsAndIsolatedFailures(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "wall.png")
	f, err := os.Create(good)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testWall(t, true).ToImage()))
	require.NoError(t, f.Close())

	missing := filepath.Join(dir, "missing.png")

	cache := raster.NewCache()
	results := Batch(cache, []string{good, missing, good}, DefaultConfig(), 2)

	require.Len(t, results, 3)
	assert.Equal(t, good, results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Summary.Cracks, 1)

	assert.Equal(t, missing, results[1].Path)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Summary)

	require.NoError(t, results[2].Err)
	assert.Equal(t, results[0].Summary.CrackPixels, results[2].Summary.CrackPixels)
}
