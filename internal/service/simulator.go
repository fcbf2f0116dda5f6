package service

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"smartgarden/internal/models"
)

// Simulated sensor ranges, on the 12-bit ADC scale for soil.
const (
	SimTempBaseC    = 25.0
	SimTempSpanC    = 10.0
	SimHumidityBase = 55.0
	SimHumiditySpan = 20.0
	SimSoilBase     = 1000
	SimSoilSpan     = 1500
)

// Generator produces simulated readings. It never fails.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator uses src, or a time-seeded PCG when src is nil.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &Generator{rnd: rand.New(src)}
}

// Generate draws temperature (0.1 °C), humidity (whole %) and raw soil independently.
func (g *Generator) Generate() models.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	temp := SimTempBaseC + g.rnd.Float64()*SimTempSpanC
	hum := SimHumidityBase + g.rnd.Float64()*SimHumiditySpan
	soil := SimSoilBase + int(math.Floor(g.rnd.Float64()*SimSoilSpan))

	return models.Reading{
		Temperature:  math.Round(temp*10) / 10,
		Humidity:     math.Round(hum),
		SoilMoisture: soil,
	}
}

// SuggestPump reports whether r is drier than the threshold. threshold and
// adcMax must be on the same scale as r.SoilMoisture.
func SuggestPump(r models.Reading, threshold, adcMax int) bool {
	if adcMax <= 0 {
		return r.SoilMoisture < threshold
	}
	return float64(r.SoilMoisture)/float64(adcMax)*100 < float64(threshold)/float64(adcMax)*100
}
