package telemetry

import (
	"time"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
)

type instrumentedProcessor struct {
	catalogapp.ImageProcessor
	metrics *Metrics
}

// InstrumentImageProcessor times every Process call of processor
func InstrumentImageProcessor(processor catalogapp.ImageProcessor, metrics *Metrics) catalogapp.ImageProcessor {
	if metrics == nil {
		return processor
	}
	return &instrumentedProcessor{ImageProcessor: processor, metrics: metrics}
}

func (p *instrumentedProcessor) Process(data []byte) ([]byte, error) {
	start := time.Now()
	out, err := p.ImageProcessor.Process(data)
	p.metrics.ObserveImageProcessing(err, time.Since(start))
	return out, err
}
