package capture

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// downsampler converts mono sample blocks from the source rate to the
// transport rate. It keeps resampler state across blocks so the filter
// stays continuous at block boundaries.
type downsampler struct {
	srcRate, dstRate int
	rs               resampling.Resampler
	in               []float64
}

func newDownsampler(srcRate, dstRate int) (*downsampler, error) {
	d := &downsampler{srcRate: srcRate, dstRate: dstRate}
	if srcRate == dstRate {
		return d, nil
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("capture: create resampler: %w", err)
	}
	d.rs = rs
	return d, nil
}

// process resamples one block. The returned slice is only valid until
// the next call.
func (d *downsampler) process(block []float32) ([]float32, error) {
	if d.rs == nil {
		return block, nil
	}
	if cap(d.in) < len(block) {
		d.in = make([]float64, len(block))
	}
	d.in = d.in[:len(block)]
	for i, s := range block {
		d.in[i] = float64(s)
	}
	out, err := d.rs.Process(d.in)
	if err != nil {
		return nil, fmt.Errorf("capture: resample: %w", err)
	}
	res := make([]float32, len(out))
	for i, s := range out {
		res[i] = float32(s)
	}
	return res, nil
}
