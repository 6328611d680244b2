package historical

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

// BinaryBar is the on-disk record of one daily bar. Files hold a packed,
// time-ordered array of them in host byte order.
type BinaryBar struct {
	TimeStamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (b BinaryBar) ToBar(bar *common.Bar) {
	bar.TimeStamp = time.Unix(0, b.TimeStamp).UTC()
	bar.Open = fixed.FromFloat64(b.Open)
	bar.High = fixed.FromFloat64(b.High)
	bar.Low = fixed.FromFloat64(b.Low)
	bar.Close = fixed.FromFloat64(b.Close)
	bar.Volume = fixed.FromFloat64(b.Volume)
}

func FromBar(bar common.Bar) BinaryBar {
	return BinaryBar{
		TimeStamp: bar.TimeStamp.UnixNano(),
		Open:      bar.Open.Float(),
		High:      bar.High.Float(),
		Low:       bar.Low.Float(),
		Close:     bar.Close.Float(),
		Volume:    bar.Volume.Float(),
	}
}

// WriteBars stores bars in the layout Source reads.
func WriteBars(w io.Writer, bars []common.Bar) error {
	records := make([]BinaryBar, len(bars))
	for idx, bar := range bars {
		records[idx] = FromBar(bar)
	}
	if err := binary.Write(w, binary.NativeEndian, records); err != nil {
		return fmt.Errorf("unable to write %d bars: %w", len(bars), err)
	}
	return nil
}

func WriteFile(path string, bars []common.Bar) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteBars(f, bars)
}
