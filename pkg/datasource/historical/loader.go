package historical

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"go.uber.org/zap"
)

const (
	barLoaderComponentName = "datasource.historical"
	fileExtension          = ".bin"
)

// BarLoader reads <directory>/<symbol>.bin files of BinaryBar records.
type BarLoader struct {
	logger    *zap.Logger
	directory string
}

var _ datasource.Loader = (*BarLoader)(nil)

func NewBarLoader(logger *zap.Logger, directory string) *BarLoader {
	return &BarLoader{
		logger:    logger,
		directory: directory,
	}
}

func (l *BarLoader) Path(symbol string) string {
	return filepath.Join(l.directory, symbol+fileExtension)
}

func (l *BarLoader) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	source := NewSource[BinaryBar](l.Path(symbol))
	if err := source.Open(); err != nil {
		return common.Series{}, err
	}
	defer func() { _ = source.Close() }()

	fromNanos, toNanos := from.UnixNano(), to.UnixNano()
	idx, err := source.Search(func(b *BinaryBar) bool { return b.TimeStamp < fromNanos })
	if err != nil {
		return common.Series{}, err
	}

	var bars []common.Bar
	var record BinaryBar
	for ; ; idx++ {
		if idx%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return common.Series{}, err
			}
		}

		err := source.Read(idx, &record)
		if errors.Is(err, ErrEof) {
			break
		}
		if err != nil {
			return common.Series{}, err
		}
		if record.TimeStamp > toNanos {
			break
		}

		var bar common.Bar
		record.ToBar(&bar)
		bar.Source = barLoaderComponentName
		bar.Symbol = symbol
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return common.Series{}, fmt.Errorf("%w: %s between %s and %s", datasource.ErrEmptySeries, symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	l.logger.Debug("bars loaded", zap.String("symbol", symbol), zap.Int("count", len(bars)))
	return common.NewSeries(symbol, bars), nil
}
