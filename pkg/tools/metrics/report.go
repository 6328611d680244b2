package metrics

import (
	"fmt"

	"go.uber.org/zap"
)

func (s Statistics) Print(logger *zap.Logger, fields ...zap.Field) {
	logger.Info("performance report",
		append(fields,
			zap.String("total_return", fmt.Sprintf("%.2f%%", s.TotalReturnPct)),
			zap.String("max_drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdownPct)))...)

	logger.Info("trade statistics",
		append(fields,
			zap.Int("total_trades", s.TotalTrades),
			zap.String("win_rate", fmt.Sprintf("%.2f%%", s.WinRatePct)),
			zap.String("total_fees", s.TotalFees.Rescale(2).String()),
			zap.String("total_taxes", s.TotalTaxes.Rescale(2).String()))...)

	logger.Info("risk metrics",
		append(fields,
			zap.String("sharpe_ratio", fmt.Sprintf("%.5f", s.SharpeRatio)))...)
}
