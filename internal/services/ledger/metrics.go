package ledger

import "github.com/shopspring/decimal"

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(string, decimal.Decimal) {}
func (NoopMetricsCollector) RecordError(string, string)              {}
