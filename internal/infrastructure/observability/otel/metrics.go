package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 記録されたトランザクション数
	TransactionCount metric.Int64Counter

	// 参照した履歴の件数
	HistoryLength metric.Int64Histogram

	// 期限切れで削除された履歴数
	SweptEntries metric.Int64Counter

	// イベント配信の失敗数
	PublishFailures metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー数
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	transactionCount, err := meter.Int64Counter(
		"transactions_recorded_total",
		metric.WithDescription("Total number of recorded transactions"),
	)
	if err != nil {
		return nil, err
	}

	historyLength, err := meter.Int64Histogram(
		"history_length",
		metric.WithDescription("Number of records returned by history queries"),
	)
	if err != nil {
		return nil, err
	}

	sweptEntries, err := meter.Int64Counter(
		"retention_swept_total",
		metric.WithDescription("Total number of expired account histories removed"),
	)
	if err != nil {
		return nil, err
	}

	publishFailures, err := meter.Int64Counter(
		"event_publish_failures_total",
		metric.WithDescription("Total number of failed event publications"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		TransactionCount: transactionCount,
		HistoryLength:    historyLength,
		SweptEntries:     sweptEntries,
		PublishFailures:  publishFailures,
		RequestCount:     requestCount,
		ResponseTime:     responseTime,
		ErrorCount:       errorCount,
	}, nil
}

// RecordTransaction トランザクションの記録を計上
func (m *Metrics) RecordTransaction(ctx context.Context, category string, selfTransfer bool) {
	m.TransactionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("category", category),
			attribute.Bool("self_transfer", selfTransfer),
		),
	)
}

// RecordHistoryLength 履歴参照の件数を記録
func (m *Metrics) RecordHistoryLength(ctx context.Context, filtered bool, length int) {
	m.HistoryLength.Record(ctx, int64(length),
		metric.WithAttributes(
			attribute.Bool("filtered", filtered),
		),
	)
}

// RecordSweep 削除件数を記録
func (m *Metrics) RecordSweep(ctx context.Context, removed int64) {
	m.SweptEntries.Add(ctx, removed)
}

// RecordPublishFailure イベント配信の失敗を記録
func (m *Metrics) RecordPublishFailure(ctx context.Context, eventType string) {
	m.PublishFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("event_type", eventType),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
