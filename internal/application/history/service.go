package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/service"
	"txhistory-server/internal/domain/transaction"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// maxLimit 1回の取得で返す最大件数
const maxLimit = 1000

// EventPublisher 記録済みトランザクションの配信先
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, txn *transaction.Transaction) error
}

// HistoryApplicationService 履歴アプリケーションサービス
type HistoryApplicationService struct {
	store     *service.HistoryStore
	publisher EventPublisher
	logger    *otelinfra.Logger
	metrics   *otelinfra.Metrics
	tracer    trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	store *service.HistoryStore,
	publisher EventPublisher,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("history-service"),
	}
}

// RecordTransaction トランザクションを記録
func (s *HistoryApplicationService) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*RecordTransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.RecordTransaction")
	defer span.End()

	span.SetAttributes(
		attribute.String("sender", req.Sender),
		attribute.String("receiver", req.Receiver),
		attribute.String("category", req.Category),
	)

	sender, err := transaction.NewAccountID(req.Sender)
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid sender", err)
	}
	receiver, err := transaction.NewAccountID(req.Receiver)
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid receiver", err)
	}
	amount, err := transaction.ParseAmount(req.Amount)
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid amount", err)
	}
	category, err := transaction.NewCategory(req.Category)
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid category", err)
	}

	txn, err := s.store.Record(ctx, sender, receiver, amount, category, req.Note)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to record transaction", err)
	}

	span.SetAttributes(attribute.Int64("tx_id", int64(txn.ID())))
	s.metrics.RecordTransaction(ctx, category.String(), txn.IsSelfTransfer())

	// 配信失敗は記録結果に影響させない
	if err := s.publisher.PublishTransactionRecorded(ctx, txn); err != nil {
		s.metrics.RecordPublishFailure(ctx, "transaction.recorded")
		s.logger.Warn(ctx, "Failed to publish transaction event", map[string]interface{}{
			"tx_id": txn.ID(),
			"error": err.Error(),
		})
	}

	span.SetStatus(otelcodes.Ok, "transaction recorded")
	return &RecordTransactionResponse{Transaction: txn}, nil
}

// GetTransactionHistory トランザクション履歴を取得
func (s *HistoryApplicationService) GetTransactionHistory(ctx context.Context, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTransactionHistory")
	defer span.End()

	filtered := req.Category != nil
	fields := map[string]interface{}{
		"account_id": req.AccountID,
		"filtered":   filtered,
		"limit":      req.Limit,
		"offset":     req.Offset,
	}
	span.SetAttributes(
		attribute.String("account_id", req.AccountID),
		attribute.Bool("filtered", filtered),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)
	if filtered {
		span.SetAttributes(attribute.String("category", *req.Category))
		fields["category"] = *req.Category
	}

	s.logger.Debug(ctx, "Getting transaction history", fields)

	account, err := transaction.NewAccountID(req.AccountID)
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid account", err)
	}

	// バリデーション
	if req.Limit < 0 {
		req.Limit = 0
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	var transactions []*transaction.Transaction
	if filtered {
		category, err := transaction.NewCategory(*req.Category)
		if err != nil {
			return nil, s.fail(ctx, span, "Invalid category", err)
		}
		transactions, err = s.store.GetHistoryByCategory(ctx, account, category)
		if err != nil {
			return nil, s.fail(ctx, span, "Failed to get transaction history", fmt.Errorf("failed to get transaction history: %w", err))
		}
	} else {
		transactions, err = s.store.GetHistory(ctx, account)
		if err != nil {
			return nil, s.fail(ctx, span, "Failed to get transaction history", fmt.Errorf("failed to get transaction history: %w", err))
		}
	}

	total := len(transactions)
	s.metrics.RecordHistoryLength(ctx, filtered, total)
	span.SetAttributes(attribute.Int("total", total))

	return &GetTransactionHistoryResponse{
		Transactions: window(transactions, req.Offset, req.Limit),
		Total:        total,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}

// GetTotalCount 記録済みトランザクションの総数を取得
func (s *HistoryApplicationService) GetTotalCount(ctx context.Context) (*GetTotalCountResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTotalCount")
	defer span.End()

	count, err := s.store.TotalCount(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to get total count", fmt.Errorf("failed to get total count: %w", err))
	}

	span.SetAttributes(attribute.Int64("count", int64(count)))
	return &GetTotalCountResponse{Count: count}, nil
}

// fail エラーをスパンとログに記録して返す
func (s *HistoryApplicationService) fail(ctx context.Context, span trace.Span, message string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	s.logger.Error(ctx, message, err, nil)
	return err
}

// window offsetとlimitで切り出す（limitが0の場合は残り全件）
func window(transactions []*transaction.Transaction, offset, limit int) []*transaction.Transaction {
	if offset >= len(transactions) {
		return []*transaction.Transaction{}
	}
	end := len(transactions)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return transactions[offset:end]
}
