package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	historyapp "txhistory-server/internal/application/history"
	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/presentation/grpc/pb"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// HistoryHandler gRPC履歴サービスハンドラー
type HistoryHandler struct {
	pb.UnimplementedTransactionHistoryServiceServer
	historyService *historyapp.HistoryApplicationService
}

// NewHistoryHandler 新しいHistoryHandlerを作成
func NewHistoryHandler(historyService *historyapp.HistoryApplicationService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// RecordTransaction トランザクション記録
func (h *HistoryHandler) RecordTransaction(ctx context.Context, req *pb.RecordTransactionRequest) (*pb.RecordTransactionResponse, error) {
	from := req.From
	if from == "" {
		principal, ok := authinfra.PrincipalFrom(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "account not found in token")
		}
		from = principal.String()
	}

	resp, err := h.historyService.RecordTransaction(ctx, &historyapp.RecordTransactionRequest{
		Sender:   from,
		Receiver: req.To,
		Amount:   req.Amount,
		Category: req.TxType,
		Note:     req.Description,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.RecordTransactionResponse{
		Transaction: toPB(resp.Transaction),
	}, nil
}

// GetTransactionHistory 呼び出し元の履歴取得
func (h *HistoryHandler) GetTransactionHistory(ctx context.Context, req *pb.GetTransactionHistoryRequest) (*pb.GetTransactionHistoryResponse, error) {
	principal, ok := authinfra.PrincipalFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "account not found in token")
	}
	return h.getHistory(ctx, principal.String(), req)
}

// GetAccountHistory 指定アカウントの履歴取得（管理用）
func (h *HistoryHandler) GetAccountHistory(ctx context.Context, req *pb.GetTransactionHistoryRequest) (*pb.GetTransactionHistoryResponse, error) {
	if req.AccountId == "" {
		return nil, status.Error(codes.InvalidArgument, "account_id is required")
	}
	return h.getHistory(ctx, req.AccountId, req)
}

// GetTotalCount 総件数取得
func (h *HistoryHandler) GetTotalCount(ctx context.Context, _ *pb.GetTotalCountRequest) (*pb.GetTotalCountResponse, error) {
	resp, err := h.historyService.GetTotalCount(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetTotalCountResponse{Count: resp.Count}, nil
}

func (h *HistoryHandler) getHistory(ctx context.Context, accountID string, req *pb.GetTransactionHistoryRequest) (*pb.GetTransactionHistoryResponse, error) {
	limit := int(req.Limit)
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 0 || limit > maxLimit {
		return nil, status.Error(codes.InvalidArgument, "invalid limit")
	}
	if req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid offset")
	}

	resp, err := h.historyService.GetTransactionHistory(ctx, &historyapp.GetTransactionHistoryRequest{
		AccountID: accountID,
		Category:  req.TxType,
		Limit:     limit,
		Offset:    int(req.Offset),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]*pb.Transaction, len(resp.Transactions))
	for i, txn := range resp.Transactions {
		items[i] = toPB(txn)
	}

	return &pb.GetTransactionHistoryResponse{
		Transactions: items,
		Total:        uint64(resp.Total),
		Limit:        int32(resp.Limit),
		Offset:       int32(resp.Offset),
	}, nil
}

func toPB(txn *transaction.Transaction) *pb.Transaction {
	return &pb.Transaction{
		TxId:        txn.ID(),
		From:        txn.Sender().String(),
		To:          txn.Receiver().String(),
		Amount:      txn.Amount().String(),
		Timestamp:   txn.OccurredAt(),
		TxType:      txn.Category().String(),
		Description: txn.Note(),
	}
}

// toStatus ドメインエラーをgRPCステータスに変換
func toStatus(err error) error {
	switch {
	case errors.Is(err, transaction.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, transaction.ErrInvalidAccountID),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidCategory):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, transaction.ErrCounterOverflow):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
