package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// ErrorDomain 放在 ErrorInfo.Domain，client 端據此判斷 Reason 是否為 domain.Kind
const ErrorDomain = "ledger"

// toStatus 將 domain error 轉成 gRPC status，Reason 帶 domain.Kind
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	kind := domain.KindOf(err)
	var code codes.Code
	switch kind {
	case domain.KindAccountNotFound, domain.KindStatementNotFound:
		code = codes.NotFound
	case domain.KindInsufficientFunds:
		code = codes.FailedPrecondition
	case domain.KindInvalidAmount, domain.KindSameAccount, domain.KindInvalidAccount, domain.KindInvalidTransaction:
		code = codes.InvalidArgument
	case domain.KindAccountAlreadyExists:
		code = codes.AlreadyExists
	case domain.KindStorageFailure:
		code = codes.Unavailable
	default:
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(code, err.Error())
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: string(kind),
		Domain: ErrorDomain,
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// RemoteError client 端還原的錯誤，errors.Is 可比對 domain 的 sentinel
type RemoteError struct {
	Kind    domain.Kind
	Code    codes.Code
	Message string
	target  error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.target
}

// fromStatus 將 gRPC 錯誤還原成可用 errors.Is 比對的 domain error
// 沒有 ErrorInfo 的錯誤原樣回傳
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		kind := domain.Kind(info.GetReason())
		target, known := domain.ErrorOfKind(kind)
		if !known {
			break
		}
		return &RemoteError{
			Kind:    kind,
			Code:    st.Code(),
			Message: st.Message(),
			target:  target,
		}
	}
	return err
}
