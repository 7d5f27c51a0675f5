package transport

//go:generate $MOCKGEN -source=executor.go -destination=mocks/executor_mock.go

import "context"

// Executor performs transfers.
type Executor interface {
	// Execute runs the transfer to completion. Failures are reported through
	// Result.Code rather than an error so that callers classify them uniformly.
	Execute(ctx context.Context, transfer *Transfer) *Result
}
