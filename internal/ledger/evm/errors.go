package evm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

const (
	codeExecutionReverted = 3
	codeInvalidParams     = -32602
)

// classify maps node and contract errors onto ledger sentinels.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", model.ErrLedgerUnavailable, operation, err)
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "already registered") {
		return fmt.Errorf("%s: %w", operation, model.ErrAlreadyRegistered)
	}

	for _, transient := range []string{
		"nonce too low",
		"replacement transaction underpriced",
		"already known",
		"insufficient funds",
		"txpool is full",
	} {
		if strings.Contains(message, transient) {
			return fmt.Errorf("%w: %s: %v", model.ErrLedgerUnavailable, operation, err)
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeExecutionReverted, codeInvalidParams:
			return fmt.Errorf("%w: %s: %v", model.ErrLedgerRejected, operation, err)
		}
	}
	if strings.Contains(message, "execution reverted") || strings.Contains(message, "invalid opcode") {
		return fmt.Errorf("%w: %s: %v", model.ErrLedgerRejected, operation, err)
	}

	return fmt.Errorf("%w: %s: %v", model.ErrLedgerUnavailable, operation, err)
}
