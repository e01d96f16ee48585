package evm

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Chain is the subset of ethclient used to follow transactions and read logs.
	Chain interface {
		TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
		TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
		BlockNumber(ctx context.Context) (uint64, error)
		FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	}

	// Contract is the subset of bind.BoundContract used for the registry calls.
	Contract interface {
		Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
		Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	}

	// HeadSubscriber is implemented by websocket-backed ethclient instances.
	HeadSubscriber interface {
		SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
	}
)
