// Package evm implements the ledger client on top of an EVM certificate registry contract.
package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/clock"
	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

const (
	defaultPollInterval = 2 * time.Second
	// a freshly broadcast transaction may not be visible on every node behind a load balancer yet
	txNotFoundThreshold = 3
)

// Config holds the registry client settings.
type Config struct {
	ContractAddress common.Address
	// Confirmations is the number of blocks, including the inclusion block, required before a
	// transaction is reported as confirmed.
	Confirmations uint64
	PollInterval  time.Duration
	// FromBlock bounds the log search for registration events, usually the deployment block.
	FromBlock uint64
	GasLimit  uint64
	RPS       int
}

// Client registers and looks up certificates on the registry contract.
type Client struct {
	chain    Chain
	contract Contract
	signer   *bind.TransactOpts
	cfg      Config
	rl       ratelimit.Limiter
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger

	submitMu sync.Mutex
}

func NewClient(cfg Config, chain Chain, contract Contract, signer *bind.TransactOpts, logger *zap.Logger) *Client {
	if cfg.Confirmations == 0 {
		cfg.Confirmations = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	rl := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		rl = ratelimit.New(cfg.RPS)
	}
	return &Client{
		chain:    chain,
		contract: contract,
		signer:   signer,
		cfg:      cfg,
		rl:       rl,
		sleep:    clock.SleepWithContext,
		logger:   logger.Named("evm_ledger"),
	}
}

// Dial connects to rpcURL and builds a Client signing with the hex encoded private key.
func Dial(ctx context.Context, rpcURL, privateKey string, cfg Config, logger *zap.Logger) (*Client, *ethclient.Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial ledger node: %w", err)
	}
	key, err := crypto.HexToECDSA(trimHex(privateKey))
	if err != nil {
		eth.Close()
		return nil, nil, fmt.Errorf("parse ledger signer key: %w", err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, nil, fmt.Errorf("get chain id: %w", err)
	}
	signer, err := newSigner(key, chainID)
	if err != nil {
		eth.Close()
		return nil, nil, err
	}
	contract := bind.NewBoundContract(cfg.ContractAddress, registryABI, eth, eth, eth)
	return NewClient(cfg, eth, contract, signer, logger), eth, nil
}

func newSigner(key *ecdsa.PrivateKey, chainID *big.Int) (*bind.TransactOpts, error) {
	signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build ledger signer: %w", err)
	}
	return signer, nil
}

// Submit sends the registration transaction and returns its hash without waiting for inclusion.
// Submissions are serialized so nonces are assigned in order.
func (c *Client) Submit(ctx context.Context, contentHash string, metadataLocator model.Locator, subjectDigest, issuer string) (model.TxHandle, error) {
	hash, err := model.DigestBytes(contentHash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrLedgerRejected, err)
	}
	digest, err := model.DigestBytes(subjectDigest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrLedgerRejected, err)
	}
	if !common.IsHexAddress(issuer) {
		return "", fmt.Errorf("%w: issuer %q is not an address", model.ErrLedgerRejected, issuer)
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.rl.Take()
	opts := *c.signer
	opts.Context = ctx
	opts.GasLimit = c.cfg.GasLimit
	tx, err := c.contract.Transact(&opts, methodRegister, hash, string(metadataLocator), digest, common.HexToAddress(issuer))
	if err != nil {
		return "", classify("submit", err)
	}

	handle := model.TxHandle(model.NormalizeHash(tx.Hash().Hex()))
	c.logger.Info("registration submitted",
		zap.String("content_hash", contentHash),
		zap.String("tx", string(handle)),
		zap.Uint64("nonce", tx.Nonce()),
	)
	return handle, nil
}

// AwaitConfirmation polls until the transaction is included and deep enough or timeout elapses.
func (c *Client) AwaitConfirmation(ctx context.Context, handle model.TxHandle, timeout time.Duration) (model.TxReference, error) {
	txHash := common.HexToHash(string(handle))
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	misses := 0
	for {
		ref, done, err := c.checkConfirmation(waitCtx, txHash, &misses)
		if done {
			return ref, err
		}
		if err != nil {
			c.logger.Warn("confirmation check failed", zap.String("tx", string(handle)), zap.Error(err))
		}

		if err := c.sleep(waitCtx, c.cfg.PollInterval); err != nil {
			return "", fmt.Errorf("%w: tx %s: %v", model.ErrTimedOut, handle, err)
		}
	}
}

func (c *Client) checkConfirmation(ctx context.Context, txHash common.Hash, misses *int) (model.TxReference, bool, error) {
	c.rl.Take()
	receipt, err := c.chain.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		c.rl.Take()
		_, _, err = c.chain.TransactionByHash(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			*misses++
			if *misses >= txNotFoundThreshold {
				return "", true, fmt.Errorf("tx %s: %w", txHash.Hex(), model.ErrTxNotFound)
			}
			return "", false, nil
		}
		*misses = 0
		return "", false, err
	}
	if err != nil {
		return "", false, err
	}
	*misses = 0

	if receipt.Status == types.ReceiptStatusFailed {
		return "", true, fmt.Errorf("%w: tx %s reverted", model.ErrLedgerRejected, txHash.Hex())
	}

	c.rl.Take()
	head, err := c.chain.BlockNumber(ctx)
	if err != nil {
		return "", false, err
	}
	included := receipt.BlockNumber.Uint64()
	if head < included || head-included+1 < c.cfg.Confirmations {
		return "", false, nil
	}
	return model.TxReference(model.NormalizeHash(txHash.Hex())), true, nil
}

// Lookup reads the registry entry for contentHash as of the block that is Confirmations deep
// and recovers the transaction that registered it. A registration that only exists above
// that block is reported as ErrTimedOut, never as absent.
func (c *Client) Lookup(ctx context.Context, contentHash string) (model.LedgerEntry, error) {
	hash, err := model.DigestBytes(contentHash)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	c.rl.Take()
	head, err := c.chain.BlockNumber(ctx)
	if err != nil {
		return model.LedgerEntry{}, classify("lookup head", err)
	}

	if head+1 >= c.cfg.Confirmations {
		confirmed := new(big.Int).SetUint64(head + 1 - c.cfg.Confirmations)
		entry, err := c.readEntry(ctx, hash, confirmed)
		switch {
		case err == nil:
			ref, err := c.registrationTx(ctx, hash, confirmed)
			if err != nil {
				return model.LedgerEntry{}, err
			}
			entry.TxReference = ref
			return entry, nil
		case !errors.Is(err, model.ErrNotFound):
			return model.LedgerEntry{}, err
		}
	}
	if c.cfg.Confirmations <= 1 {
		return model.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", contentHash, model.ErrNotFound)
	}

	if _, err := c.readEntry(ctx, hash, nil); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", contentHash, model.ErrNotFound)
		}
		return model.LedgerEntry{}, err
	}
	return model.LedgerEntry{}, fmt.Errorf("%w: ledger entry %s has fewer than %d confirmations",
		model.ErrTimedOut, contentHash, c.cfg.Confirmations)
}

// readEntry calls getCertificate at block, or at the latest block when block is nil.
func (c *Client) readEntry(ctx context.Context, hash [model.DigestSize]byte, block *big.Int) (model.LedgerEntry, error) {
	c.rl.Take()
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx, BlockNumber: block}, &out, methodGet, hash); err != nil {
		return model.LedgerEntry{}, classify("lookup", err)
	}
	entry, err := decodeEntry(out)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("%w: lookup %x: %v", model.ErrLedgerUnavailable, hash, err)
	}
	if entry.ContentHash == "" {
		return model.LedgerEntry{}, fmt.Errorf("ledger entry %x: %w", hash, model.ErrNotFound)
	}
	return entry, nil
}

func (c *Client) registrationTx(ctx context.Context, hash [model.DigestSize]byte, toBlock *big.Int) (model.TxReference, error) {
	c.rl.Take()
	logs, err := c.chain.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(c.cfg.FromBlock),
		ToBlock:   toBlock,
		Addresses: []common.Address{c.cfg.ContractAddress},
		Topics:    [][]common.Hash{{registryABI.Events[eventRegistered].ID}, {common.Hash(hash)}},
	})
	if err != nil {
		return "", classify("filter registration logs", err)
	}
	for i := len(logs) - 1; i >= 0; i-- {
		if !logs[i].Removed {
			return model.TxReference(model.NormalizeHash(logs[i].TxHash.Hex())), nil
		}
	}
	return "", nil
}

func decodeEntry(out []interface{}) (model.LedgerEntry, error) {
	if len(out) != 5 {
		return model.LedgerEntry{}, fmt.Errorf("unexpected getCertificate output arity %d", len(out))
	}
	storedHash, ok1 := out[0].([32]byte)
	metadataCid, ok2 := out[1].(string)
	subjectDigest, ok3 := out[2].([32]byte)
	issuer, ok4 := out[3].(common.Address)
	registeredAt, ok5 := out[4].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return model.LedgerEntry{}, errors.New("unexpected getCertificate output types")
	}
	if storedHash == ([32]byte{}) {
		return model.LedgerEntry{}, nil
	}
	return model.LedgerEntry{
		ContentHash:     model.NormalizeHash(common.Hash(storedHash).Hex()),
		MetadataLocator: model.Locator(metadataCid),
		SubjectDigest:   model.NormalizeHash(common.Hash(subjectDigest).Hex()),
		IssuerIdentity:  issuer.Hex(),
		RegisteredAt:    time.Unix(registeredAt.Int64(), 0).UTC(),
	}, nil
}

func trimHex(value string) string {
	if len(value) >= 2 && (value[:2] == "0x" || value[:2] == "0X") {
		return value[2:]
	}
	return value
}
