package evm

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"
	"github.com/umbracle/ethgo/wallet"

	"github.com/dimitribekale/ai-marketplace/internal/core/domain"
	"github.com/dimitribekale/ai-marketplace/internal/metrics"
)

const (
	countMethod   = "modelCount"
	listingMethod = "listModel"

	// DefaultGasLimit is the fixed gas limit attached to listing transactions.
	DefaultGasLimit uint64 = 2_000_000

	receiptPollInterval = 100 * time.Millisecond
	receiptTimeout      = 120 * time.Second
)

// Config holds the settings needed to reach the marketplace contract.
type Config struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	GasLimit        uint64
}

// Client reads from and writes to the marketplace contract on behalf of a
// single lister account.
type Client struct {
	node     Node
	abi      *abi.ABI
	contract ethgo.Address
	key      *wallet.Key
	signer   *wallet.EIP1155Signer
	chainID  *big.Int
	gasLimit uint64
	log      *slog.Logger

	pollInterval   time.Duration
	receiptTimeout time.Duration
}

// Dial connects to the node described by cfg and binds the contract.
func Dial(cfg Config, contractABI *abi.ABI) (*Client, error) {
	key, err := ParseKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	address, err := ParseAddress(cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}

	node, err := DialNode(cfg.RPCURL)
	if err != nil {
		return nil, err
	}

	c, err := NewClient(node, contractABI, address, key, cfg.GasLimit)
	if err != nil {
		_ = node.Close()
		return nil, err
	}
	return c, nil
}

// NewClient binds an already connected node to the contract at address.
// The chain id is fetched once here and reused for every signature.
func NewClient(
	node Node,
	contractABI *abi.ABI,
	address ethgo.Address,
	key *wallet.Key,
	gasLimit uint64,
) (*Client, error) {
	for _, name := range []string{countMethod, listingMethod} {
		if contractABI.GetMethod(name) == nil {
			return nil, fmt.Errorf("abi does not define method %s", name)
		}
	}
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	chainID, err := node.ChainID()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}

	return &Client{
		node:           node,
		abi:            contractABI,
		contract:       address,
		key:            key,
		signer:         wallet.NewEIP155Signer(chainID.Uint64()),
		chainID:        chainID,
		gasLimit:       gasLimit,
		log:            slog.Default().With("component", "chain"),
		pollInterval:   receiptPollInterval,
		receiptTimeout: receiptTimeout,
	}, nil
}

// Address returns the lister account address.
func (c *Client) Address() ethgo.Address {
	return c.key.Address()
}

// Contract returns the marketplace contract address.
func (c *Client) Contract() ethgo.Address {
	return c.contract
}

// ChainID returns the chain id reported by the node at startup.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// BlockNumber returns the node's latest block height, or ctx.Err() if ctx is
// done before the node answers.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		height uint64
		err    error
	}
	done := make(chan result, 1)
	go func() {
		height, err := c.node.BlockNumber()
		done <- result{height, err}
	}()

	select {
	case r := <-done:
		return r.height, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close releases the node connection.
func (c *Client) Close() error {
	return c.node.Close()
}

// ReadCount returns the contract's model counter as reported by the node.
func (c *Client) ReadCount(ctx context.Context) (*big.Int, error) {
	c.log.Debug("Reading model count")

	count, err := c.readCount(ctx)
	if err != nil {
		c.log.Error("Failed to read model count", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrChainRead, err)
	}

	c.log.Info("Read model count", "count", count.String())
	return count, nil
}

func (c *Client) readCount(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := c.abi.GetMethod(countMethod)
	to := c.contract
	out, err := c.node.Call(&ethgo.CallMsg{
		From: c.key.Address(),
		To:   &to,
		Data: method.ID(),
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty response from %s", countMethod)
	}

	values, err := method.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", countMethod, err)
	}
	return firstInteger(values)
}

// SubmitListing signs and broadcasts a listModel transaction and blocks until
// the network includes it in a block.
func (c *Client) SubmitListing(ctx context.Context, listing domain.Listing) (*domain.Receipt, error) {
	c.log.Info("Listing new model", "name", listing.Name)

	receipt, err := c.submitListing(ctx, listing)
	if err != nil {
		metrics.ListingsSubmitted.WithLabelValues("error").Inc()
		c.log.Error("Failed to list model", "name", listing.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrChainWrite, err)
	}

	metrics.ListingsSubmitted.WithLabelValues("success").Inc()
	c.log.Info("Transaction mined",
		"tx", receipt.TransactionHash,
		"block", receipt.BlockNumber,
		"gas_used", receipt.GasUsed,
	)
	return receipt, nil
}

func (c *Client) submitListing(ctx context.Context, listing domain.Listing) (*domain.Receipt, error) {
	if listing.Price == nil {
		return nil, fmt.Errorf("listing price is required")
	}
	// The abi encoder masks wider values to their low 256 bits.
	if listing.Price.Sign() < 0 || listing.Price.BitLen() > 256 {
		return nil, fmt.Errorf("listing price %s does not fit in uint256", listing.Price.String())
	}

	from := c.key.Address()
	nonce, err := c.node.GetNonce(from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := c.node.GasPrice()
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	input, err := c.abi.GetMethod(listingMethod).Encode(
		[]interface{}{listing.Name, listing.Price, listing.URL},
	)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", listingMethod, err)
	}

	to := c.contract
	tx := &ethgo.Transaction{
		Type:     ethgo.TransactionLegacy,
		From:     from,
		To:       &to,
		Input:    input,
		GasPrice: gasPrice,
		Gas:      c.gasLimit,
		Value:    big.NewInt(0),
		Nonce:    nonce,
		ChainID:  c.chainID,
	}

	signed, err := c.signer.SignTx(tx, c.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := signed.MarshalRLPTo(nil)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}

	c.log.Info("Sending transaction", "nonce", nonce, "gas_price", gasPrice)
	hash, err := c.node.SendRawTransaction(raw)
	if err != nil {
		return nil, fmt.Errorf("broadcast transaction: %w", err)
	}

	mined, err := c.waitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if mined.Status != 1 {
		return nil, fmt.Errorf("%w: %s", ErrReverted, hash.String())
	}

	return &domain.Receipt{
		TransactionHash: hash.String(),
		BlockNumber:     mined.BlockNumber,
		GasUsed:         mined.GasUsed,
	}, nil
}

// waitForReceipt polls the node until hash has a receipt.
func (c *Client) waitForReceipt(ctx context.Context, hash ethgo.Hash) (*ethgo.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	start := time.Now()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.node.GetTransactionReceipt(hash)
		if err != nil {
			return nil, fmt.Errorf("get receipt for %s: %w", hash.String(), err)
		}
		if receipt != nil {
			metrics.TimeToMine.Observe(time.Since(start).Seconds())
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.String(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// firstInteger extracts the single integer output of a decoded call.
func firstInteger(values map[string]interface{}) (*big.Int, error) {
	v, ok := values["0"]
	if !ok && len(values) == 1 {
		for _, only := range values {
			v, ok = only, true
		}
	}
	if !ok {
		return nil, fmt.Errorf("unexpected output %v", values)
	}

	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	default:
		return nil, fmt.Errorf("unexpected output type %T", v)
	}
}
