package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/jsonrpc"

	"github.com/dimitribekale/ai-marketplace/internal/metrics"
)

// Node is the part of the node JSON-RPC surface the chain client needs.
type Node interface {
	ChainID() (*big.Int, error)
	BlockNumber() (uint64, error)
	GasPrice() (uint64, error)
	GetNonce(addr ethgo.Address) (uint64, error)
	Call(msg *ethgo.CallMsg) ([]byte, error)
	SendRawTransaction(raw []byte) (ethgo.Hash, error)
	GetTransactionReceipt(hash ethgo.Hash) (*ethgo.Receipt, error)
	Close() error
}

// JSONRPCNode implements Node over an ethgo JSON-RPC client and records
// call metrics for every request.
type JSONRPCNode struct {
	client *jsonrpc.Client
}

// DialNode connects to the node at url.
func DialNode(url string) (*JSONRPCNode, error) {
	c, err := jsonrpc.NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("dial node: %w", err)
	}
	return &JSONRPCNode{client: c}, nil
}

func (n *JSONRPCNode) ChainID() (*big.Int, error) {
	t := time.Now()
	id, err := n.client.Eth().ChainID()
	observe("eth_chainId", t, err)
	return id, err
}

func (n *JSONRPCNode) BlockNumber() (uint64, error) {
	t := time.Now()
	num, err := n.client.Eth().BlockNumber()
	observe("eth_blockNumber", t, err)
	return num, err
}

func (n *JSONRPCNode) GasPrice() (uint64, error) {
	t := time.Now()
	g, err := n.client.Eth().GasPrice()
	observe("eth_gasPrice", t, err)
	return g, err
}

// GetNonce returns the pending transaction count of addr.
func (n *JSONRPCNode) GetNonce(addr ethgo.Address) (uint64, error) {
	t := time.Now()
	nonce, err := n.client.Eth().GetNonce(addr, ethgo.Pending)
	observe("eth_getTransactionCount", t, err)
	return nonce, err
}

// Call executes msg against the latest block and returns the raw return data.
func (n *JSONRPCNode) Call(msg *ethgo.CallMsg) ([]byte, error) {
	t := time.Now()
	out, err := n.client.Eth().Call(msg, ethgo.Latest)
	observe("eth_call", t, err)
	if err != nil {
		return nil, err
	}
	return decodeHex(out)
}

func (n *JSONRPCNode) SendRawTransaction(raw []byte) (ethgo.Hash, error) {
	t := time.Now()
	h, err := n.client.Eth().SendRawTransaction(raw)
	observe("eth_sendRawTransaction", t, err)
	return h, err
}

// GetTransactionReceipt returns nil without error while the transaction is pending.
func (n *JSONRPCNode) GetTransactionReceipt(hash ethgo.Hash) (*ethgo.Receipt, error) {
	t := time.Now()
	r, err := n.client.Eth().GetTransactionReceipt(hash)
	observe("eth_getTransactionReceipt", t, err)
	return r, err
}

func (n *JSONRPCNode) Close() error {
	return n.client.Close()
}

func observe(method string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ChainCallsTotal.WithLabelValues(method, result).Inc()
	metrics.ChainCallLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex response: %w", err)
	}
	return b, nil
}
