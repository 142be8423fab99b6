package control

import (
	"context"
	"encoding/json"
	"math/big"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/umbracle/ethgo"

	"github.com/dimitribekale/ai-marketplace/internal/core/config"
	"github.com/dimitribekale/ai-marketplace/internal/core/domain"
)

type stubClient struct {
	closed bool
}

func (s *stubClient) ReadCount(ctx context.Context) (*big.Int, error) { return big.NewInt(3), nil }
func (s *stubClient) SubmitListing(ctx context.Context, l domain.Listing) (*domain.Receipt, error) {
	return &domain.Receipt{TransactionHash: "0x01", BlockNumber: 2, GasUsed: 21000}, nil
}
func (s *stubClient) BlockNumber(ctx context.Context) (uint64, error) { return 100, nil }
func (s *stubClient) Address() ethgo.Address {
	return ethgo.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
}
func (s *stubClient) Contract() ethgo.Address {
	return ethgo.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
}
func (s *stubClient) ChainID() *big.Int { return big.NewInt(31337) }
func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

func TestGateway_ServeAndGracefulShutdown(t *testing.T) {
	client := &stubClient{}
	gw := NewGatewayWithClient(Config{
		Server: config.ServerConfig{Port: 0},
	}, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := gw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, port, err := net.SplitHostPort(gw.Addr())
	if err != nil {
		t.Fatalf("expected bound address after Start, got %q", gw.Addr())
	}
	baseURL := "http://127.0.0.1:" + port

	resp, err := http.Get(baseURL + "/model-count")
	if err != nil {
		t.Fatalf("GET /model-count failed: %v", err)
	}
	var body struct {
		Status     string `json:"status"`
		ModelCount int64  `json:"modelCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body.ModelCount != 3 {
		t.Errorf("unexpected response: %d %+v", resp.StatusCode, body)
	}

	resp, err = http.Post(baseURL+"/list-model", "application/json",
		strings.NewReader(`{"name":"m","price":1,"url":"u"}`))
	if err != nil {
		t.Fatalf("POST /list-model failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := gw.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if !client.closed {
		t.Error("expected chain client to be closed")
	}

	if _, err := http.Get(baseURL + "/health"); err == nil {
		t.Error("expected server to refuse connections after Stop")
	}
}

func TestGateway_StopWithoutStart(t *testing.T) {
	client := &stubClient{}
	gw := NewGatewayWithClient(Config{}, client)

	if err := gw.Stop(context.Background()); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if !client.closed {
		t.Error("expected chain client to be closed")
	}
}

func TestNewGateway_MissingABI(t *testing.T) {
	_, err := NewGateway(Config{
		Chain: config.ChainConfig{ABIPath: t.TempDir() + "/missing.json"},
	})
	if err == nil {
		t.Fatal("expected error for missing abi file")
	}
}
