package dapp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/frostlabs/frostgate/internal/network"
	"github.com/frostlabs/frostgate/internal/wallet"
)

// recorder captures responses delivered through the pipeline.
type recorder struct {
	results map[uint64]interface{}
	errs    map[uint64]*Error
}

func newRecorder() *recorder {
	return &recorder{
		results: make(map[uint64]interface{}),
		errs:    make(map[uint64]*Error),
	}
}

func (r *recorder) SendResult(sessionID string, reqID uint64, result interface{}) {
	r.results[reqID] = result
}

func (r *recorder) SendError(sessionID string, reqID uint64, rpcErr *Error) {
	r.errs[reqID] = rpcErr
}

// echoHandler resolves or parks requests on demand.
type echoHandler struct {
	methods []string
	pend    bool
}

func (h *echoHandler) Methods() []string { return h.methods }

func (h *echoHandler) Handle(ctx context.Context, req *Request) Outcome {
	if h.pend {
		return Pending("display")
	}
	return Resolved("ok")
}

func (h *echoHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	return Resolved("approved")
}

func newTestWallet(t *testing.T) *wallet.Service {
	t.Helper()
	ks, err := wallet.NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore failed: %v", err)
	}
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic failed: %v", err)
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic failed: %v", err)
	}
	params := wallet.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
	if err := ks.Create("test", seed, []byte("pw"), params); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	svc, err := wallet.Unlock(ks, "test", []byte("pw"))
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	return svc
}

func request(method string, params interface{}) *Request {
	var raw json.RawMessage
	if params != nil {
		raw, _ = json.Marshal(params)
	}
	return &Request{
		ID:        1,
		SessionID: "sess",
		Method:    method,
		Params:    raw,
		Peer:      PeerMeta{Name: "TestDapp", URL: "https://dapp.example"},
		Origin:    "https://dapp.example",
	}
}

func newPipeline(t *testing.T, rec *recorder, handlers ...Handler) *Pipeline {
	t.Helper()
	reg, err := NewRegistry(handlers...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return NewPipeline(reg, network.NewRegistry(), rec)
}

func TestNewRegistry_DuplicateMethod(t *testing.T) {
	_, err := NewRegistry(
		&echoHandler{methods: []string{"foo_bar"}},
		&echoHandler{methods: []string{"foo_bar"}},
	)
	if err == nil {
		t.Fatal("duplicate method registration should fail")
	}
}

func TestPipeline_UnknownMethod(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec)

	p.HandleRequest(context.Background(), request("eth_doesNotExist", nil))

	if rec.errs[1] == nil || rec.errs[1].Code != CodeMethodNotSupported {
		t.Errorf("got %+v, want code %d", rec.errs[1], CodeMethodNotSupported)
	}
}

func TestPipeline_CoreOnlyOrigin(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec, &echoHandler{methods: []string{MethodAvalancheGetAccounts}})

	req := request(MethodAvalancheGetAccounts, nil)
	req.Origin = "https://evil.example"
	p.HandleRequest(context.Background(), req)
	if rec.errs[1] == nil || rec.errs[1].Code != CodeUnauthorized {
		t.Errorf("untrusted origin: got %+v, want code %d", rec.errs[1], CodeUnauthorized)
	}

	req2 := request(MethodAvalancheGetAccounts, nil)
	req2.ID = 2
	req2.Origin = "https://wallet.core.app"
	p.HandleRequest(context.Background(), req2)
	if rec.results[2] != "ok" {
		t.Errorf("trusted origin: got %v, want ok", rec.results[2])
	}
}

func TestPipeline_EVMOnlyMethodOnUTXONetwork(t *testing.T) {
	rec := newRecorder()
	reg, err := NewRegistry(&echoHandler{methods: []string{"eth_getBalance"}})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	networks := network.NewRegistry()
	p := NewPipeline(reg, networks, rec)

	if err := networks.SetActiveUTXO("X", false); err != nil {
		t.Fatalf("SetActiveUTXO failed: %v", err)
	}

	p.HandleRequest(context.Background(), request("eth_getBalance", nil))
	if rec.errs[1] == nil || rec.errs[1].Code != CodeMethodNotSupported {
		t.Errorf("got %+v, want code %d", rec.errs[1], CodeMethodNotSupported)
	}
}

func TestPipeline_PendingApproveLifecycle(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec, &echoHandler{methods: []string{"avalanche_demo"}, pend: true})

	var notified *PendingRequest
	p.OnPending(func(pr *PendingRequest) { notified = pr })

	p.HandleRequest(context.Background(), request("avalanche_demo", nil))

	if len(rec.results) != 0 || len(rec.errs) != 0 {
		t.Fatal("pending request must not respond immediately")
	}
	if notified == nil || notified.Request.ID != 1 {
		t.Fatal("pending request was not surfaced")
	}
	if len(p.Pending()) != 1 {
		t.Fatalf("store holds %d requests, want 1", len(p.Pending()))
	}

	if !p.Approve(context.Background(), 1) {
		t.Fatal("Approve should find the pending request")
	}
	if rec.results[1] != "approved" {
		t.Errorf("got result %v, want approved", rec.results[1])
	}
	if len(p.Pending()) != 0 {
		t.Error("approved request should leave the store")
	}

	// Second approve finds nothing.
	if p.Approve(context.Background(), 1) {
		t.Error("second Approve should be a no-op")
	}
}

func TestPipeline_RejectIdempotent(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec, &echoHandler{methods: []string{"avalanche_demo"}, pend: true})

	p.HandleRequest(context.Background(), request("avalanche_demo", nil))

	if !p.Reject(context.Background(), 1, "") {
		t.Fatal("Reject should find the pending request")
	}
	if rec.errs[1] == nil || rec.errs[1].Code != CodeUserRejected {
		t.Errorf("got %+v, want code %d", rec.errs[1], CodeUserRejected)
	}
	if rec.errs[1].Message != "user rejected the request" {
		t.Errorf("message %q, want the generic rejection", rec.errs[1].Message)
	}

	if p.Reject(context.Background(), 1, "") {
		t.Error("second Reject should be a no-op")
	}
	if p.Approve(context.Background(), 1) {
		t.Error("Approve after Reject should be a no-op")
	}
}

func TestPipeline_RejectWithReason(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec, &echoHandler{methods: []string{"avalanche_demo"}, pend: true})

	p.HandleRequest(context.Background(), request("avalanche_demo", nil))

	if !p.Reject(context.Background(), 1, "amount looks wrong") {
		t.Fatal("Reject should find the pending request")
	}
	if rec.errs[1] == nil || rec.errs[1].Code != CodeUserRejected {
		t.Fatalf("got %+v, want code %d", rec.errs[1], CodeUserRejected)
	}
	if rec.errs[1].Message != "amount looks wrong" {
		t.Errorf("message %q, want the supplied reason", rec.errs[1].Message)
	}
}

func TestPipeline_DropSessionClearsPending(t *testing.T) {
	rec := newRecorder()
	p := newPipeline(t, rec, &echoHandler{methods: []string{"avalanche_demo"}, pend: true})
	ctx := context.Background()

	p.HandleRequest(ctx, request("avalanche_demo", nil))
	other := request("avalanche_demo", nil)
	other.ID = 2
	other.SessionID = "other"
	p.HandleRequest(ctx, other)

	if n := p.DropSession(ctx, "sess"); n != 1 {
		t.Fatalf("dropped %d requests, want 1", n)
	}
	if len(rec.results) != 0 || len(rec.errs) != 0 {
		t.Error("dropping must not deliver responses")
	}

	// The dropped request is gone; the other session's request survives.
	if p.Approve(ctx, 1) {
		t.Error("Approve of a dropped request should be a no-op")
	}
	pending := p.Pending()
	if len(pending) != 1 || pending[0].Request.SessionID != "other" {
		t.Fatalf("pending %v, want only the other session's request", pending)
	}
	if p.DropSession(ctx, "sess") != 0 {
		t.Error("second DropSession should find nothing")
	}
}

func TestPendingStore_TakeRemovesFirst(t *testing.T) {
	s := NewPendingStore()
	req := request("m", nil)
	s.Add(req, nil)

	if _, ok := s.Take(req.ID); !ok {
		t.Fatal("first Take should succeed")
	}
	if _, ok := s.Take(req.ID); ok {
		t.Error("second Take should fail")
	}
	if s.Len() != 0 {
		t.Error("store should be empty")
	}
}

func TestIsTrustedOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://core.app", true},
		{"https://wallet.core.app", true},
		{"http://localhost:3000", true},
		{"https://evil.example", false},
		{"https://core.app.evil.example", false},
	}
	for _, tc := range tests {
		if got := IsTrustedOrigin(tc.origin); got != tc.want {
			t.Errorf("IsTrustedOrigin(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestChainHandler_Flows(t *testing.T) {
	networks := network.NewRegistry()
	rec := newRecorder()
	reg, err := NewRegistry(NewChainHandler(networks))
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	p := NewPipeline(reg, networks, rec)
	ctx := context.Background()

	// Unknown chain: 4902, nothing pending.
	req := request(MethodWalletSwitchChain, []map[string]string{{"chainId": "0x539"}})
	p.HandleRequest(ctx, req)
	if rec.errs[1] == nil || rec.errs[1].Code != CodeUnrecognizedChain {
		t.Errorf("unknown chain: got %+v, want code %d", rec.errs[1], CodeUnrecognizedChain)
	}

	// Already-active chain: immediate null result, no approval prompt.
	req2 := request(MethodWalletSwitchChain, []map[string]string{
		{"chainId": fmt.Sprintf("0x%x", network.ChainIDAvalanche)},
	})
	req2.ID = 2
	p.HandleRequest(ctx, req2)
	if _, ok := rec.results[2]; !ok {
		t.Error("already-active switch should resolve immediately")
	}
	if len(p.Pending()) != 0 {
		t.Error("already-active switch must not go pending")
	}

	// Known inactive chain: pending, then approved switch.
	req3 := request(MethodWalletSwitchChain, []map[string]string{
		{"chainId": fmt.Sprintf("0x%x", network.ChainIDFuji)},
	})
	req3.ID = 3
	p.HandleRequest(ctx, req3)
	if len(p.Pending()) != 1 {
		t.Fatal("switch to inactive chain should go pending")
	}
	if !p.Approve(ctx, 3) {
		t.Fatal("Approve failed")
	}
	if networks.Active().ChainID != network.ChainIDFuji {
		t.Errorf("active chain %d, want %d", networks.Active().ChainID, network.ChainIDFuji)
	}

	// Adding a new chain then switches to it.
	req4 := request(MethodWalletAddChain, []map[string]interface{}{{
		"chainId":   "0x7a69",
		"chainName": "Localnet",
		"rpcUrls":   []string{"http://127.0.0.1:8545"},
		"nativeCurrency": map[string]interface{}{
			"symbol":   "ETH",
			"decimals": 18,
		},
	}})
	req4.ID = 4
	p.HandleRequest(ctx, req4)
	if len(p.Pending()) != 1 {
		t.Fatal("add chain should go pending")
	}
	if !p.Approve(ctx, 4) {
		t.Fatal("Approve failed")
	}
	if networks.Active().ChainID != 0x7a69 {
		t.Errorf("active chain %d, want %d", networks.Active().ChainID, 0x7a69)
	}
}
