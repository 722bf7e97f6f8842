package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frostlabs/frostgate/internal/dapp"
	"github.com/frostlabs/frostgate/internal/network"
	"github.com/frostlabs/frostgate/internal/storage"
)

// resolveHandler immediately resolves every request with a fixed value.
type resolveHandler struct{}

func (resolveHandler) Methods() []string { return []string{"avalanche_ping"} }

func (resolveHandler) Handle(ctx context.Context, req *dapp.Request) dapp.Outcome {
	return dapp.Resolved("pong")
}

func (resolveHandler) Approve(ctx context.Context, req *dapp.Request, displayData interface{}) dapp.Outcome {
	return dapp.Resolved(nil)
}

// parkHandler parks every request for user approval.
type parkHandler struct{}

func (parkHandler) Methods() []string { return []string{"avalanche_park"} }

func (parkHandler) Handle(ctx context.Context, req *dapp.Request) dapp.Outcome {
	return dapp.Pending(nil)
}

func (parkHandler) Approve(ctx context.Context, req *dapp.Request, displayData interface{}) dapp.Outcome {
	return dapp.Resolved(nil)
}

func dialTestServer(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()

	srv := NewServer(NewSessionStore(storage.NewMemory()))
	reg, err := dapp.NewRegistry(resolveHandler{}, parkHandler{})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	srv.SetPipeline(dapp.NewPipeline(reg, network.NewRegistry(), srv))

	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return srv, ws
}

func TestServer_RequestResponse(t *testing.T) {
	_, ws := dialTestServer(t)

	err := ws.WriteJSON(inboundFrame{ID: 1, Method: "avalanche_ping"})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp outboundFrame
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if resp.ID != 1 {
		t.Errorf("response id %d, want 1", resp.ID)
	}
	if resp.Result != "pong" {
		t.Errorf("result %v, want pong", resp.Result)
	}
}

func TestServer_UnknownMethod(t *testing.T) {
	_, ws := dialTestServer(t)

	if err := ws.WriteJSON(inboundFrame{ID: 2, Method: "eth_nope"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp outboundFrame
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != dapp.CodeMethodNotSupported {
		t.Errorf("got %+v, want code %d", resp.Error, dapp.CodeMethodNotSupported)
	}
}

func TestServer_MissingMethod(t *testing.T) {
	_, ws := dialTestServer(t)

	if err := ws.WriteJSON(inboundFrame{ID: 3}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp outboundFrame
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != dapp.CodeInvalidParams {
		t.Errorf("got %+v, want code %d", resp.Error, dapp.CodeInvalidParams)
	}
}

func TestServer_DisconnectClearsPending(t *testing.T) {
	srv, ws := dialTestServer(t)

	if err := ws.WriteJSON(inboundFrame{ID: 5, Method: "avalanche_park"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	waitFor(t, func() bool { return len(srv.pipeline.Pending()) == 1 },
		"request never went pending")

	ws.Close()
	waitFor(t, func() bool { return len(srv.pipeline.Pending()) == 0 },
		"pending request survived the disconnect")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore(storage.NewMemory())

	rec := &SessionRecord{
		ID:        "abc",
		Peer:      dapp.PeerMeta{Name: "Dapp", URL: "https://dapp.example"},
		Approved:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get("abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Peer.Name != "Dapp" || !got.Approved {
		t.Errorf("got %+v", got)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List returned %d records, want 1", len(list))
	}

	if err := store.Delete("abc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("abc"); err == nil {
		t.Error("deleted session should not load")
	}
}

func TestServer_ApproveSessionPersists(t *testing.T) {
	store := NewSessionStore(storage.NewMemory())
	srv := NewServer(store)

	if err := srv.ApproveSession("s1", dapp.PeerMeta{Name: "Dapp"}); err != nil {
		t.Fatalf("ApproveSession failed: %v", err)
	}
	rec, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !rec.Approved {
		t.Error("session should be approved")
	}

	if err := srv.RejectSession("s1"); err != nil {
		t.Fatalf("RejectSession failed: %v", err)
	}
	if _, err := store.Get("s1"); err == nil {
		t.Error("rejected session should be removed")
	}
}
