package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cryptic-server/internal/store"
)

func newTestConn(t *testing.T) (*websocket.Conn, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	st := store.New(db)
	r := NewRouter(Deps{Store: st})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, st
}

func call(t *testing.T, conn *websocket.Conn, req map[string]any) map[string]any {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var resp map[string]any
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return resp
}

func callMS(t *testing.T, conn *websocket.Conn, ms string, endpoint []string, data map[string]any) map[string]any {
	t.Helper()
	resp := call(t, conn, map[string]any{"tag": "t-1", "ms": ms, "endpoint": endpoint, "data": data})
	if resp["tag"] != "t-1" {
		t.Fatalf("expected tag in reply, got %v", resp)
	}
	payload, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", resp)
	}
	return payload
}

func register(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	resp := call(t, conn, map[string]any{"action": "register", "name": name, "password": "S3cure-Pass1"})
	if _, ok := resp["token"].(string); !ok {
		t.Fatalf("expected token, got %v", resp)
	}
}

func TestWebSocketAccountFlow(t *testing.T) {
	conn, _ := newTestConn(t)

	resp := call(t, conn, map[string]any{"action": "register", "name": "alice", "password": "weak"})
	if resp["error"] != "invalid password" {
		t.Fatalf("expected invalid password, got %v", resp)
	}

	register(t, conn, "alice")

	resp = call(t, conn, map[string]any{"action": "info"})
	if resp["name"] != "alice" {
		t.Fatalf("expected account info, got %v", resp)
	}

	resp = call(t, conn, map[string]any{"action": "logout"})
	if resp["status"] != "logout" {
		t.Fatalf("expected logout, got %v", resp)
	}

	// ms calls need a session
	resp = call(t, conn, map[string]any{"tag": "x", "ms": "device", "endpoint": []string{"device", "all"}, "data": map[string]any{}})
	if resp["error"] != "unknown action" {
		t.Fatalf("expected unknown action, got %v", resp)
	}
}

func TestWebSocketUnknownRoute(t *testing.T) {
	conn, _ := newTestConn(t)
	register(t, conn, "bob")

	payload := callMS(t, conn, "device", []string{"no", "such"}, map[string]any{})
	if payload["error"] != "missing action" {
		t.Fatalf("expected missing action, got %v", payload)
	}
}

func TestWebSocketStarterDeviceAndFiles(t *testing.T) {
	conn, _ := newTestConn(t)
	register(t, conn, "carol")

	device := callMS(t, conn, "device", []string{"device", "starter_device"}, map[string]any{})
	deviceUUID, ok := device["uuid"].(string)
	if !ok {
		t.Fatalf("expected device, got %v", device)
	}
	if device["powered_on"] != true || device["starter_device"] != true {
		t.Fatalf("expected powered starter device, got %v", device)
	}

	file := callMS(t, conn, "device", []string{"file", "create"}, map[string]any{
		"device_uuid": deviceUUID, "filename": "notes.txt", "content": "hi", "is_directory": false,
	})
	fileUUID, ok := file["uuid"].(string)
	if !ok {
		t.Fatalf("expected file, got %v", file)
	}

	info := callMS(t, conn, "device", []string{"file", "info"}, map[string]any{
		"device_uuid": deviceUUID, "file_uuid": fileUUID,
	})
	if info["filename"] != "notes.txt" || info["content"] != "hi" {
		t.Fatalf("unexpected file info %v", info)
	}

	dup := callMS(t, conn, "device", []string{"file", "create"}, map[string]any{
		"device_uuid": deviceUUID, "filename": "notes.txt", "content": "again",
	})
	if dup["error"] != "file_already_exists" {
		t.Fatalf("expected file_already_exists, got %v", dup)
	}
}

func TestWebSocketCurrencyFlow(t *testing.T) {
	conn, st := newTestConn(t)
	register(t, conn, "dave")

	wallet := callMS(t, conn, "currency", []string{"create"}, map[string]any{})
	walletUUID, ok := wallet["source_uuid"].(string)
	if !ok {
		t.Fatalf("expected wallet, got %v", wallet)
	}
	key, _ := wallet["key"].(string)
	if len(key) != 10 {
		t.Fatalf("expected 10 digit key, got %q", key)
	}

	wrongKey := callMS(t, conn, "currency", []string{"get"}, map[string]any{
		"source_uuid": walletUUID, "key": "0000000000",
	})
	if wrongKey["error"] != "permission_denied" {
		t.Fatalf("expected permission_denied, got %v", wrongKey)
	}

	unknown := callMS(t, conn, "currency", []string{"get"}, map[string]any{
		"source_uuid": "nope", "key": key,
	})
	if unknown["error"] != "unknown_source_or_destination" {
		t.Fatalf("expected unknown_source_or_destination, got %v", unknown)
	}

	if err := st.CreditWallet(walletUUID, 500); err != nil {
		t.Fatalf("CreditWallet: %v", err)
	}
	got := callMS(t, conn, "currency", []string{"get"}, map[string]any{
		"source_uuid": walletUUID, "key": key,
	})
	if got["amount"] != float64(500) {
		t.Fatalf("expected amount 500, got %v", got)
	}
}

func TestWebSocketShopBuy(t *testing.T) {
	conn, st := newTestConn(t)
	register(t, conn, "erin")

	wallet := callMS(t, conn, "currency", []string{"create"}, map[string]any{})
	walletUUID := wallet["source_uuid"].(string)
	key := wallet["key"].(string)
	if err := st.CreditWallet(walletUUID, 100000); err != nil {
		t.Fatalf("CreditWallet: %v", err)
	}

	bought := callMS(t, conn, "inventory", []string{"shop", "buy"}, map[string]any{
		"products":    map[string]any{"CPU Cooler Plus": 1},
		"wallet_uuid": walletUUID,
		"key":         key,
	})
	if _, ok := bought["bought_products"]; !ok {
		t.Fatalf("expected bought_products, got %v", bought)
	}

	inv := callMS(t, conn, "inventory", []string{"inventory", "list"}, map[string]any{})
	elements, ok := inv["elements"].([]any)
	if !ok || len(elements) != 1 {
		t.Fatalf("expected one inventory element, got %v", inv)
	}

	broke := callMS(t, conn, "inventory", []string{"shop", "buy"}, map[string]any{
		"products":    map[string]any{"CPU Cooler Plus": 5},
		"wallet_uuid": walletUUID,
		"key":         key,
	})
	if broke["error"] != "not_enough_coins" {
		t.Fatalf("expected not_enough_coins, got %v", broke)
	}
}
