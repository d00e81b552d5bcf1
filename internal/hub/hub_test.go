package hub

import "testing"

func TestHub_CountsPerUser(t *testing.T) {
	h := New()
	c1 := &Connection{UserUUID: "u"}
	c2 := &Connection{UserUUID: "u"}

	h.Register(c1)
	h.Register(c2)
	if got := h.CountUser("u"); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	h.Unregister(c1)
	if got := h.CountUser("u"); got != 1 {
		t.Fatalf("expected 1 connection, got %d", got)
	}

	h.Unregister(c2)
	if got := h.CountUser("u"); got != 0 {
		t.Fatalf("expected 0 connections, got %d", got)
	}
}

func TestHub_CountTotalAcrossUsers(t *testing.T) {
	h := New()
	h.Register(&Connection{UserUUID: "a"})
	h.Register(&Connection{UserUUID: "b"})
	h.Register(&Connection{UserUUID: "b"})

	if got := h.CountTotal(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestHub_UnregisterUnknownIsNoop(t *testing.T) {
	h := New()
	h.Unregister(&Connection{UserUUID: "ghost"})
	if got := h.CountTotal(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
