package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNetworkCreateGuards(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")
	other := newTestUser(t, st, "mallory")
	h := &NetworkHandler{Store: st}

	_, err := h.Create(user, payload(t, map[string]any{"device": "ghost", "name": "net"}))
	wantDomainError(t, err, "no_permissions")

	seedDevice(t, st, "dev-foreign", other.UUID, true)
	_, err = h.Create(user, payload(t, map[string]any{"device": "dev-foreign", "name": "net"}))
	wantDomainError(t, err, "no_permissions")

	seedDevice(t, st, "dev-off", user.UUID, false)
	_, err = h.Create(user, payload(t, map[string]any{"device": "dev-off", "name": "net"}))
	wantDomainError(t, err, "device_not_online")

	seedDevice(t, st, "dev-1", user.UUID, true)
	_, err = h.Create(user, payload(t, map[string]any{"device": "dev-1", "name": "has spaces"}))
	wantDomainError(t, err, "invalid_name")

	resp, err := h.Create(user, payload(t, map[string]any{"device": "dev-1", "name": "homenet"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp["owner"] != "dev-1" || resp["hidden"] != false {
		t.Fatalf("unexpected network %v", resp)
	}

	_, err = h.Create(user, payload(t, map[string]any{"device": "dev-1", "name": "homenet"}))
	wantDomainError(t, err, "name_already_in_use")

	for i := 0; i < maxNetworksPerDevice-1; i++ {
		name := fmt.Sprintf("net-%d", i)
		if _, err := h.Create(user, payload(t, map[string]any{"device": "dev-1", "name": name})); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	_, err = h.Create(user, payload(t, map[string]any{"device": "dev-1", "name": "one-too-many"}))
	wantDomainError(t, err, "maximum_networks_reached")
}

func TestNetworkInviteAcceptLeave(t *testing.T) {
	st := newTestStore(t)
	owner := newTestUser(t, st, "alice")
	guest := newTestUser(t, st, "bob")
	h := &NetworkHandler{Store: st}

	seedDevice(t, st, "dev-owner", owner.UUID, true)
	seedDevice(t, st, "dev-guest", guest.UUID, true)

	created, err := h.Create(owner, payload(t, map[string]any{"device": "dev-owner", "name": "homenet"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	netUUID := created["uuid"].(string)

	inv, err := h.Invite(owner, payload(t, map[string]any{"uuid": netUUID, "device": "dev-guest"}))
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv["request"] != false {
		t.Fatalf("expected invitation, got %v", inv)
	}

	_, err = h.Invite(owner, payload(t, map[string]any{"uuid": netUUID, "device": "dev-guest"}))
	wantDomainError(t, err, "invitation_already_exists")

	// the guest accepts with their own device
	resp, err := h.Accept(guest, payload(t, map[string]any{"uuid": inv["uuid"].(string)}))
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if resp["result"] != true {
		t.Fatalf("expected result, got %v", resp)
	}
	member, err := st.IsNetworkMember(netUUID, "dev-guest")
	if err != nil || !member {
		t.Fatalf("expected membership, got %v %v", member, err)
	}

	_, err = h.Invite(owner, payload(t, map[string]any{"uuid": netUUID, "device": "dev-guest"}))
	wantDomainError(t, err, "already_member_of_network")

	resp, err = h.Leave(guest, payload(t, map[string]any{"uuid": netUUID, "device": "dev-guest"}))
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if resp["result"] != true {
		t.Fatalf("expected result true, got %v", resp)
	}
	resp, err = h.Leave(guest, payload(t, map[string]any{"uuid": netUUID, "device": "dev-guest"}))
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if resp["result"] != false {
		t.Fatalf("expected result false after leaving, got %v", resp)
	}

	_, err = h.Leave(owner, payload(t, map[string]any{"uuid": netUUID, "device": "dev-owner"}))
	wantDomainError(t, err, "cannot_leave_own_network")
}

func TestNetworkRequestFlow(t *testing.T) {
	st := newTestStore(t)
	owner := newTestUser(t, st, "alice")
	guest := newTestUser(t, st, "bob")
	h := &NetworkHandler{Store: st}

	seedDevice(t, st, "dev-owner", owner.UUID, true)
	seedDevice(t, st, "dev-guest", guest.UUID, true)

	net, err := st.CreateNetwork("homenet", "dev-owner", false)
	if err != nil {
		t.Fatalf("CreateNetwork: %v", err)
	}

	req, err := h.Request(guest, payload(t, map[string]any{"uuid": net.UUID, "device": "dev-guest"}))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req["request"] != true {
		t.Fatalf("expected join request, got %v", req)
	}

	// only the network owner sees requests
	_, err = h.Requests(guest, payload(t, map[string]any{"uuid": net.UUID}))
	wantDomainError(t, err, "no_permissions")

	listed, err := h.Requests(owner, payload(t, map[string]any{"uuid": net.UUID}))
	if err != nil {
		t.Fatalf("Requests: %v", err)
	}
	if invs := listed["invitations"].([]gin.H); len(invs) != 1 {
		t.Fatalf("expected one request, got %v", listed)
	}

	// owner side acts on join requests
	resp, err := h.Deny(owner, payload(t, map[string]any{"uuid": req["uuid"].(string)}))
	if err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if resp["result"] != true {
		t.Fatalf("expected result, got %v", resp)
	}
	_, err = h.Deny(owner, payload(t, map[string]any{"uuid": req["uuid"].(string)}))
	wantDomainError(t, err, "invitation_not_found")
}

func TestNetworkKickAndDelete(t *testing.T) {
	st := newTestStore(t)
	owner := newTestUser(t, st, "alice")
	guest := newTestUser(t, st, "bob")
	h := &NetworkHandler{Store: st}

	seedDevice(t, st, "dev-owner", owner.UUID, true)
	seedDevice(t, st, "dev-guest", guest.UUID, true)

	net, err := st.CreateNetwork("homenet", "dev-owner", false)
	if err != nil {
		t.Fatalf("CreateNetwork: %v", err)
	}
	if err := st.AddNetworkMember(net.UUID, "dev-guest"); err != nil {
		t.Fatalf("AddNetworkMember: %v", err)
	}

	_, err = h.Kick(guest, payload(t, map[string]any{"uuid": net.UUID, "device": "dev-owner"}))
	wantDomainError(t, err, "no_permissions")

	_, err = h.Kick(owner, payload(t, map[string]any{"uuid": net.UUID, "device": "dev-owner"}))
	wantDomainError(t, err, "cannot_kick_owner")

	resp, err := h.Kick(owner, payload(t, map[string]any{"uuid": net.UUID, "device": "dev-guest"}))
	if err != nil {
		t.Fatalf("Kick: %v", err)
	}
	if resp["result"] != true {
		t.Fatalf("expected result, got %v", resp)
	}

	if _, err := h.Delete(owner, payload(t, map[string]any{"uuid": net.UUID})); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = h.Get(owner, payload(t, map[string]any{"uuid": net.UUID}))
	wantDomainError(t, err, "network_not_found")
}
