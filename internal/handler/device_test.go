package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.New(db)
}

func newTestUser(t *testing.T, st *store.Store, name string) *model.User {
	t.Helper()
	u, err := st.CreateUser(name, "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func payload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func wantDomainError(t *testing.T, err error, tag string) *errs.Error {
	t.Helper()
	var domain *errs.Error
	if !errors.As(err, &domain) {
		t.Fatalf("expected %s, got %v", tag, err)
	}
	if domain.Tag != tag {
		t.Fatalf("expected %s, got %s", tag, domain.Tag)
	}
	return domain
}

func TestStarterDeviceOnlyOnce(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "alice")
	h := &DeviceHandler{Store: st}

	resp, err := h.StarterDevice(user, nil)
	if err != nil {
		t.Fatalf("StarterDevice: %v", err)
	}
	deviceUUID := resp["uuid"].(string)

	hardware, err := st.ListHardware(deviceUUID)
	if err != nil {
		t.Fatalf("ListHardware: %v", err)
	}
	if len(hardware) != 7 {
		t.Fatalf("expected 7 hardware elements, got %d", len(hardware))
	}

	if _, err := h.StarterDevice(user, nil); err != errs.AlreadyOwnADevice {
		t.Fatalf("expected already_own_a_device, got %v", err)
	}
}

func TestDeviceCreateChecksCapBeforeParts(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "bob")
	h := &DeviceHandler{Store: st}

	for i := 0; i < maxDevices; i++ {
		d := model.Device{UUID: fmt.Sprintf("dev-%d", i), Name: "box", Owner: user.UUID, PoweredOn: true}
		if err := st.CreateDevice(d); err != nil {
			t.Fatalf("CreateDevice: %v", err)
		}
	}

	// garbage parts must not be inspected once the cap is hit
	_, err := h.Create(user, payload(t, map[string]any{"mainboard": "does not exist"}))
	wantDomainError(t, err, "maximum_devices_reached")
}

func TestBuildReportsOffendingSlot(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "carl")
	h := &DeviceHandler{Store: st}

	_, err := h.Build(user, payload(t, map[string]any{
		"mainboard": "Zero MX One",
		"cpu":       []string{"not a chip"},
	}))
	domain := wantDomainError(t, err, "element_part_not_found")
	if len(domain.Params) != 1 || domain.Params[0] != "cpu" {
		t.Fatalf("expected cpu param, got %v", domain.Params)
	}
}

func TestBuildRequiresInventory(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "dana")
	h := &DeviceHandler{Store: st}

	parts := map[string]any{
		"mainboard": "Zero MX One",
		"cpu":       []string{"CoreChip 3"},
		"ram":       []string{"Crimson RAM DDR3-1600"},
		"disk":      []string{"HDD Elements Zero A"},
		"powerPack": "Lithium X One",
		"case":      "Mini-ITX",
	}
	_, err := h.Build(user, payload(t, parts))
	wantDomainError(t, err, "part_not_in_inventory")
}

func TestChangeNameValidation(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "erin")
	h := &DeviceHandler{Store: st}

	d := model.Device{UUID: "dev-1", Name: "box", Owner: user.UUID, PoweredOn: true}
	if err := st.CreateDevice(d); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	_, err := h.ChangeName(user, payload(t, map[string]any{"device_uuid": "dev-1", "name": "has spaces"}))
	wantDomainError(t, err, "invalid_name")

	resp, err := h.ChangeName(user, payload(t, map[string]any{"device_uuid": "dev-1", "name": "new-name_1"}))
	if err != nil {
		t.Fatalf("ChangeName: %v", err)
	}
	if resp["name"] != "new-name_1" {
		t.Fatalf("expected renamed device, got %v", resp)
	}
}

func TestProcessSwapsRAMAndGPU(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "finn")
	h := &DeviceHandler{Store: st}

	w := model.Workload{
		UUID:           "dev-1",
		PerformanceCPU: 2, PerformanceGPU: 1, PerformanceRAM: 1,
		PerformanceDisk: 1, PerformanceNetwork: 16,
		UsageCPU: 1, UsageGPU: 1, UsageRAM: 1, UsageDisk: 1, UsageNetwork: 25.6,
	}
	if err := st.SetWorkload(w); err != nil {
		t.Fatalf("SetWorkload: %v", err)
	}
	r := model.ServiceRequirement{
		ServiceUUID: "svc-1", DeviceUUID: "dev-1",
		AllocatedCPU: 1, AllocatedRAM: 4, AllocatedGPU: 2,
		AllocatedDisk: 8, AllocatedNetwork: 16,
	}
	if err := st.CreateServiceRequirement(r); err != nil {
		t.Fatalf("CreateServiceRequirement: %v", err)
	}

	resp, err := h.Process(user, payload(t, map[string]any{"service_uuid": "svc-1"}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// ram carries the gpu allocation and vice versa
	if resp["cpu"] != 1.0 || resp["ram"] != 2.0 || resp["gpu"] != 4.0 {
		t.Fatalf("unexpected shares %v", resp)
	}
	if resp["disk"] != 8.0 || resp["network"] != 10.0 {
		t.Fatalf("unexpected shares %v", resp)
	}
}

func TestResourcesClampsToOne(t *testing.T) {
	st := newTestStore(t)
	user := newTestUser(t, st, "gabe")
	h := &DeviceHandler{Store: st}

	w := model.Workload{
		UUID:           "dev-1",
		PerformanceCPU: 2, PerformanceGPU: 2, PerformanceRAM: 2,
		PerformanceDisk: 2, PerformanceNetwork: 2,
		UsageCPU: 1, UsageGPU: 5, UsageRAM: 2, UsageDisk: 0, UsageNetwork: 1,
	}
	if err := st.SetWorkload(w); err != nil {
		t.Fatalf("SetWorkload: %v", err)
	}

	resp, err := h.Resources(user, payload(t, map[string]any{"device_uuid": "dev-1"}))
	if err != nil {
		t.Fatalf("Resources: %v", err)
	}
	if resp["cpu"] != 0.5 || resp["gpu"] != 1.0 || resp["ram"] != 1.0 || resp["disk"] != 0.0 {
		t.Fatalf("unexpected utilization %v", resp)
	}

	_, err = h.Resources(user, payload(t, map[string]any{"device_uuid": "nope"}))
	wantDomainError(t, err, "device_not_found")
}
