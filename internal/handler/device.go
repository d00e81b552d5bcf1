package handler

import (
	"fmt"
	"math/rand"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cryptic-server/internal/catalog"
	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

const maxDevices = 3

var deviceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]{1,15}$`)

type DeviceHandler struct {
	Store *store.Store
}

// buildParts is the part list shared by starter_device, device create and
// hardware build.
type buildParts struct {
	Mainboard       string   `json:"mainboard"`
	CPU             []string `json:"cpu"`
	ProcessorCooler []string `json:"processorCooler"`
	RAM             []string `json:"ram"`
	GPU             []string `json:"gpu"`
	Disk            []string `json:"disk"`
	PowerPack       string   `json:"powerPack"`
	Case            string   `json:"case"`
}

type deviceRef struct {
	DeviceUUID string `json:"device_uuid"`
}

// ownedDevice resolves the guard chain device exists -> owned by caller.
func (h *DeviceHandler) ownedDevice(user *model.User, deviceUUID string) (*model.Device, error) {
	device, err := h.Store.GetDevice(deviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	if device.Owner != user.UUID {
		return nil, errs.PermissionDenied
	}
	return device, nil
}

func (h *DeviceHandler) StarterDevice(user *model.User, _ []byte) (gin.H, error) {
	n, err := h.Store.CountDevicesByOwner(user.UUID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errs.AlreadyOwnADevice
	}

	start := catalog.Hardware().StartPC
	parts := buildParts{
		Mainboard:       start.Mainboard,
		CPU:             start.CPU,
		ProcessorCooler: start.ProcessorCooler,
		RAM:             start.RAM,
		GPU:             start.GPU,
		Disk:            start.Disk,
		PowerPack:       start.PowerPack,
		Case:            start.Case,
	}
	device, err := h.assembleDevice(user, parts, true)
	if err != nil {
		return nil, err
	}
	return deviceResponse(device), nil
}

func (h *DeviceHandler) Ping(user *model.User, data []byte) (gin.H, error) {
	var req deviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.Store.GetDevice(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	return gin.H{"online": device.PoweredOn}, nil
}

func (h *DeviceHandler) Info(user *model.User, data []byte) (gin.H, error) {
	var req deviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.Store.GetDevice(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	hardware, err := h.Store.ListHardware(device.UUID)
	if err != nil {
		return nil, err
	}

	resp := deviceResponse(device)
	resp["hardware"] = hardware
	return resp, nil
}

func (h *DeviceHandler) All(user *model.User, _ []byte) (gin.H, error) {
	devices, err := h.Store.ListDevicesByOwner(user.UUID)
	if err != nil {
		return nil, err
	}
	return gin.H{"devices": devices}, nil
}

func (h *DeviceHandler) Power(user *model.User, data []byte) (gin.H, error) {
	var req deviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.ownedDevice(user, req.DeviceUUID)
	if err != nil {
		return nil, err
	}

	device.PoweredOn = !device.PoweredOn
	if err := h.Store.UpdateDevicePower(device.UUID, device.PoweredOn); err != nil {
		return nil, err
	}
	return deviceResponse(device), nil
}

func (h *DeviceHandler) ChangeName(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
		Name       string `json:"name"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.ownedDevice(user, req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if !device.PoweredOn {
		return nil, errs.DevicePoweredOff
	}
	if !deviceNamePattern.MatchString(req.Name) {
		return nil, errs.InvalidName
	}

	device.Name = req.Name
	if err := h.Store.UpdateDeviceName(device.UUID, req.Name); err != nil {
		return nil, err
	}
	return deviceResponse(device), nil
}

func (h *DeviceHandler) Delete(user *model.User, data []byte) (gin.H, error) {
	var req deviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.ownedDevice(user, req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if device.StarterDevice {
		return nil, errs.DeviceIsStarterDevice
	}
	if err := h.Store.DeleteDevice(device.UUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

// Spot picks a random powered-on device anywhere on the net.
func (h *DeviceHandler) Spot(user *model.User, _ []byte) (gin.H, error) {
	device, err := h.Store.RandomPoweredDevice()
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	return deviceResponse(device), nil
}

func (h *DeviceHandler) Create(user *model.User, data []byte) (gin.H, error) {
	n, err := h.Store.CountDevicesByOwner(user.UUID)
	if err != nil {
		return nil, err
	}
	if n >= maxDevices {
		return nil, errs.MaximumDevicesReached
	}

	var parts buildParts
	if err := bind(data, &parts); err != nil {
		return nil, err
	}
	if err := h.validateParts(user, parts); err != nil {
		return nil, err
	}
	if err := h.consumeParts(user, parts); err != nil {
		return nil, err
	}

	device, err := h.assembleDevice(user, parts, false)
	if err != nil {
		return nil, err
	}
	return deviceResponse(device), nil
}

// validateParts runs the shared build checks: catalog existence per element,
// then the required slots, then inventory ownership. Each failure names the
// offending slot.
func (h *DeviceHandler) validateParts(user *model.User, parts buildParts) error {
	for _, slot := range partSlots(parts) {
		for _, name := range slot.names {
			if !catalog.PartExists(slot.slot, name) {
				return errs.ElementPartNotFound(slot.slot)
			}
		}
	}
	for _, slot := range partSlots(parts) {
		if slot.required && len(slot.names) == 0 {
			return errs.MissingPart(slot.slot)
		}
	}

	used := map[string]int{}
	for _, slot := range partSlots(parts) {
		for _, name := range slot.names {
			used[name]++
			owned, err := h.Store.CountInventoryNamed(user.UUID, name)
			if err != nil {
				return err
			}
			if owned < used[name] {
				return errs.PartNotInInventory(slot.slot)
			}
		}
	}
	return nil
}

func (h *DeviceHandler) consumeParts(user *model.User, parts buildParts) error {
	var names []string
	for _, slot := range partSlots(parts) {
		names = append(names, slot.names...)
	}
	return h.Store.ConsumeInventoryElements(user.UUID, names)
}

type partSlot struct {
	slot     string
	names    []string
	required bool
}

func partSlots(parts buildParts) []partSlot {
	single := func(name string) []string {
		if name == "" {
			return nil
		}
		return []string{name}
	}
	return []partSlot{
		{"mainboard", single(parts.Mainboard), true},
		{"cpu", parts.CPU, true},
		{"processorCooler", parts.ProcessorCooler, false},
		{"ram", parts.RAM, true},
		{"gpu", parts.GPU, false},
		{"disk", parts.Disk, true},
		{"powerPack", single(parts.PowerPack), true},
		{"case", single(parts.Case), true},
	}
}

// assembleDevice creates the device row, its hardware elements and the
// workload derived from the part list.
func (h *DeviceHandler) assembleDevice(user *model.User, parts buildParts, starter bool) (*model.Device, error) {
	device := model.Device{
		UUID:          uuid.NewString(),
		Name:          fmt.Sprintf("PC-%04d", rand.Intn(10000)),
		Owner:         user.UUID,
		PoweredOn:     true,
		StarterDevice: starter,
	}
	if err := h.Store.CreateDevice(device); err != nil {
		return nil, err
	}

	for _, slot := range partSlots(parts) {
		for _, name := range slot.names {
			el := model.HardwareElement{
				UUID:            uuid.NewString(),
				DeviceUUID:      device.UUID,
				HardwareType:    slot.slot,
				HardwareElement: name,
			}
			if err := h.Store.AddHardwareElement(el); err != nil {
				return nil, err
			}
		}
	}

	p := catalog.Performance(parts.Mainboard, parts.CPU, parts.RAM, parts.GPU, parts.Disk)
	workload := model.Workload{
		UUID:               device.UUID,
		PerformanceCPU:     p[0],
		PerformanceRAM:     p[1],
		PerformanceGPU:     p[2],
		PerformanceDisk:    p[3],
		PerformanceNetwork: p[4],
	}
	if err := h.Store.SetWorkload(workload); err != nil {
		return nil, err
	}
	return &device, nil
}

func deviceResponse(d *model.Device) gin.H {
	return gin.H{
		"uuid":           d.UUID,
		"name":           d.Name,
		"owner":          d.Owner,
		"powered_on":     d.PoweredOn,
		"starter_device": d.StarterDevice,
	}
}
