package handler

import (
	"github.com/gin-gonic/gin"

	"cryptic-server/internal/catalog"
	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
)

// Build validates a part list against catalog and inventory without creating
// a device. It reports the performance the assembled machine would have.
func (h *DeviceHandler) Build(user *model.User, data []byte) (gin.H, error) {
	var parts buildParts
	if err := bind(data, &parts); err != nil {
		return nil, err
	}
	if err := h.validateParts(user, parts); err != nil {
		return nil, err
	}

	p := catalog.Performance(parts.Mainboard, parts.CPU, parts.RAM, parts.GPU, parts.Disk)
	return gin.H{"success": true, "performance": p[:]}, nil
}

// Resources reports per-dimension utilization of a device, clamped to 1.
func (h *DeviceHandler) Resources(user *model.User, data []byte) (gin.H, error) {
	var req deviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	w, err := h.Store.GetWorkload(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errs.DeviceNotFound
	}
	return gin.H{
		"cpu":     utilization(w.UsageCPU, w.PerformanceCPU),
		"gpu":     utilization(w.UsageGPU, w.PerformanceGPU),
		"ram":     utilization(w.UsageRAM, w.PerformanceRAM),
		"disk":    utilization(w.UsageDisk, w.PerformanceDisk),
		"network": utilization(w.UsageNetwork, w.PerformanceNetwork),
	}, nil
}

// Process reports the resource share a single service actually receives: the
// allocation scaled down once the device dimension is oversubscribed.
func (h *DeviceHandler) Process(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		ServiceUUID string `json:"service_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	r, err := h.Store.GetServiceRequirement(req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.ServiceNotFound
	}
	w, err := h.Store.GetWorkload(r.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errs.DeviceNotFound
	}

	// ram and gpu swap slots in the reply; clients have always read them
	// this way round.
	return gin.H{
		"cpu":     r.AllocatedCPU * headroom(w.PerformanceCPU, w.UsageCPU),
		"ram":     r.AllocatedGPU * headroom(w.PerformanceGPU, w.UsageGPU),
		"gpu":     r.AllocatedRAM * headroom(w.PerformanceRAM, w.UsageRAM),
		"disk":    r.AllocatedDisk * headroom(w.PerformanceDisk, w.UsageDisk),
		"network": r.AllocatedNetwork * headroom(w.PerformanceNetwork, w.UsageNetwork),
	}, nil
}

// List returns the full hardware catalog including the starter configuration.
func (h *DeviceHandler) List(user *model.User, _ []byte) (gin.H, error) {
	return gin.H(catalog.HardwareDocument()), nil
}

func utilization(usage, performance float64) float64 {
	if performance <= 0 {
		return 1
	}
	if usage >= performance {
		return 1
	}
	return usage / performance
}

func headroom(performance, usage float64) float64 {
	if usage <= 0 {
		return 1
	}
	if performance >= usage {
		return 1
	}
	return performance / usage
}
