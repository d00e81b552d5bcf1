package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
)

// attackProgress extrapolates the stored progress by the time the attack has
// been running at the service's speed, capped at 1.0. The stored snapshot
// stays the source of truth; nothing ticks in the background.
func attackProgress(attack *model.BruteforceAttack, svc *model.Service, now time.Time) float64 {
	speed := 0.0
	if svc.Speed != nil {
		speed = *svc.Speed
	}
	progress := attack.Progress
	if attack.Started > 0 {
		elapsed := now.Unix() - attack.Started
		if elapsed > 0 {
			progress += float64(elapsed) * speed
		}
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// BruteforceAttack points a bruteforce service at a target service and starts
// it. Starting needs a workload row on the attacking device to draw resources
// from.
func (h *ServiceHandler) BruteforceAttack(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID    string `json:"device_uuid"`
		ServiceUUID   string `json:"service_uuid"`
		TargetDevice  string `json:"target_device"`
		TargetService string `json:"target_service"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if svc.Running {
		return nil, errs.AttackAlreadyRunning
	}
	target, err := h.Store.GetService(req.TargetDevice, req.TargetService)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errs.ServiceNotFound
	}
	if !target.Running {
		return nil, errs.ServiceNotRunning
	}
	workload, err := h.Store.GetWorkload(svc.Device)
	if err != nil {
		return nil, err
	}
	if workload == nil {
		return nil, errs.CouldNotStartService
	}

	attack := model.BruteforceAttack{
		UUID:          svc.UUID,
		Started:       time.Now().Unix(),
		TargetDevice:  req.TargetDevice,
		TargetService: req.TargetService,
		Progress:      0,
	}
	existing, err := h.Store.GetBruteforce(svc.UUID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		err = h.Store.CreateBruteforce(attack)
	} else {
		err = h.Store.UpdateBruteforce(attack)
	}
	if err != nil {
		return nil, err
	}
	if err := h.Store.SetServiceRunning(svc.UUID, true); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func (h *ServiceHandler) BruteforceStatus(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	attack, err := h.Store.GetBruteforce(svc.UUID)
	if err != nil {
		return nil, err
	}
	if attack == nil || !svc.Running {
		return nil, errs.AttackNotRunning
	}
	return gin.H{
		"uuid":           attack.UUID,
		"started":        attack.Started,
		"target_device":  attack.TargetDevice,
		"target_service": attack.TargetService,
		"progress":       attackProgress(attack, svc, time.Now()),
	}, nil
}

// BruteforceStop halts a running attack. If enough progress accumulated the
// caller becomes part owner of the target service.
func (h *ServiceHandler) BruteforceStop(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	attack, err := h.Store.GetBruteforce(svc.UUID)
	if err != nil {
		return nil, err
	}
	if attack == nil {
		return nil, errs.AttackNotRunning
	}
	if attack.Started == 0 {
		return nil, errs.ServiceNotRunning
	}

	progress := attackProgress(attack, svc, time.Now())
	access := progress >= 1
	if access {
		owner := user.UUID
		if err := h.Store.SetServicePartOwner(attack.TargetService, &owner); err != nil {
			return nil, err
		}
	}
	if err := h.Store.SetServiceRunning(svc.UUID, false); err != nil {
		return nil, err
	}
	reset := model.BruteforceAttack{
		UUID:          attack.UUID,
		Started:       0,
		TargetDevice:  attack.TargetDevice,
		TargetService: attack.TargetService,
		Progress:      0,
	}
	if err := h.Store.UpdateBruteforce(reset); err != nil {
		return nil, err
	}
	return gin.H{
		"ok":            true,
		"access":        access,
		"progress":      progress,
		"target_device": attack.TargetDevice,
	}, nil
}
