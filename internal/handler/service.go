package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

// well-known ports; services without one listen nowhere until hacked tooling
// assigns them meaning client-side.
var supportedServices = map[string]int{
	"ssh":        22,
	"telnet":     23,
	"portscan":   0,
	"bruteforce": 0,
	"miner":      0,
}

// ServiceHandler serves the service microservice, including the bruteforce
// and miner specializations.
type ServiceHandler struct {
	Store *store.Store
}

type serviceRef struct {
	DeviceUUID  string `json:"device_uuid"`
	ServiceUUID string `json:"service_uuid"`
}

// locate resolves the device and service pair every service endpoint is
// addressed by. The service is checked first so probing cannot distinguish
// foreign devices from missing ones.
func (h *ServiceHandler) locate(deviceUUID, serviceUUID string) (*model.Device, *model.Service, error) {
	svc, err := h.Store.GetService(deviceUUID, serviceUUID)
	if err != nil {
		return nil, nil, err
	}
	if svc == nil {
		return nil, nil, errs.ServiceNotFound
	}
	device, err := h.Store.GetDevice(deviceUUID)
	if err != nil {
		return nil, nil, err
	}
	if device == nil {
		return nil, nil, errs.DeviceNotFound
	}
	if !device.PoweredOn {
		return nil, nil, errs.DeviceNotOnline
	}
	return device, svc, nil
}

func (h *ServiceHandler) ownedService(user *model.User, deviceUUID, serviceUUID string) (*model.Device, *model.Service, error) {
	device, svc, err := h.locate(deviceUUID, serviceUUID)
	if err != nil {
		return nil, nil, err
	}
	if device.Owner != user.UUID {
		return nil, nil, errs.PermissionDenied
	}
	return device, svc, nil
}

// onlineDevice checks existence and power without any ownership claim.
func (h *ServiceHandler) onlineDevice(deviceUUID string) (*model.Device, error) {
	device, err := h.Store.GetDevice(deviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	if !device.PoweredOn {
		return nil, errs.DeviceNotOnline
	}
	return device, nil
}

func servicePublicResponse(svc *model.Service) gin.H {
	return gin.H{
		"uuid":         svc.UUID,
		"device":       svc.Device,
		"name":         svc.Name,
		"running_port": svc.RunningPort,
	}
}

func servicePrivateResponse(svc *model.Service) gin.H {
	return gin.H{
		"uuid":         svc.UUID,
		"device":       svc.Device,
		"owner":        svc.Owner,
		"name":         svc.Name,
		"running":      svc.Running,
		"running_port": svc.RunningPort,
		"part_owner":   svc.PartOwner,
		"speed":        svc.Speed,
	}
}

func (h *ServiceHandler) PublicInfo(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.locate(req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	return servicePublicResponse(svc), nil
}

func (h *ServiceHandler) PrivateInfo(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	return servicePrivateResponse(svc), nil
}

func (h *ServiceHandler) List(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.onlineDevice(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if device.Owner != user.UUID {
		return nil, errs.PermissionDenied
	}
	services, err := h.Store.ListServices(device.UUID)
	if err != nil {
		return nil, err
	}
	list := make([]gin.H, 0, len(services))
	for i := range services {
		list = append(list, servicePrivateResponse(&services[i]))
	}
	return gin.H{"services": list}, nil
}

func (h *ServiceHandler) Create(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
		Name       string `json:"name"`
		WalletUUID string `json:"wallet_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.onlineDevice(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if device.Owner != user.UUID {
		return nil, errs.PermissionDenied
	}
	port, ok := supportedServices[req.Name]
	if !ok {
		return nil, errs.ServiceNotSupported
	}
	existing, err := h.Store.GetServiceOnDeviceNamed(device.UUID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.AlreadyOwnThisService
	}
	if req.Name == "miner" {
		if req.WalletUUID == "" {
			return nil, errs.InvalidRequest
		}
		wallet, err := h.Store.GetWallet(req.WalletUUID)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return nil, errs.WalletNotFound
		}
	}

	speed := 0.0
	svc := model.Service{
		UUID:        uuid.NewString(),
		Device:      device.UUID,
		Owner:       user.UUID,
		Name:        req.Name,
		Running:     false,
		RunningPort: port,
		Speed:       &speed,
	}
	if err := h.Store.CreateService(svc); err != nil {
		return nil, err
	}
	switch req.Name {
	case "bruteforce":
		if err := h.Store.CreateBruteforce(model.BruteforceAttack{UUID: svc.UUID}); err != nil {
			return nil, err
		}
	case "miner":
		wallet := req.WalletUUID
		if err := h.Store.CreateMiner(model.MinerState{UUID: svc.UUID, Wallet: &wallet}); err != nil {
			return nil, err
		}
	}
	return servicePrivateResponse(&svc), nil
}

func (h *ServiceHandler) Toggle(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if svc.Name == "miner" || svc.Name == "bruteforce" {
		return nil, errs.CannotToggleDirectly
	}
	if !svc.Running {
		blocked, err := h.Store.AnyRunningServiceNamed(svc.Device, svc.Name, svc.UUID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, errs.CouldNotStartService
		}
	}
	svc.Running = !svc.Running
	if err := h.Store.SetServiceRunning(svc.UUID, svc.Running); err != nil {
		return nil, err
	}
	return servicePrivateResponse(svc), nil
}

func (h *ServiceHandler) Delete(user *model.User, data []byte) (gin.H, error) {
	var req serviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, svc, err := h.ownedService(user, req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if svc.Name == "ssh" {
		return nil, errs.CannotDeleteEnforcedService
	}
	if err := h.Store.DeleteService(svc.UUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

// Use runs a service against a target. Only portscan is usable today; it
// reports the running services of the target device.
func (h *ServiceHandler) Use(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID   string `json:"device_uuid"`
		ServiceUUID  string `json:"service_uuid"`
		TargetDevice string `json:"target_device"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, svc, err := h.locate(req.DeviceUUID, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if device.Owner != user.UUID && (svc.PartOwner == nil || *svc.PartOwner != user.UUID) {
		return nil, errs.PermissionDenied
	}
	if svc.Name != "portscan" {
		return nil, errs.ServiceCannotBeUsed
	}
	if req.TargetDevice == "" {
		return nil, errs.InvalidRequest
	}
	services, err := h.Store.ListServices(req.TargetDevice)
	if err != nil {
		return nil, err
	}
	found := make([]gin.H, 0, len(services))
	for i := range services {
		if services[i].Running {
			found = append(found, servicePublicResponse(&services[i]))
		}
	}
	return gin.H{"services": found}, nil
}

// PartOwner reports whether the caller gained a foothold on a foreign device
// through any of its services.
func (h *ServiceHandler) PartOwner(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	device, err := h.onlineDevice(req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	access, err := h.Store.HasPartOwnerAccess(device.UUID, user.UUID)
	if err != nil {
		return nil, err
	}
	return gin.H{"ok": access}, nil
}

func (h *ServiceHandler) ListPartOwner(user *model.User, data []byte) (gin.H, error) {
	services, err := h.Store.ListServicesByPartOwner(user.UUID)
	if err != nil {
		return nil, err
	}
	list := make([]gin.H, 0, len(services))
	for i := range services {
		list = append(list, servicePrivateResponse(&services[i]))
	}
	return gin.H{"services": list}, nil
}
