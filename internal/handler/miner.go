package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
)

// minerService resolves a miner by service uuid alone. The caller must own
// the hosting device.
func (h *ServiceHandler) minerService(user *model.User, serviceUUID string) (*model.Service, *model.MinerState, error) {
	svc, err := h.Store.GetServiceByUUID(serviceUUID)
	if err != nil {
		return nil, nil, err
	}
	if svc == nil {
		return nil, nil, errs.ServiceNotFound
	}
	device, err := h.Store.GetDevice(svc.Device)
	if err != nil {
		return nil, nil, err
	}
	if device == nil {
		return nil, nil, errs.DeviceNotFound
	}
	if !device.PoweredOn {
		return nil, nil, errs.DeviceNotOnline
	}
	if device.Owner != user.UUID {
		return nil, nil, errs.PermissionDenied
	}
	miner, err := h.Store.GetMiner(svc.UUID)
	if err != nil {
		return nil, nil, err
	}
	if miner == nil {
		return nil, nil, errs.ServiceNotFound
	}
	return svc, miner, nil
}

func minerResponse(m *model.MinerState) gin.H {
	return gin.H{
		"uuid":    m.UUID,
		"wallet":  m.Wallet,
		"started": m.Started,
		"power":   m.Power,
	}
}

func (h *ServiceHandler) MinerGet(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		ServiceUUID string `json:"service_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, miner, err := h.minerService(user, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	return minerResponse(miner), nil
}

// MinerList lists the miners paying into a wallet together with their
// carrying services.
func (h *ServiceHandler) MinerList(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		WalletUUID string `json:"wallet_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	miners, services, err := h.Store.ListMinersByWallet(req.WalletUUID)
	if err != nil {
		return nil, err
	}
	list := make([]gin.H, 0, len(miners))
	for i := range miners {
		list = append(list, gin.H{
			"service": servicePrivateResponse(&services[i]),
			"miner":   minerResponse(&miners[i]),
		})
	}
	return gin.H{"miners": list}, nil
}

// MinerWallet repoints a miner at another wallet.
func (h *ServiceHandler) MinerWallet(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		ServiceUUID string `json:"service_uuid"`
		WalletUUID  string `json:"wallet_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	_, miner, err := h.minerService(user, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	wallet, err := h.Store.GetWallet(req.WalletUUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errs.WalletNotFound
	}
	miner.Wallet = &wallet.SourceUUID
	if err := h.Store.UpdateMiner(*miner); err != nil {
		return nil, err
	}
	return minerResponse(miner), nil
}

// MinerPower sets the share of device capacity a miner burns. A positive
// power starts the service; starting needs a workload row to draw from.
func (h *ServiceHandler) MinerPower(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		ServiceUUID string  `json:"service_uuid"`
		Power       float64 `json:"power"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	svc, miner, err := h.minerService(user, req.ServiceUUID)
	if err != nil {
		return nil, err
	}
	if req.Power < 0 || req.Power > 1 {
		return nil, errs.InvalidRequest
	}
	if miner.Wallet == nil {
		return nil, errs.WalletNotFound
	}
	wallet, err := h.Store.GetWallet(*miner.Wallet)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errs.WalletNotFound
	}
	if req.Power > 0 {
		workload, err := h.Store.GetWorkload(svc.Device)
		if err != nil {
			return nil, err
		}
		if workload == nil {
			return nil, errs.CouldNotStartService
		}
	}
	miner.Power = req.Power
	miner.Started = time.Now().Unix()
	if err := h.Store.UpdateMiner(*miner); err != nil {
		return nil, err
	}
	if err := h.Store.SetServiceRunning(svc.UUID, req.Power > 0); err != nil {
		return nil, err
	}
	return minerResponse(miner), nil
}
