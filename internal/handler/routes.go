package handler

import "cryptic-server/internal/store"

// NewGameRouter wires every microservice endpoint onto one router.
func NewGameRouter(st *store.Store) *Router {
	device := &DeviceHandler{Store: st}
	file := &FileHandler{Store: st}
	inventory := &InventoryHandler{Store: st}
	currency := &CurrencyHandler{Store: st}
	network := &NetworkHandler{Store: st}
	service := &ServiceHandler{Store: st}

	r := NewRouter()

	r.Handle("device", []string{"device", "starter_device"}, device.StarterDevice)
	r.Handle("device", []string{"device", "ping"}, device.Ping)
	r.Handle("device", []string{"device", "info"}, device.Info)
	r.Handle("device", []string{"device", "all"}, device.All)
	r.Handle("device", []string{"device", "power"}, device.Power)
	r.Handle("device", []string{"device", "change_name"}, device.ChangeName)
	r.Handle("device", []string{"device", "delete"}, device.Delete)
	r.Handle("device", []string{"device", "spot"}, device.Spot)
	r.Handle("device", []string{"device", "create"}, device.Create)

	r.Handle("device", []string{"hardware", "build"}, device.Build)
	r.Handle("device", []string{"hardware", "resources"}, device.Resources)
	r.Handle("device", []string{"hardware", "process"}, device.Process)
	r.Handle("device", []string{"hardware", "list"}, device.List)

	r.Handle("device", []string{"file", "all"}, file.All)
	r.Handle("device", []string{"file", "info"}, file.Info)
	r.Handle("device", []string{"file", "create"}, file.Create)
	r.Handle("device", []string{"file", "update"}, file.Update)
	r.Handle("device", []string{"file", "delete"}, file.Delete)
	r.Handle("device", []string{"file", "move"}, file.Move)

	r.Handle("inventory", []string{"inventory", "list"}, inventory.List)
	r.Handle("inventory", []string{"inventory", "trade"}, inventory.Trade)
	r.Handle("inventory", []string{"shop", "list"}, inventory.ShopList)
	r.Handle("inventory", []string{"shop", "info"}, inventory.ShopInfo)
	r.Handle("inventory", []string{"shop", "buy"}, inventory.ShopBuy)

	r.Handle("currency", []string{"create"}, currency.Create)
	r.Handle("currency", []string{"get"}, currency.Get)
	r.Handle("currency", []string{"send"}, currency.Send)
	r.Handle("currency", []string{"transactions"}, currency.Transactions)
	r.Handle("currency", []string{"list"}, currency.List)
	r.Handle("currency", []string{"reset"}, currency.Reset)
	r.Handle("currency", []string{"delete"}, currency.Delete)

	r.Handle("network", []string{"name"}, network.Name)
	r.Handle("network", []string{"get"}, network.Get)
	r.Handle("network", []string{"public"}, network.Public)
	r.Handle("network", []string{"create"}, network.Create)
	r.Handle("network", []string{"members"}, network.Members)
	r.Handle("network", []string{"member"}, network.Member)
	r.Handle("network", []string{"owner"}, network.Owner)
	r.Handle("network", []string{"request"}, network.Request)
	r.Handle("network", []string{"invite"}, network.Invite)
	r.Handle("network", []string{"accept"}, network.Accept)
	r.Handle("network", []string{"deny"}, network.Deny)
	r.Handle("network", []string{"revoke"}, network.Revoke)
	r.Handle("network", []string{"requests"}, network.Requests)
	r.Handle("network", []string{"invitations"}, network.Invitations)
	r.Handle("network", []string{"invitations", "network"}, network.InvitationsOfNetwork)
	r.Handle("network", []string{"kick"}, network.Kick)
	r.Handle("network", []string{"leave"}, network.Leave)
	r.Handle("network", []string{"delete"}, network.Delete)

	r.Handle("service", []string{"public_info"}, service.PublicInfo)
	r.Handle("service", []string{"private_info"}, service.PrivateInfo)
	r.Handle("service", []string{"list"}, service.List)
	r.Handle("service", []string{"create"}, service.Create)
	r.Handle("service", []string{"toggle"}, service.Toggle)
	r.Handle("service", []string{"delete"}, service.Delete)
	r.Handle("service", []string{"use"}, service.Use)
	r.Handle("service", []string{"part_owner"}, service.PartOwner)
	r.Handle("service", []string{"list_part_owner"}, service.ListPartOwner)
	r.Handle("service", []string{"bruteforce", "attack"}, service.BruteforceAttack)
	r.Handle("service", []string{"bruteforce", "status"}, service.BruteforceStatus)
	r.Handle("service", []string{"bruteforce", "stop"}, service.BruteforceStop)
	r.Handle("service", []string{"miner", "get"}, service.MinerGet)
	r.Handle("service", []string{"miner", "list"}, service.MinerList)
	r.Handle("service", []string{"miner", "wallet"}, service.MinerWallet)
	r.Handle("service", []string{"miner", "power"}, service.MinerPower)

	return r
}
