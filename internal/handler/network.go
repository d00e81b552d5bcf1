package handler

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

const maxNetworksPerDevice = 3

var networkNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_#.]{1,24}$`)

// NetworkHandler serves the network microservice endpoints.
type NetworkHandler struct {
	Store *store.Store
}

type networkRef struct {
	UUID string `json:"uuid"`
}

type networkDeviceRef struct {
	Device string `json:"device"`
}

// onlineOwnedDevice resolves a device that must belong to the caller and be
// powered on. Unknown and foreign devices are indistinguishable to the caller.
func (h *NetworkHandler) onlineOwnedDevice(user *model.User, deviceUUID string) (*model.Device, error) {
	device, err := h.Store.GetDevice(deviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil || device.Owner != user.UUID {
		return nil, errs.NoPermissions
	}
	if !device.PoweredOn {
		return nil, errs.DeviceNotOnline
	}
	return device, nil
}

// networkOwnerDevice resolves the device a network is anchored to and checks
// the caller controls it.
func (h *NetworkHandler) networkOwnerDevice(user *model.User, network *model.Network) (*model.Device, error) {
	return h.onlineOwnedDevice(user, network.Owner)
}

func (h *NetworkHandler) network(networkUUID string) (*model.Network, error) {
	network, err := h.Store.GetNetwork(networkUUID)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, errs.NetworkNotFound
	}
	return network, nil
}

func networkResponse(n *model.Network) gin.H {
	return gin.H{
		"uuid":   n.UUID,
		"name":   n.Name,
		"owner":  n.Owner,
		"hidden": n.Hidden,
	}
}

func invitationResponse(inv *model.NetworkInvitation) gin.H {
	return gin.H{
		"uuid":    inv.UUID,
		"device":  inv.Device,
		"network": inv.Network,
		"request": inv.Request,
	}
}

func networkListResponse(networks []model.Network) gin.H {
	list := make([]gin.H, 0, len(networks))
	for i := range networks {
		list = append(list, networkResponse(&networks[i]))
	}
	return gin.H{"networks": list}
}

func invitationListResponse(invitations []model.NetworkInvitation) gin.H {
	list := make([]gin.H, 0, len(invitations))
	for i := range invitations {
		list = append(list, invitationResponse(&invitations[i]))
	}
	return gin.H{"invitations": list}
}

// Name looks a public handle up by its unique name.
func (h *NetworkHandler) Name(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		Name string `json:"name"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.Store.GetNetworkByName(req.Name)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, errs.NetworkNotFound
	}
	return networkResponse(network), nil
}

func (h *NetworkHandler) Get(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	return networkResponse(network), nil
}

func (h *NetworkHandler) Public(user *model.User, data []byte) (gin.H, error) {
	networks, err := h.Store.ListPublicNetworks()
	if err != nil {
		return nil, err
	}
	return networkListResponse(networks), nil
}

func (h *NetworkHandler) Create(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		Device string `json:"device"`
		Name   string `json:"name"`
		Hidden bool   `json:"hidden"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.onlineOwnedDevice(user, req.Device); err != nil {
		return nil, err
	}
	if !networkNamePattern.MatchString(req.Name) {
		return nil, errs.InvalidName
	}
	existing, err := h.Store.GetNetworkByName(req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NameAlreadyInUse
	}
	count, err := h.Store.CountNetworksByOwner(req.Device)
	if err != nil {
		return nil, err
	}
	if count >= maxNetworksPerDevice {
		return nil, errs.MaximumNetworksReached
	}
	network, err := h.Store.CreateNetwork(req.Name, req.Device, req.Hidden)
	if err != nil {
		return nil, err
	}
	return networkResponse(network), nil
}

func (h *NetworkHandler) Members(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.network(req.UUID); err != nil {
		return nil, err
	}
	members, err := h.Store.ListNetworkMembers(req.UUID)
	if err != nil {
		return nil, err
	}
	list := make([]gin.H, 0, len(members))
	for _, m := range members {
		list = append(list, gin.H{"uuid": m.UUID, "network": m.Network, "device": m.Device})
	}
	return gin.H{"members": list}, nil
}

// Member lists the networks a device participates in.
func (h *NetworkHandler) Member(user *model.User, data []byte) (gin.H, error) {
	var req networkDeviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	networks, err := h.Store.ListNetworksByMember(req.Device)
	if err != nil {
		return nil, err
	}
	return networkListResponse(networks), nil
}

// Owner lists the networks anchored to a device.
func (h *NetworkHandler) Owner(user *model.User, data []byte) (gin.H, error) {
	var req networkDeviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	networks, err := h.Store.ListNetworksByOwner(req.Device)
	if err != nil {
		return nil, err
	}
	return networkListResponse(networks), nil
}

// isMember treats the owning device as an implicit member.
func (h *NetworkHandler) isMember(network *model.Network, deviceUUID string) (bool, error) {
	if network.Owner == deviceUUID {
		return true, nil
	}
	return h.Store.IsNetworkMember(network.UUID, deviceUUID)
}

// Request files a join request from one of the caller's devices.
func (h *NetworkHandler) Request(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		UUID   string `json:"uuid"`
		Device string `json:"device"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.onlineOwnedDevice(user, req.Device); err != nil {
		return nil, err
	}
	member, err := h.isMember(network, req.Device)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, errs.AlreadyMemberOfNetwork
	}
	pending, err := h.Store.GetInvitationFor(network.UUID, req.Device)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, errs.InvitationAlreadyExists
	}
	invitation, err := h.Store.CreateInvitation(network.UUID, req.Device, true)
	if err != nil {
		return nil, err
	}
	return invitationResponse(invitation), nil
}

// Invite asks another device to join a network. The target must be reachable,
// which hides whether it exists at all.
func (h *NetworkHandler) Invite(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		UUID   string `json:"uuid"`
		Device string `json:"device"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	target, err := h.Store.GetDevice(req.Device)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.PoweredOn {
		return nil, errs.DeviceNotOnline
	}
	member, err := h.isMember(network, req.Device)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, errs.AlreadyMemberOfNetwork
	}
	pending, err := h.Store.GetInvitationFor(network.UUID, req.Device)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, errs.InvitationAlreadyExists
	}
	invitation, err := h.Store.CreateInvitation(network.UUID, req.Device, false)
	if err != nil {
		return nil, err
	}
	return invitationResponse(invitation), nil
}

// invitationActor resolves the device entitled to act on an invitation: the
// network owner for join requests, the invited device otherwise.
func (h *NetworkHandler) invitationActor(user *model.User, inv *model.NetworkInvitation) error {
	if inv.Request {
		network, err := h.network(inv.Network)
		if err != nil {
			return err
		}
		_, err = h.networkOwnerDevice(user, network)
		return err
	}
	_, err := h.onlineOwnedDevice(user, inv.Device)
	return err
}

func (h *NetworkHandler) invitation(invitationUUID string) (*model.NetworkInvitation, error) {
	inv, err := h.Store.GetInvitation(invitationUUID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, errs.InvitationNotFound
	}
	return inv, nil
}

func (h *NetworkHandler) Accept(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	inv, err := h.invitation(req.UUID)
	if err != nil {
		return nil, err
	}
	if err := h.invitationActor(user, inv); err != nil {
		return nil, err
	}
	if err := h.Store.AddNetworkMember(inv.Network, inv.Device); err != nil {
		return nil, err
	}
	if err := h.Store.DeleteInvitation(inv.UUID); err != nil {
		return nil, err
	}
	return gin.H{"result": true}, nil
}

func (h *NetworkHandler) Deny(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	inv, err := h.invitation(req.UUID)
	if err != nil {
		return nil, err
	}
	if err := h.invitationActor(user, inv); err != nil {
		return nil, err
	}
	if err := h.Store.DeleteInvitation(inv.UUID); err != nil {
		return nil, err
	}
	return gin.H{"result": true}, nil
}

// Revoke withdraws an invitation or request. Only the network side may do
// this, regardless of which direction the invitation went.
func (h *NetworkHandler) Revoke(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	inv, err := h.invitation(req.UUID)
	if err != nil {
		return nil, err
	}
	network, err := h.network(inv.Network)
	if err != nil {
		return nil, err
	}
	if _, err := h.networkOwnerDevice(user, network); err != nil {
		return nil, err
	}
	if err := h.Store.DeleteInvitation(inv.UUID); err != nil {
		return nil, err
	}
	return gin.H{"result": true}, nil
}

// Requests lists pending join requests; only the network owner sees them.
func (h *NetworkHandler) Requests(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.networkOwnerDevice(user, network); err != nil {
		return nil, err
	}
	invitations, err := h.Store.ListInvitationsByNetwork(network.UUID, true)
	if err != nil {
		return nil, err
	}
	return invitationListResponse(invitations), nil
}

// Invitations lists the open invitations addressed to one of the caller's
// devices.
func (h *NetworkHandler) Invitations(user *model.User, data []byte) (gin.H, error) {
	var req networkDeviceRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.onlineOwnedDevice(user, req.Device); err != nil {
		return nil, err
	}
	invitations, err := h.Store.ListInvitationsByDevice(req.Device, false)
	if err != nil {
		return nil, err
	}
	return invitationListResponse(invitations), nil
}

// InvitationsOfNetwork lists outgoing invitations of a network the caller owns.
func (h *NetworkHandler) InvitationsOfNetwork(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.networkOwnerDevice(user, network); err != nil {
		return nil, err
	}
	invitations, err := h.Store.ListInvitationsByNetwork(network.UUID, false)
	if err != nil {
		return nil, err
	}
	return invitationListResponse(invitations), nil
}

func (h *NetworkHandler) Leave(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		UUID   string `json:"uuid"`
		Device string `json:"device"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.onlineOwnedDevice(user, req.Device); err != nil {
		return nil, err
	}
	if network.Owner == req.Device {
		return nil, errs.CannotLeaveOwnNetwork
	}
	removed, err := h.Store.RemoveNetworkMember(network.UUID, req.Device)
	if err != nil {
		return nil, err
	}
	return gin.H{"result": removed}, nil
}

func (h *NetworkHandler) Kick(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		UUID   string `json:"uuid"`
		Device string `json:"device"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.networkOwnerDevice(user, network); err != nil {
		return nil, err
	}
	if network.Owner == req.Device {
		return nil, errs.CannotKickOwner
	}
	removed, err := h.Store.RemoveNetworkMember(network.UUID, req.Device)
	if err != nil {
		return nil, err
	}
	return gin.H{"result": removed}, nil
}

// Delete tears a network down together with its memberships and invitations.
func (h *NetworkHandler) Delete(user *model.User, data []byte) (gin.H, error) {
	var req networkRef
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	network, err := h.network(req.UUID)
	if err != nil {
		return nil, err
	}
	if _, err := h.networkOwnerDevice(user, network); err != nil {
		return nil, err
	}
	if err := h.Store.DeleteNetwork(network.UUID); err != nil {
		return nil, err
	}
	return gin.H{"result": true}, nil
}
