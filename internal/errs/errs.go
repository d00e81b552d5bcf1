// Package errs defines the typed domain errors returned through the RPC
// layer. Every failure carries a stable machine-readable tag that clients
// branch on, plus optional positional params (e.g. the hardware slot that
// failed validation).
package errs

type Error struct {
	Tag    string
	Params []string
}

func (e *Error) Error() string { return e.Tag }

// New returns a domain error with the given tag and optional params.
func New(tag string, params ...string) *Error {
	return &Error{Tag: tag, Params: params}
}

// Not-found family. Existence is always checked before permission.
var (
	DeviceNotFound     = New("device_not_found")
	FileNotFound       = New("file_not_found")
	ServiceNotFound    = New("service_not_found")
	NetworkNotFound    = New("network_not_found")
	InvitationNotFound = New("invitation_not_found")
	ItemNotFound       = New("item_not_found")
	WalletNotFound     = New("wallet_not_found")
	UnknownSourceOrDestination = New("unknown_source_or_destination")
	UserUUIDDoesNotExist       = New("user_uuid_does_not_exist")
	ParentDirectoryNotFound    = New("parent_directory_not_found")
)

// Permission / ownership family.
var (
	PermissionDenied = New("permission_denied")
	NoPermissions    = New("no_permissions")
)

// State-conflict family.
var (
	DevicePoweredOff            = New("device_powered_off")
	DeviceNotOnline             = New("device_not_online")
	AlreadyOwnADevice           = New("already_own_a_device")
	DeviceIsStarterDevice       = New("device_is_starter_device")
	MaximumDevicesReached       = New("maximum_devices_reached")
	AlreadyOwnAWallet           = New("already_own_a_wallet")
	NotEnoughCoins              = New("not_enough_coins")
	AlreadyMemberOfNetwork      = New("already_member_of_network")
	InvitationAlreadyExists     = New("invitation_already_exists")
	MaximumNetworksReached      = New("maximum_networks_reached")
	NameAlreadyInUse            = New("name_already_in_use")
	CannotKickOwner             = New("cannot_kick_owner")
	CannotLeaveOwnNetwork       = New("cannot_leave_own_network")
	CannotTradeWithYourself     = New("cannot_trade_with_yourself")
	AlreadyOwnThisService       = New("already_own_this_service")
	CannotDeleteEnforcedService = New("cannot_delete_enforced_service")
	CannotToggleDirectly        = New("cannot_toggle_directly")
	CouldNotStartService        = New("could_not_start_service")
	ServiceNotRunning           = New("service_not_running")
	AttackAlreadyRunning        = New("attack_already_running")
	AttackNotRunning            = New("attack_not_running")
	FileAlreadyExists           = New("file_already_exists")
	DirectoriesCanNotBeUpdated  = New("directories_can_not_be_updated")
	DirectoryCanNotHaveTextContent = New("directory_can_not_have_textcontent")
	CanNotMoveDirIntoItself        = New("can_not_move_dir_into_itself")
)

// Validation family. Rejected before any mutation.
var (
	InvalidName         = New("invalid_name")
	InvalidRequest      = New("invalid_request")
	ServiceNotSupported = New("service_not_supported")
	ServiceCannotBeUsed = New("service_cannot_be_used")
)

// Hardware build failures carry the offending slot name as a param.
func ElementPartNotFound(part string) *Error { return New("element_part_not_found", part) }
func PartNotInInventory(part string) *Error  { return New("part_not_in_inventory", part) }
func MissingPart(part string) *Error         { return New("missing_part", part) }
