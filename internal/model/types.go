package model

// User is an account. The password field holds the argon2id hash, never the
// plain credential. Last is bumped on every authenticated action.
type User struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Password string `json:"-"`
	Created  int64  `json:"created"`
	Last     int64  `json:"last"`
}

// Session binds an opaque token to a user. Tokens are UUIDv4 strings and are
// individually revocable on logout.
type Session struct {
	UUID    string
	User    string
	Token   string
	Created int64
	Valid   bool
}

type Device struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	PoweredOn     bool   `json:"powered_on"`
	StarterDevice bool   `json:"starter_device"`
}

// HardwareElement is one installed part slot of a device.
type HardwareElement struct {
	UUID            string `json:"uuid"`
	DeviceUUID      string `json:"device_uuid"`
	HardwareType    string `json:"hardware_type"`
	HardwareElement string `json:"hardware_element"`
}

// Workload holds a device's resource capacity and current usage across the
// five performance dimensions.
type Workload struct {
	UUID               string
	PerformanceCPU     float64
	PerformanceGPU     float64
	PerformanceRAM     float64
	PerformanceDisk    float64
	PerformanceNetwork float64
	UsageCPU           float64
	UsageGPU           float64
	UsageRAM           float64
	UsageDisk          float64
	UsageNetwork       float64
}

// ServiceRequirement is the absolute resource demand one running service has
// registered against its device.
type ServiceRequirement struct {
	ServiceUUID      string
	DeviceUUID       string
	AllocatedCPU     float64
	AllocatedRAM     float64
	AllocatedGPU     float64
	AllocatedDisk    float64
	AllocatedNetwork float64
}

// File is a node of a device's file tree. Directories have empty content and
// a nil ParentDirUUID marks a root entry.
type File struct {
	UUID          string  `json:"uuid"`
	Device        string  `json:"device"`
	Filename      string  `json:"filename"`
	Content       string  `json:"content"`
	IsDirectory   bool    `json:"is_directory"`
	ParentDirUUID *string `json:"parent_dir_uuid"`
}

type InventoryElement struct {
	ElementUUID string `json:"element_uuid"`
	ElementName string `json:"element_name"`
	RelatedMS   string `json:"related_ms"`
	Owner       string `json:"owner"`
}

// Wallet access is capability-style: callers must present both the uuid and
// the 10-hex-digit key.
type Wallet struct {
	TimeStamp  int64  `json:"time_stamp"`
	SourceUUID string `json:"source_uuid"`
	Key        string `json:"key"`
	Amount     int64  `json:"amount"`
	UserUUID   string `json:"user_uuid"`
}

type Transaction struct {
	ID              int64  `json:"id"`
	TimeStamp       int64  `json:"time_stamp"`
	SourceUUID      string `json:"source_uuid"`
	DestinationUUID string `json:"destination_uuid"`
	SendAmount      int64  `json:"send_amount"`
	Usage           string `json:"usage"`
	Origin          int    `json:"origin"`
}

type Network struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	Hidden bool   `json:"hidden"`
}

type NetworkMember struct {
	UUID    string `json:"uuid"`
	Device  string `json:"device"`
	Network string `json:"network"`
}

// NetworkInvitation with Request=true is a join request awaiting the owner;
// Request=false is an owner invitation awaiting the device.
type NetworkInvitation struct {
	UUID    string `json:"uuid"`
	Device  string `json:"device"`
	Network string `json:"network"`
	Request bool   `json:"request"`
}

// Service is a named process hosted on a device. PartOwner grants a second
// user read access without ownership. Speed is only set for specialized
// services (bruteforce, miner).
type Service struct {
	UUID        string   `json:"uuid"`
	Device      string   `json:"device"`
	Owner       string   `json:"owner"`
	Name        string   `json:"name"`
	Running     bool     `json:"running"`
	RunningPort int      `json:"running_port"`
	PartOwner   *string  `json:"part_owner"`
	Speed       *float64 `json:"speed"`
}

// BruteforceAttack shares its uuid with the owning service row.
type BruteforceAttack struct {
	UUID          string  `json:"uuid"`
	Started       int64   `json:"started"`
	TargetDevice  string  `json:"target_device"`
	TargetService string  `json:"target_service"`
	Progress      float64 `json:"progress"`
}

// MinerState shares its uuid with the owning service row. Power is the
// fraction of device capacity dedicated to mining.
type MinerState struct {
	UUID    string  `json:"uuid"`
	Wallet  *string `json:"wallet"`
	Started int64   `json:"started"`
	Power   float64 `json:"power"`
}
