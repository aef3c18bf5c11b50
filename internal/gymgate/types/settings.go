package types

import "time"

type DeviceType string

const (
	DeviceTypeCloud DeviceType = "cloud" // vendor-cloud managed, addressed by serial number
	DeviceTypeLocal DeviceType = "local" // on-premise controller, addressed by IP
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusUnknown SyncStatus = "unknown"
)

// Device is one access-control unit configured for a branch. The list is
// owned by the branch settings row and replaced wholesale on every save.
type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         DeviceType `json:"type"`
	SerialNumber string     `json:"serial_number,omitempty"` // cloud devices
	IP           string     `json:"ip,omitempty"`            // local devices
	Port         int        `json:"port,omitempty"`
	Username     string     `json:"username,omitempty"`
	Password     string     `json:"password,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// BranchSettings is the per-branch vendor integration state: credentials,
// the device list, and the poller's resumption/sync bookkeeping.
type BranchSettings struct {
	BranchID  string   `json:"branch_id"`
	APIURL    string   `json:"api_url"`
	AppKey    string   `json:"app_key"`
	AppSecret string   `json:"app_secret"`
	Devices   []Device `json:"devices"`
	IsActive  bool     `json:"is_active"`

	// Set once a vendor subscription exists; durable until explicitly
	// invalidated.
	SubscriptionID string `json:"subscription_id,omitempty"`

	// Opaque vendor cursor. Only ever advances; sole authority for
	// resumption.
	LastOffset string `json:"last_offset,omitempty"`

	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
}

// ActiveDevice returns the first active device carrying an id, or nil.
// Used by registration to pick the target unit for a new person.
func (s *BranchSettings) ActiveDevice() *Device {
	for i := range s.Devices {
		d := &s.Devices[i]
		if d.IsActive && d.ID != "" {
			return d
		}
	}
	return nil
}
