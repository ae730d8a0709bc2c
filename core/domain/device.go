package domain

import "time"

// ProvisionState is the device's position in the C3 handshake (spec §4.3).
type ProvisionState int

const (
	Unprovisioned ProvisionState = iota
	Temporary                    // holds a PolicyKey issued by request #1, awaiting echo
	Provisioned                  // holds the final PolicyKey issued by request #2
)

func (s ProvisionState) String() string {
	switch s {
	case Unprovisioned:
		return "unprovisioned"
	case Temporary:
		return "temporary"
	case Provisioned:
		return "provisioned"
	default:
		return "unknown"
	}
}

// Device is keyed by (UserID, DeviceID) and is never destroyed by the core
// (spec §3). PolicyKey 0 is the reserved "unset" sentinel (spec §4.3).
type Device struct {
	DeviceID        string
	DeviceType      string
	UserID          int64
	PolicyKey       uint32
	State           ProvisionState
	ProtocolVersion string
	FirstSeen       time.Time
	LastSeen        time.Time
}

// Provisioned reports whether the device currently holds a final PolicyKey.
func (d *Device) Provisioned() bool {
	return d.State == Provisioned
}
