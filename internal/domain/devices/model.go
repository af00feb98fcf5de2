package devices

import "time"

type DeviceClass string

const (
	DeviceClassIOS     DeviceClass = "ios"
	DeviceClassAndroid DeviceClass = "android"
	DeviceClassWeb     DeviceClass = "web"
)

func ParseDeviceClass(value string) (DeviceClass, bool) {
	switch DeviceClass(value) {
	case DeviceClassIOS, DeviceClassAndroid, DeviceClassWeb:
		return DeviceClass(value), true
	default:
		return "", false
	}
}

// DeviceSession is one (user, device) pair. The device id is generated by
// the client and stable across reinstalls of the same logical device.
// Sessions are deactivated on logout but never deleted; the sync log
// references them for audit.
type DeviceSession struct {
	ID              string      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string      `gorm:"type:uuid;not null;uniqueIndex:idx_device_sessions_user_device" json:"user_id"`
	DeviceID        string      `gorm:"not null;uniqueIndex:idx_device_sessions_user_device" json:"device_id"`
	DeviceClass     DeviceClass `gorm:"not null" json:"device_class"`
	PushToken       *string     `json:"push_token,omitempty"`
	LastPullAt      *time.Time  `json:"last_pull_at,omitempty"`
	LastPushAt      *time.Time  `json:"last_push_at,omitempty"`
	LastDataVersion *string     `json:"last_data_version,omitempty"`
	Active          bool        `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DeviceSession) TableName() string {
	return "device_sessions"
}

type RegisterInput struct {
	UserID      string
	DeviceID    string
	DeviceClass string
	PushToken   *string
}
