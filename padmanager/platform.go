package padmanager

import "github.com/Alia5/padlink/pad"

// Enumerator is implemented by platforms that can list the attached controllers.
type Enumerator interface {
	// Gamepads returns a descriptor for every attached controller.
	Gamepads() ([]*pad.Descriptor, error)
}

// Notifier is implemented by platforms that announce connects and disconnects.
type Notifier interface {
	// Watch delivers notifications to h until stop is called. Notifications
	// must be delivered on the goroutine that drives the manager's scheduler.
	Watch(h Handler) (stop func(), err error)
}

// Handler receives platform connect/disconnect notifications.
type Handler interface {
	GamepadConnected(d *pad.Descriptor)
	GamepadDisconnected(index int)
}

// ReportLogger receives the device report of every controller refreshed by a tick.
type ReportLogger interface {
	Log(index int, id string, report []byte)
}
