package padmanager

import "github.com/Alia5/padlink/pad"

// Gamepad is the manager's record for one physical controller.
type Gamepad struct {
	pad.Controller
	connected bool
}

// Connected reports whether the controller is currently attached.
// Disconnected gamepads stay known to the manager until it is disposed.
func (g *Gamepad) Connected() bool { return g.connected }

// Typed returns the variant controller, e.g. *xbox360.Xbox360.
func (g *Gamepad) Typed() pad.Controller { return g.Controller }
