package registry

import (
	_ "github.com/Alia5/padlink/pad/dualshock4" // Register dualshock4 variant
	_ "github.com/Alia5/padlink/pad/generic"    // Register generic variant
	_ "github.com/Alia5/padlink/pad/xbox360"    // Register xbox360 variant
)
