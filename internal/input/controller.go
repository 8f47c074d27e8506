// Package input implements NES controller handling: the serial
// shift-register protocol, a turbo-fire bitmask, and SELECT+START
// soft-reset detection.
package input

// Button represents NES controller buttons.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one NES controller port's shift register.
type Controller struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool

	buttonSnapshot uint8
	bitPosition    uint8

	// turbo is the bitmask of buttons configured for turbo fire; turboOn
	// toggles high/low every turboPeriod frames, ANDed into buttons so a
	// turbo button only reads as pressed on alternating polls.
	turbo       uint8
	turboOn     bool
	turboPeriod uint8
	turboTick   uint8
}

// New creates a Controller with no buttons held and turbo disabled.
func New() *Controller {
	return &Controller{turboPeriod: 4}
}

// SetButton sets or clears one button's held state.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all eight button states at once, in NES button
// order (A, B, Select, Start, Up, Down, Left, Right).
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	order := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, held := range buttons {
		if held {
			c.buttons |= uint8(order[i])
		}
	}
}

// SetTurbo configures which buttons fire repeatedly while held, and how
// many poll periods (frames) each on/off half-cycle lasts.
func (c *Controller) SetTurbo(mask uint8, period uint8) {
	c.turbo = mask
	if period == 0 {
		period = 1
	}
	c.turboPeriod = period
}

// TickTurbo advances the turbo oscillator; called once per frame by the
// scheduler so turbo cadence is independent of controller poll rate.
func (c *Controller) TickTurbo() {
	c.turboTick++
	if c.turboTick >= c.turboPeriod {
		c.turboTick = 0
		c.turboOn = !c.turboOn
	}
}

// IsPressed reports whether button is currently pressed, after applying
// the turbo mask.
func (c *Controller) IsPressed(button Button) bool {
	effective := c.buttons
	if !c.turboOn {
		effective &^= c.turbo
	}
	return effective&uint8(button) != 0
}

// SoftReset reports whether SELECT+START are both held, the convention
// several games use as a software reset combo; the scheduler polls this
// once per frame and triggers Scheduler.Reset on the frame the combo is
// first held.
func (c *Controller) SoftReset() bool {
	const combo = uint8(ButtonSelect | ButtonStart)
	return c.buttons&combo == combo
}

// Status returns the live, turbo-resolved button state as the 16-bit
// width the TAS movie timeline stores each joypad in.
func (c *Controller) Status() uint16 {
	effective := c.buttons
	if !c.turboOn {
		effective &^= c.turbo
	}
	return uint16(effective)
}

// ForceStatus overrides the live button state for the current frame,
// used by TAS PLAYBACK to inject recorded input independent of the
// host's physical controller (which scheduler step 1 suppresses while
// a movie is playing).
func (c *Controller) ForceStatus(status uint16) {
	c.buttons = uint8(status)
}

// Write handles writes to $4016 (strobe).
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	effective := c.buttons
	if !c.turboOn {
		effective &^= c.turbo
	}

	if c.strobe || wasStrobe {
		c.buttonSnapshot = effective
		c.shiftRegister = effective
		c.bitPosition = 0
	}
}

// Read handles reads from $4016/$4017.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.bitPosition = 0
		return c.buttonSnapshot & 1
	}

	var result uint8
	if c.bitPosition < 8 {
		result = c.shiftRegister & 1
		c.shiftRegister >>= 1
	} else {
		result = 0 // reads past the 8th bit return zero
	}
	c.bitPosition++
	return result
}

// Reset clears all transient controller state (not the held-button set,
// which is driven by the host UI independently of CPU reset).
func (c *Controller) Reset() {
	c.shiftRegister = 0
	c.strobe = false
	c.buttonSnapshot = 0
	c.bitPosition = 0
}

// InputState holds both controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a two-controller input state.
func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

// Reset resets both controllers' transient read state.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// TickTurbo advances both controllers' turbo oscillators once per frame.
func (is *InputState) TickTurbo() {
	is.Controller1.TickTurbo()
	is.Controller2.TickTurbo()
}

// Status returns both joypads' live button state for the TAS engine's
// RECORDING capture.
func (is *InputState) Status() (joy1, joy2 uint16) {
	return is.Controller1.Status(), is.Controller2.Status()
}

// ForceStatus overrides both joypads' live state for the current frame,
// used by TAS PLAYBACK injection.
func (is *InputState) ForceStatus(joy1, joy2 uint16) {
	is.Controller1.ForceStatus(joy1)
	is.Controller2.ForceStatus(joy2)
}

// SoftResetRequested reports whether either controller's SELECT+START
// combo is currently held.
func (is *InputState) SoftResetRequested() bool {
	return is.Controller1.SoftReset() || is.Controller2.SoftReset()
}

// Read dispatches $4016/$4017 reads. Controller 2's port returns bit 6
// set, matching the open-bus behavior real NES hardware exhibits there.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write dispatches $4016 strobe writes to both controllers.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
