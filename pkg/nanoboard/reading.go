package nanoboard

import "math"

// Sensor channels of the board.
const (
	ChResistanceD = 0
	ChResistanceC = 1
	ChResistanceB = 2
	ChButton      = 3
	ChResistanceA = 4
	ChLight       = 5
	ChSound       = 6
	ChSlider      = 7
)

// Reading is the state of the board after a poll. Channels 8-14 are
// accepted from the wire but not used by the board.
type Reading struct {
	ID      uint16
	Sensors [ChannelCount]uint16
}

func percent(v uint16) float64 {
	return 100 * float64(v) / 1023
}

// ResistanceA is analog channel A in percent. Unlike the other
// resistance channels it is not rounded.
func (r Reading) ResistanceA() float64 {
	return percent(r.Sensors[ChResistanceA])
}

// ResistanceB is analog channel B in percent.
func (r Reading) ResistanceB() float64 {
	return math.Round(percent(r.Sensors[ChResistanceB]))
}

// ResistanceC is analog channel C in percent.
func (r Reading) ResistanceC() float64 {
	return math.Round(percent(r.Sensors[ChResistanceC]))
}

// ResistanceD is analog channel D in percent.
func (r Reading) ResistanceD() float64 {
	return math.Round(percent(r.Sensors[ChResistanceD]))
}

// Button reports whether the button is pressed.
func (r Reading) Button() bool {
	return r.Sensors[ChButton] != 0
}

// Light converts the light sensor to 0-100.
func (r Reading) Light() float64 {
	v := r.Sensors[ChLight]
	if v < 25 {
		return float64(100 - v)
	}
	return math.Round(float64(1023-int(v)) * (75 / 998.0))
}

// Sound converts the sound sensor to 0-100.
func (r Reading) Sound() float64 {
	v := int(r.Sensors[ChSound]) - 18
	if v < 0 {
		v = 0
	}
	if v < 50 {
		return float64(v / 2)
	}
	return 25 + math.Min(75, math.Round(float64(v-50)*(75/580.0)))
}

// Slider is the slider position in percent.
func (r Reading) Slider() float64 {
	return math.Round(percent(r.Sensors[ChSlider]))
}
