package bridge

import (
	"github.com/robotalks/nanoboard/pkg/nanoboard"
	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Sensor names reported to Scratch, the same as a PicoBoard.
const (
	SensorResistanceA = "resistance-A"
	SensorResistanceB = "resistance-B"
	SensorResistanceC = "resistance-C"
	SensorResistanceD = "resistance-D"
	SensorButton      = "button"
	SensorLight       = "light"
	SensorSound       = "sound"
	SensorSlider      = "slider"
	SensorBoardID     = "board-id"
)

// Names of broadcasts and sensors received from Scratch.
const (
	BroadcastMotorOn      = "motor-on"
	BroadcastMotorOff     = "motor-off"
	BroadcastMotorReverse = "motor-reverse"
	SensorMotorSpeed      = "motor-speed"
	SensorMotorDirection  = "motor-direction"
)

// SensorValues converts a reading to the values reported to Scratch.
func SensorValues(r nanoboard.Reading) []msgs.SensorValue {
	return []msgs.SensorValue{
		{Name: SensorResistanceA, Value: msgs.Number(r.ResistanceA())},
		{Name: SensorResistanceB, Value: msgs.Number(r.ResistanceB())},
		{Name: SensorResistanceC, Value: msgs.Number(r.ResistanceC())},
		{Name: SensorResistanceD, Value: msgs.Number(r.ResistanceD())},
		{Name: SensorButton, Value: msgs.Bool(r.Button())},
		{Name: SensorLight, Value: msgs.Number(r.Light())},
		{Name: SensorSound, Value: msgs.Number(r.Sound())},
		{Name: SensorSlider, Value: msgs.Number(r.Slider())},
		{Name: SensorBoardID, Value: msgs.Number(float64(r.ID))},
	}
}

// changeTracker remembers the last values sent.
type changeTracker map[string]msgs.Arg

func (t changeTracker) changed(values []msgs.SensorValue) (result []msgs.SensorValue) {
	for _, v := range values {
		if last, ok := t[v.Name]; !ok || last != v.Value {
			result = append(result, v)
		}
	}
	return
}

func (t changeTracker) commit(values []msgs.SensorValue) {
	for _, v := range values {
		t[v.Name] = v.Value
	}
}
