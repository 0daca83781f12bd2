// Package nanoboard talks to a NanoBoard sensor board over a serial
// port.
//
// The host sends one command byte, the board answers with 9 big
// endian words. Each word carries a 4-bit channel and a 10-bit value:
//
//	resp := nanoboard.EncodeResponse(r)
//	var got nanoboard.Reading
//	err := got.Decode(resp)
//
// Channel 15 reports the board id. A board with motor firmware takes
// the motor state as the command byte, see MotorCommand.
package nanoboard
