package nanoboard

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// SimulatorPort is the port name which opens a Simulator instead of a
// serial device.
const SimulatorPort = "sim"

// Config provides the options to open a board.
type Config struct {
	Port        string        `toml:"port"`
	BaudRate    int           `toml:"baud-rate"`
	ReadTimeout time.Duration `toml:"read-timeout"`
	// Motor selects the firmware driving one motor.
	Motor bool `toml:"motor"`
}

var defaultConfig = Config{
	Port:        "/dev/ttyUSB0",
	BaudRate:    38400,
	ReadTimeout: time.Second,
}

func init() {
	if val := os.Getenv("NANOBOARD_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the board, \""+SimulatorPort+"\" for a simulated board.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "port-read-timeout", defaultConfig.ReadTimeout, "Timeout waiting for a poll response.")
	flag.BoolVar(&defaultConfig.Motor, "motor", defaultConfig.Motor, "Board firmware drives a motor.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenPort opens the serial port.
func (c *Config) OpenPort() (Port, error) {
	if strings.EqualFold(c.Port, SimulatorPort) {
		return NewSimulator(), nil
	}
	port, err := serial.Open(c.Port, &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", c.Port)
	}
	if err = port.SetReadTimeout(c.ReadTimeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "set read timeout on %s", c.Port)
	}
	return port, nil
}

// Open opens the port and creates the Board.
func (c *Config) Open() (*Board, error) {
	port, err := c.OpenPort()
	if err != nil {
		return nil, err
	}
	if c.Motor {
		return NewMotorBoard(port), nil
	}
	return NewBoard(port), nil
}
