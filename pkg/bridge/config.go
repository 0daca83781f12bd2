package bridge

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/nanoboard/pkg/comm/mqtt"
	"github.com/robotalks/nanoboard/pkg/nanoboard"
	"github.com/robotalks/nanoboard/pkg/scratch"
)

// Config defines the configurations of the bridge.
type Config struct {
	// ID identifies the bridge in MQTT topics, defaults to MachineID().
	ID string `toml:"id"`
	// MQTTURL enables publishing when not empty.
	MQTTURL  string        `toml:"mqtt-url"`
	Interval time.Duration `toml:"interval"`

	Board   nanoboard.Config `toml:"board"`
	Scratch scratch.Config   `toml:"scratch"`
}

var defaultConfig = Config{
	Interval: 100 * time.Millisecond,
}

func init() {
	if val := os.Getenv("NANOBOARD_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
}

// SetupFlags sets command line flags, including the flags of the
// board and the Scratch connection.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Bridge ID, default is derived from machine ID.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for publishing readings.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Poll interval.")
	nanoboard.SetupFlags()
	scratch.SetupFlags()
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config from the defaults of all packages.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Board = *nanoboard.NewConfig()
	conf.Scratch = *scratch.NewConfig()
	return &conf
}

// LoadFile overrides the config with values from a TOML file.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	for _, key := range md.Undecoded() {
		glog.Warningf("%s: unknown key %s", path, key)
	}
	return nil
}

// Open opens the board, connects Scratch and MQTT and creates the Bridge.
func (c *Config) Open(ctx context.Context) (*Bridge, error) {
	board, err := c.Board.Open()
	if err != nil {
		return nil, err
	}
	client, err := c.Scratch.Dial(ctx)
	if err != nil {
		board.Close()
		return nil, err
	}
	b := New(board, client)
	b.Interval = c.Interval
	if c.MQTTURL == "" {
		return b, nil
	}
	q, err := mqtt.NewQueueFromURL(c.MQTTURL)
	if err == nil {
		err = q.Connect()
	}
	if err != nil {
		b.Close()
		return nil, errors.Wrapf(err, "connect %s", c.MQTTURL)
	}
	id := c.ID
	if id == "" {
		id = MachineID()
	}
	glog.Infof("publishing as %s", id)
	return b.WithPublisher(NewPublisher(q, id)).AddCloser(q), nil
}

// MachineID derives a short stable id from the machine id, falling
// back to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID("nanoboard")
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "nanoboard"
}
