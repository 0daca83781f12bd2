package scratch

import (
	"context"
	"flag"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/robotalks/nanoboard/pkg/comm"
	"github.com/robotalks/nanoboard/pkg/comm/mqtt"
	"github.com/robotalks/nanoboard/pkg/comm/stream"
	"github.com/robotalks/nanoboard/pkg/comm/websocket"
)

// DefaultPort is the remote sensor port of Scratch.
const DefaultPort = "42001"

// Default MQTT topics, relative to the prefix in the URL.
const (
	DefaultMQTTSubTopic = "scratch/in"
	DefaultMQTTPubTopic = "scratch/out"
)

// Config provides the options to connect to Scratch.
type Config struct {
	// URL is one of
	//   host[:port], tcp://host[:port]
	//   ws://host/path, wss://host/path
	//   mqtt://host:port/topic-prefix/
	URL string `toml:"url"`
	// ReadTimeout bounds each read so the receive loop notices Close
	// promptly on transports which don't unblock on close.
	ReadTimeout time.Duration `toml:"read-timeout"`
	// MaxFrameSize caps inbound frames on stream transports.
	MaxFrameSize uint32 `toml:"max-frame-size"`
}

var defaultConfig = Config{
	URL:          "localhost:" + DefaultPort,
	ReadTimeout:  time.Second,
	MaxFrameSize: stream.DefaultMaxFrameSize,
}

func init() {
	if val := os.Getenv("SCRATCH_URL"); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "scratch", defaultConfig.URL, "Scratch remote sensor URL.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "scratch-read-timeout", defaultConfig.ReadTimeout, "Read timeout of Scratch connection.")
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

// Dial connects and creates a Client.
func (c *Config) Dial(ctx context.Context) (*Client, error) {
	rw, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(rw), nil
}

// Connect opens the transport selected by URL.
func (c *Config) Connect(ctx context.Context) (comm.PacketReadWriter, error) {
	rawURL := c.URL
	if !strings.Contains(rawURL, "://") {
		rawURL = "tcp://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid Scratch URL %q", c.URL)
	}
	var rw comm.PacketReadWriter
	switch u.Scheme {
	case "tcp":
		rw, err = c.dialTCP(ctx, u)
	case "ws", "wss":
		rw, err = websocket.Dial(u.String(), "")
	case "mqtt", "mqtts":
		rw, err = c.dialMQTT(u)
	default:
		return nil, errors.Errorf("unknown Scratch URL scheme: %q", u.Scheme)
	}
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}
	return rw, nil
}

// tcpAddr returns host:port of u, with DefaultPort when u has no port.
func tcpAddr(u *url.URL) string {
	if u.Port() == "" {
		return net.JoinHostPort(u.Hostname(), DefaultPort)
	}
	return u.Host
}

func (c *Config) dialTCP(ctx context.Context, u *url.URL) (comm.PacketReadWriter, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", tcpAddr(u))
	if err != nil {
		return nil, err
	}
	return stream.New(conn).
		WithReadTimeout(c.ReadTimeout).
		WithMaxFrameSize(c.MaxFrameSize), nil
}

type mqttReadWriter struct {
	*mqtt.ReadWriter
}

func (p *mqttReadWriter) Close() error {
	err := p.ReadWriter.Close()
	p.Queue.Close()
	return err
}

func (c *Config) dialMQTT(u *url.URL) (comm.PacketReadWriter, error) {
	q, err := mqtt.NewQueueFromURL(u.String())
	if err != nil {
		return nil, err
	}
	if err = q.Connect(); err != nil {
		return nil, err
	}
	query := u.Query()
	sub, pub := query.Get("sub"), query.Get("pub")
	if sub == "" {
		sub = DefaultMQTTSubTopic
	}
	if pub == "" {
		pub = DefaultMQTTPubTopic
	}
	return &mqttReadWriter{ReadWriter: mqtt.NewPacketReadWriter(q, sub, pub)}, nil
}

// Dial connects to rawURL with default options.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	conf := NewConfig()
	conf.URL = rawURL
	return conf.Dial(ctx)
}
