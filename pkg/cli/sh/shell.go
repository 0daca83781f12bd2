package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/nanoboard/pkg/nanoboard"
	"github.com/robotalks/nanoboard/pkg/scratch"
	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *scratch.Config
	Board  *nanoboard.Board

	connLock sync.Mutex
	conn     *Conn
	prompt   string
}

// Conn is a running Scratch connection.
type Conn struct {
	URL    string
	Client *scratch.Client
	Cancel func()
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly    bool
	outputJSON  bool
	autoConnect bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&autoConnect, "connect", autoConnect, "Connect Scratch on start.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *scratch.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.setPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a Scratch connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn() == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// MustHaveBoard wraps command func requires an opened board.
func MustHaveBoard(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Board == nil {
			c.Err(fmt.Errorf("board not opened"))
			return
		}
		fn(c)
	}
}

// PrintResult prints v as JSON when OutputJSON is set, or formatted
// with %v otherwise.
func PrintResult(c *ishell.Context, v interface{}) {
	s := ShellFrom(c)
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(fmt.Sprintf("%v", v))
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects Scratch at url and prints received messages.
func (s *Shell) Connect(url string) error {
	conf := *s.Config
	conf.URL = url
	ctx, cancel := context.WithCancel(context.Background())
	client, err := conf.Dial(ctx)
	if err != nil {
		cancel()
		return err
	}
	client.WithHandler(&scratch.HandlerFuncs{
		Broadcast: func(_ context.Context, name string) {
			s.printEvent(event{Verb: msgs.VerbBroadcast, Name: name})
		},
		SensorUpdate: func(_ context.Context, values []msgs.SensorValue) {
			ev := event{Verb: msgs.VerbSensorUpdate, Values: make(map[string]interface{})}
			for _, v := range values {
				ev.Values[v.Name] = argValue(v.Value)
			}
			s.printEvent(ev)
		},
	})
	conn := &Conn{URL: url, Client: client, Cancel: cancel}
	s.connLock.Lock()
	s.dropConnLocked()
	s.conn = conn
	s.setPrompt(fmt.Sprintf("%s > ", url))
	s.connLock.Unlock()
	go func() {
		err := client.Run(ctx)
		if err != nil && err != context.Canceled {
			s.Shell.Printf("connection %s closed: %v\n", url, err)
		}
		s.connLock.Lock()
		if s.conn == conn {
			s.dropConnLocked()
		}
		s.connLock.Unlock()
	}()
	return nil
}

// Disconnect disconnects current Scratch connection.
func (s *Shell) Disconnect() {
	s.connLock.Lock()
	s.dropConnLocked()
	s.connLock.Unlock()
}

// Conn returns the current Scratch connection, nil when disconnected.
// It is cleared when the peer closes the connection.
func (s *Shell) Conn() *Conn {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	return s.conn
}

// Client returns the client of the current connection.
func (s *Shell) Client() (*scratch.Client, error) {
	if conn := s.Conn(); conn != nil {
		return conn.Client, nil
	}
	return nil, fmt.Errorf("not connected")
}

func (s *Shell) dropConnLocked() {
	if s.conn != nil {
		s.conn.Cancel()
		s.conn = nil
		s.setPrompt(unconnectedPrompt)
	}
}

func (s *Shell) setPrompt(prompt string) {
	s.prompt = prompt
	s.Shell.SetPrompt(prompt)
}

// OpenBoard opens the board, replacing the opened one.
func (s *Shell) OpenBoard(conf *nanoboard.Config) error {
	board, err := conf.Open()
	if err != nil {
		return err
	}
	s.CloseBoard()
	s.Board = board
	return nil
}

// CloseBoard closes the opened board.
func (s *Shell) CloseBoard() {
	if s.Board != nil {
		if err := s.Board.Close(); err != nil {
			glog.Warningf("close board: %v", err)
		}
		s.Board = nil
	}
}

type event struct {
	Verb   string                 `json:"verb"`
	Name   string                 `json:"name,omitempty"`
	Values map[string]interface{} `json:"values,omitempty"`
}

func (s *Shell) printEvent(ev event) {
	if s.OutputJSON {
		out, err := json.Marshal(ev)
		if err == nil {
			s.Shell.Println(string(out))
			return
		}
	}
	if ev.Verb == msgs.VerbBroadcast {
		s.Shell.Printf("broadcast %s\n", ev.Name)
		return
	}
	for name, val := range ev.Values {
		s.Shell.Printf("sensor-update %s = %v\n", name, val)
	}
}

func argValue(a msgs.Arg) interface{} {
	if n, ok := a.Num(); ok {
		return n
	}
	if b, ok := a.Bool(); ok {
		return b
	}
	return a.Str()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.URL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.URL)
		}
		if err := s.Connect(s.Config.URL); err != nil {
			glog.Fatalf("connect %q failed: %v", s.Config.URL, err)
		}
	}
	defer s.CloseBoard()
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Fatal(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Fatal("command expected")
}

var (
	// ConnectCmd connects Scratch.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.URL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current Scratch connection.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(scratch.NewConfig()).WithAutoConnect(autoConnect).Run(flag.Args()...)
}
