package scratch

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/nanoboard/pkg/cli/sh"
	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

var (
	// BroadcastCmd sends a broadcast.
	BroadcastCmd = ishell.Cmd{
		Name:    "broadcast",
		Aliases: []string{"b"},
		Help:    "NAME",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("broadcast name expected"))
				return
			}
			name := strings.Join(c.Args, " ")
			client, err := sh.ShellFrom(c).Client()
			if err == nil {
				err = client.Broadcast(name)
			}
			if err != nil {
				c.Err(err)
				return
			}
			sh.PrintResult(c, msgs.Broadcast(name).String())
		}),
	}

	// SensorCmd sends sensor updates. A value is a number, true,
	// false or a string, quoted when it contains spaces.
	SensorCmd = ishell.Cmd{
		Name:    "sensor",
		Aliases: []string{"s"},
		Help:    "NAME VALUE [NAME VALUE ...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args, err := msgs.ParseArgs(strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			if len(args) == 0 || len(args)%2 != 0 {
				c.Err(fmt.Errorf("NAME VALUE pairs expected"))
				return
			}
			values := make([]msgs.SensorValue, 0, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				values = append(values, msgs.SensorValue{Name: args[i].Str(), Value: args[i+1]})
			}
			client, err := sh.ShellFrom(c).Client()
			if err == nil {
				err = client.UpdateSensors(values...)
			}
			if err != nil {
				c.Err(err)
				return
			}
			sh.PrintResult(c, msgs.SensorUpdate(values...).String())
		}),
	}
)

func init() {
	sh.AddCmds(
		&BroadcastCmd,
		&SensorCmd,
	)
}
