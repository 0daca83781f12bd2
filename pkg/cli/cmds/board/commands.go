package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/nanoboard/pkg/bridge"
	"github.com/robotalks/nanoboard/pkg/cli/sh"
	"github.com/robotalks/nanoboard/pkg/nanoboard"
)

var (
	// OpenCmd opens the board.
	OpenCmd = ishell.Cmd{
		Name:    "board.open",
		Aliases: []string{"bo"},
		Help:    "[PORT] [motor]",
		Func: func(c *ishell.Context) {
			conf := nanoboard.NewConfig()
			for _, arg := range c.Args {
				if arg == "motor" {
					conf.Motor = true
				} else {
					conf.Port = arg
				}
			}
			if err := sh.ShellFrom(c).OpenBoard(conf); err != nil {
				c.Err(err)
				return
			}
			sh.PrintResult(c, "OK")
		},
	}

	// CloseCmd closes the board.
	CloseCmd = ishell.Cmd{
		Name: "board.close",
		Help: "",
		Func: func(c *ishell.Context) {
			sh.ShellFrom(c).CloseBoard()
		},
	}

	// PollCmd polls the board and prints the sensor values.
	PollCmd = ishell.Cmd{
		Name:    "board.poll",
		Aliases: []string{"bp"},
		Help:    "",
		Func: sh.MustHaveBoard(func(c *ishell.Context) {
			board := sh.ShellFrom(c).Board
			if err := board.Update(); err != nil {
				c.Err(err)
				return
			}
			printReading(c, board.Reading())
		}),
	}

	// MotorCmd turns the motor on or off.
	MotorCmd = ishell.Cmd{
		Name:    "board.motor",
		Aliases: []string{"bm"},
		Help:    "on|off",
		Func: sh.MustHaveBoard(func(c *ishell.Context) {
			board := sh.ShellFrom(c).Board
			var err error
			switch strings.Join(c.Args, " ") {
			case "on":
				err = board.MotorOn()
			case "off":
				err = board.MotorOff()
			default:
				err = fmt.Errorf("on or off expected")
			}
			if err != nil {
				c.Err(err)
				return
			}
			printReading(c, board.Reading())
		}),
	}

	// DirectionCmd sets the motor direction.
	DirectionCmd = ishell.Cmd{
		Name:    "board.dir",
		Aliases: []string{"bd"},
		Help:    "0|1|2 (2 toggles)",
		Func: sh.MustHaveBoard(func(c *ishell.Context) {
			dir, err := intArg(c)
			if err == nil {
				err = sh.ShellFrom(c).Board.MotorDirection(nanoboard.Direction(dir))
			}
			if err != nil {
				c.Err(err)
				return
			}
			printReading(c, sh.ShellFrom(c).Board.Reading())
		}),
	}

	// SpeedCmd sets the motor speed.
	SpeedCmd = ishell.Cmd{
		Name:    "board.speed",
		Aliases: []string{"bs"},
		Help:    "PERCENT",
		Func: sh.MustHaveBoard(func(c *ishell.Context) {
			speed, err := floatArg(c)
			if err == nil {
				err = sh.ShellFrom(c).Board.MotorSpeed(speed)
			}
			if err != nil {
				c.Err(err)
				return
			}
			printReading(c, sh.ShellFrom(c).Board.Reading())
		}),
	}
)

func intArg(c *ishell.Context) (int, error) {
	if len(c.Args) != 1 {
		return 0, fmt.Errorf("one number expected")
	}
	return strconv.Atoi(c.Args[0])
}

func floatArg(c *ishell.Context) (float64, error) {
	if len(c.Args) != 1 {
		return 0, fmt.Errorf("one number expected")
	}
	return strconv.ParseFloat(c.Args[0], 64)
}

func printReading(c *ishell.Context, r nanoboard.Reading) {
	values := bridge.SensorValues(r)
	if sh.ShellFrom(c).OutputJSON {
		result := make(map[string]string, len(values))
		for _, v := range values {
			result[v.Name] = v.Value.Token()
		}
		sh.PrintResult(c, result)
		return
	}
	for _, v := range values {
		c.Printf("%-13s %s\n", v.Name, v.Value)
	}
}

func init() {
	sh.AddCmds(
		&OpenCmd,
		&CloseCmd,
		&PollCmd,
		&MotorCmd,
		&DirectionCmd,
		&SpeedCmd,
	)
}
