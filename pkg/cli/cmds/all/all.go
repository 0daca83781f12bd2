// Package all imports all command providers.
package all

import (
	_ "github.com/robotalks/nanoboard/pkg/cli/cmds/board"
	_ "github.com/robotalks/nanoboard/pkg/cli/cmds/scratch"
)
