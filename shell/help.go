package shell

import (
	_ "embed"
)

//go:embed helptext/usage.txt
var usageText string

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	return msg(usageText), nil
}
