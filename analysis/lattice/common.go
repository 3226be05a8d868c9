package lattice

import (
	"github.com/cs-au-dk/guardflow/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Element func(...interface{}) string
	Const   func(...interface{}) string
}{
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
}
