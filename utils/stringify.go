package utils

import (
	"fmt"

	"github.com/fatih/color"
)

var funColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgHiYellow).SprintFunc())(is...)
}
var guardColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgHiGreen).SprintFunc())(is...)
}
var resColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgMagenta).SprintFunc())(is...)
}

// FunString prints a function identity.
func FunString(fun string) string {
	return funColor(fun)
}

// GuardString prints a lock guard statement handle.
func GuardString(fun string, local int) string {
	return FunString(fun) + "#" + guardColor(fmt.Sprintf("%d", local))
}

// ResourceString prints a lock resource.
func ResourceString(res string) string {
	return resColor(res)
}
