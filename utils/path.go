package utils

import "flag"

// MakePath returns the package pattern to load for Go source tasks.
// The first non-flag argument is the pattern. If none is provided, it
// defaults to every package below the working directory.
func MakePath() string {
	if args := flag.Args(); len(args) >= 1 {
		return args[0]
	}
	return "./..."
}
