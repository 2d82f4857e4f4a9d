// Package flagx holds small helpers for parsing the subset of command-line
// flags a component owns without tripping over flags owned by others.
package flagx

import (
	"flag"
	"strings"
)

// name strips the leading dashes and any "=value" part. Go's flag package
// treats -x and --x alike, so both spellings map to the same name.
func name(arg string) string {
	n := strings.TrimLeft(arg, "-")
	n, _, _ = strings.Cut(n, "=")
	return n
}

func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-' && arg != "--"
}

// FilterArgs returns the arguments from args that belong to allowedFlags,
// keeping their values. "-c" in allowedFlags also admits "--c".
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A following argument that starts with '-' is never taken as a value.
// Everything after a bare "--" is positional and dropped.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[name(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !isFlag(arg) {
			continue
		}
		if _, ok := allowed[name(arg)]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if !strings.Contains(arg, "=") && i+1 < len(args) && !isFlag(args[i+1]) && args[i+1] != "--" {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// Positional returns the arguments that are neither flags nor flag values.
// Flags without "=" are assumed to take the next argument as their value,
// unless listed in boolFlags. Everything after "--" is positional.
func Positional(args []string, boolFlags ...string) []string {
	bools := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		bools[name(f)] = struct{}{}
	}

	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(out, args[i+1:]...)
		case !isFlag(arg):
			out = append(out, arg)
		case strings.Contains(arg, "="):
		default:
			if _, ok := bools[name(arg)]; !ok {
				i++
			}
		}
	}
	return out
}

// ConfigFileFlag returns the JSON config path passed in args with -c or
// -config, or an empty string when neither is present. The last occurrence
// wins.
func ConfigFileFlag(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "path to config file")
	fs.StringVar(&config, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
