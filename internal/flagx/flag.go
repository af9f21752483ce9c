// Package flagx lets several loaders share os.Args, each parsing only the
// flags it owns.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the flags a loader owns and drops everything else.
//
// valueFlags take an argument, either as the next element ("-a url") or
// inline ("-a=url"). boolFlags never consume the next element, so
// "-T -a url" keeps both flags intact; "-T=false" is kept as-is.
// Parsing stops at "--".
func FilterArgs(args []string, valueFlags, boolFlags []string) []string {
	takesValue := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}
	for _, f := range boolFlags {
		takesValue[f] = false
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(arg, "=")
		needsValue, known := takesValue[name]
		if !known {
			continue
		}

		filtered = append(filtered, arg)
		if inline || !needsValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile returns the JSON config path given with -c or -config, or "".
func ConfigFile() string {
	return configFileFrom(os.Args[1:])
}

func configFileFrom(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "path to config file")
	fs.StringVar(&config, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}, nil))

	return config
}
