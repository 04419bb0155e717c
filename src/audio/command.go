package audio

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseCommand splits a command line into its escaped words.
func ParseCommand(line string) ([]string, error) {
	words := strings.Fields(line)
	for i, item := range words {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		words[i] = escaped
	}
	return words, nil
}

// Apply runs one command. Known commands are
//
//	freq <hz>
//	gain <0..1>
func (a *Audio) Apply(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	if len(command) != 2 {
		return fmt.Errorf("invalid command %v", command)
	}
	value, err := strconv.ParseFloat(command[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", command[0], err)
	}
	switch command[0] {
	case "freq":
		return a.SetFreq(value)
	case "gain":
		return a.SetGain(value)
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
}
