package cmd

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dpms/internal/dpms"
	"dpms/internal/dpmserr"
)

// listEntry is the structured shape dpms list --format yaml marshals.
// Unlike the hand-built status/list JSON, whose shape is fixed
// byte-for-byte, YAML output has no such pin, so this one path uses a
// real encoder instead of string-building. --format json prints the
// same hand-built JSON as --json.
type listEntry struct {
	Name  string `yaml:"name"`
	Power string `yaml:"power"`
}

// jsonEscape escapes the characters that can appear in output names.
// Connector names are restricted to ASCII letters, digits, and '-' in
// practice, but quote and backslash are escaped defensively in case a
// future naming convention widens that set.
func jsonEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func printText(infos []dpms.DisplayInfo, verbose bool) {
	for _, d := range infos {
		if verbose && (d.Make != "" || d.Model != "") {
			fmt.Printf("%s: %s (%s %s)\n", d.Name, d.Power.String(), d.Make, d.Model)
			continue
		}
		fmt.Printf("%s: %s\n", d.Name, d.Power.String())
	}
}

// printStatusJSON implements the status --json shape:
// a bare {"power":".."} for backwards compatibility when the caller
// never supplied a name and exactly one display resolved; a named
// single object when a name was given or otherwise exactly one
// resolved; an array otherwise.
func printStatusJSON(infos []dpms.DisplayInfo, gaveName bool) {
	if len(infos) == 1 && !gaveName {
		fmt.Printf(`{"power":"%s"}`+"\n", infos[0].Power.JSON())
		return
	}
	if len(infos) == 1 {
		fmt.Printf(`{"name":"%s","power":"%s"}`+"\n", jsonEscape(infos[0].Name), infos[0].Power.JSON())
		return
	}
	printListJSON(infos)
}

func printListJSON(infos []dpms.DisplayInfo) {
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range infos {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"name":"%s","power":"%s"}`, jsonEscape(d.Name), d.Power.JSON())
	}
	b.WriteByte(']')
	fmt.Println(b.String())
}

func printListYAML(infos []dpms.DisplayInfo) error {
	entries := make([]listEntry, len(infos))
	for i, d := range infos {
		entries[i] = listEntry{Name: d.Name, Power: d.Power.JSON()}
	}
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	if err := enc.Encode(entries); err != nil {
		return dpmserr.NewIoError("stdout", err)
	}
	return nil
}
