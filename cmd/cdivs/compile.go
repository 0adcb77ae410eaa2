package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/cdivs/shape"
)

// programDump is the YAML form of a compiled shape.
type programDump struct {
	Name     string      `yaml:"name"`
	Header   headerDump  `yaml:"header"`
	Commands []string    `yaml:"commands"`
	Keys     [][]float64 `yaml:"keys,flow"`
	Dynamic  bool        `yaml:"dynamic,omitempty"`
}

type headerDump struct {
	Start      int     `yaml:"start"`
	Shift      bool    `yaml:"shift,omitempty"`
	Static     bool    `yaml:"static,omitempty"`
	InvertType int     `yaml:"invertType"`
	DelayMul   float64 `yaml:"delayMul"`
	Width      string  `yaml:"width,omitempty"`
	Height     string  `yaml:"height,omitempty"`
	XRepeat    int     `yaml:"xRepeat"`
	YRepeat    int     `yaml:"yRepeat"`
}

func newCompileCmd() *cobra.Command {
	var library string
	cmd := &cobra.Command{
		Use:   "compile <shape>...",
		Short: "Print the compiled program of shapes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadLibrary(library); err != nil {
				return err
			}
			var dumps []programDump
			for _, name := range args {
				p, err := shape.Find(name)
				if err != nil {
					return err
				}
				dumps = append(dumps, dumpProgram(p))
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			for _, d := range dumps {
				if err := enc.Encode(d); err != nil {
					return fmt.Errorf("encode %s: %w", d.Name, err)
				}
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&library, "library", "l", "", "YAML file with extra shape definitions")
	return cmd
}

func dumpProgram(p *shape.Program) programDump {
	h := p.Header
	d := programDump{
		Name: p.Name,
		Header: headerDump{
			Start:      int(h.Start.V),
			Shift:      p.Shifts(),
			Static:     p.Static(),
			InvertType: h.InvertType,
			DelayMul:   h.DelayMul,
			XRepeat:    h.XRepeat,
			YRepeat:    h.YRepeat,
		},
		Keys:    p.Keys,
		Dynamic: p.Dynamic != nil,
	}
	if h.IsPattern() {
		d.Header.Width = formatNum(h.Width)
		d.Header.Height = formatNum(h.Height)
	}
	for _, c := range p.Commands {
		d.Commands = append(d.Commands, formatCommand(c))
	}
	return d
}

func formatNum(n shape.Num) string {
	s := strconv.FormatFloat(n.V, 'f', -1, 64)
	for _, f := range []struct {
		flag   shape.Flags
		letter string
	}{{shape.FlagShift, "S"}, {shape.FlagStatic, "s"}, {shape.FlagRelative, "r"}, {shape.FlagFit, "f"}} {
		if n.Has(f.flag) {
			s += f.letter
		}
	}
	return s
}

func formatCommand(c shape.Command) string {
	var b strings.Builder
	b.WriteString(c.Op.String())
	if c.Place != shape.Everywhere {
		b.WriteString("[" + string(rune(c.Place)) + "]")
	}
	for _, co := range c.Coords {
		b.WriteByte(' ')
		b.WriteString(formatCoord(co))
	}
	return b.String()
}

func formatCoord(c shape.Coord) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	items := func(sep string) string {
		parts := make([]string, len(c.Items))
		for i, it := range c.Items {
			parts[i] = formatCoord(it)
		}
		return strings.Join(parts, sep)
	}
	var s string
	switch c.Kind {
	case shape.Ref:
		s = "@" + strconv.Itoa(c.Ref)
	case shape.Index:
		s = "i(" + items(",") + ")"
	case shape.Anim:
		s = "a" + strconv.Itoa(c.Key) + "(" + items("/") + ")"
		if c.Delay != 0 {
			s += "+" + f(c.Delay)
		}
	case shape.Parallax:
		s = "p(" + items("_") + ")"
	default:
		s = f(c.Frac)
		if c.Px != 0 {
			s += fmt.Sprintf("%+gpx", c.Px)
		}
		if c.Dyn != 0 {
			s += "+$" + strconv.Itoa(c.Dyn)
		}
	}
	if c.Size >= 0 && c.Kind != shape.Ref {
		s += "#" + strconv.Itoa(c.Size)
	}
	return s
}
