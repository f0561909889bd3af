// Command dumpgcode parses a G-Code file and prints each evaluated
// command, one line per entry, in the style of
// original_source/scripts/dump-gcode.py: "COMMAND key=value key=value",
// or "* message" lines (one per line of a multi-line diagnostic) for
// entries that failed to evaluate.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/script"
)

type params struct {
	Watch bool
}

func main() {
	var p params

	command := &cobra.Command{
		Use:   "dumpgcode FILENAME",
		Short: "Parse and dump interpreted gcode values",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0], p)
		},
	}

	command.Flags().BoolVarP(&p.Watch, "watch", "w", false, "re-dump the file whenever it changes on disk")

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string, p params) error {
	if err := dump(path); err != nil {
		return err
	}
	if !p.Watch {
		return nil
	}
	return watch(path)
}

func dump(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	s := script.New(map[string]ast.Value{"foo": ast.String("bar")})
	s.ParseSegment(data)
	s.ParseFinish()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for s.HasNext() {
		cmd, p, err := s.EvalNext(nil)
		if err != nil {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "* %s\n", line)
			}
			continue
		}
		fmt.Fprintf(out, "%s %s\n", cmd, formatParams(p))
	}

	if s.CheckFatal() != nil {
		return fmt.Errorf("dumpgcode: fatal condition latched while evaluating %s", path)
	}
	return nil
}

func formatParams(p interface {
	Keys() []string
	AsStrings() map[string]string
}) string {
	if p == nil {
		return ""
	}
	keys := p.Keys()
	strs := p.AsStrings()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, strs[k])
	}
	return strings.Join(parts, " ")
}

// watch re-dumps path every time fsnotify reports a write to it, until
// the process is killed. A create/rename right after a remove (common
// with editors that save via a temp-file swap) re-establishes the watch
// on the new inode.
func watch(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	for {
		select {
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := dump(path); err != nil {
					fmt.Fprintf(os.Stderr, "dumpgcode: %v\n", err)
				}
			}
			if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.Remove(path)
				if err := w.Add(path); err != nil {
					return fmt.Errorf("re-watching %s: %w", path, err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "dumpgcode: watcher error: %v\n", err)
		}
	}
}
