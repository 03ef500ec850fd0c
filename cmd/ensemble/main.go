// Command ensemble is the interactive front end: a REPL by default, or a
// one-shot evaluator for -e source and script files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/dustinboston/ensemble-sub006/eval"
	"github.com/dustinboston/ensemble-sub006/printer"
	"github.com/dustinboston/ensemble-sub006/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("ensemble", flag.ContinueOnError)
	flags.SetOutput(stderr)
	expr := flags.String("e", "", "evaluate `source`, print the result and exit")
	configPath := flags.String("config", "", "config `file` (default ~/"+configFile+")")
	logLevel := flags.String("log-level", "", "log `level`: debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	path, optional := *configPath, false
	if path == "" {
		home, _ := os.UserHomeDir()
		path, optional = filepath.Join(home, configFile), true
	}
	cfg, err := LoadConfig(path, optional)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	rest := flags.Args()
	var argv []string
	if len(rest) > 1 {
		argv = rest[1:]
	}
	env, err := eval.NewRootEnv(eval.WithOutput(stdout), eval.WithArgs(argv))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	for _, p := range cfg.Preload {
		slog.Debug("preloading", slog.String("path", p))
		if err := loadFile(env, p); err != nil {
			fmt.Fprintf(stderr, "uncaught error: %s\n", errorText(err))
			return 1
		}
	}

	switch {
	case *expr != "":
		out, err := rep(env, *expr)
		if err != nil {
			fmt.Fprintf(stderr, "uncaught error: %s\n", errorText(err))
			return 1
		}
		fmt.Fprintln(stdout, out)
		return 0

	case len(rest) > 0:
		if err := loadFile(env, rest[0]); err != nil {
			fmt.Fprintf(stderr, "uncaught error: %s\n", errorText(err))
			return 1
		}
		return 0
	}

	return repl(env, cfg, stdout)
}

func repl(env *types.Env, cfg *Config, stdout io.Writer) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			fmt.Fprintln(stdout)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		out, err := rep(env, line)
		if err != nil {
			fmt.Fprintf(stdout, "uncaught error: %s\n", errorText(err))
			continue
		}
		fmt.Fprintln(stdout, out)
	}
	return 0
}

// rep keeps the session alive when evaluation panics outside try*.
func rep(env *types.Env, src string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return eval.Rep(src, env)
}

func loadFile(env *types.Env, path string) error {
	_, err := rep(env, fmt.Sprintf("(load-file %s)", printer.PrintStr(types.String(path), true)))
	return err
}

func errorText(err error) string {
	var e *types.Error
	if errors.As(err, &e) {
		return printer.PrintStr(e.Payload, false)
	}
	return err.Error()
}
