package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/golang/glog"
	"github.com/peterh/liner"

	"ecmalite/pkg/config"
	"ecmalite/pkg/driver"
	"ecmalite/pkg/errors"
)

const (
	historyFile = ".ecmalite_history"
	prompt      = "> "
)

func main() {
	configFlag := flag.String("config", "", "Load engine settings from the given YAML file")
	execFlag := flag.String("e", "", "Run the given command and exit")
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			reportError(err)
			os.Exit(64) // Exit code 64: command line usage error
		}
		cfg = loaded
	}
	applyVerbosity(cfg.Log.Verbosity)

	s := driver.NewSession(cfg)
	code := 0
	switch {
	case *execFlag != "":
		out, err := s.Exec(*execFlag)
		if !s.DisplayResult(os.Stdout, out, err) {
			code = 70 // Exit code 70: internal software error
		}
	case flag.NArg() > 1:
		fmt.Fprintf(os.Stderr, "Usage: ecmalite [-config file] [commands] or ecmalite -e \"command\"\n")
		code = 64
	case flag.NArg() == 1:
		code = runFile(s, flag.Arg(0))
	default:
		runRepl(s)
	}
	s.Close()
	glog.Flush()
	os.Exit(code)
}

// applyVerbosity sets glog's -v from the configuration unless it was given
// on the command line.
func applyVerbosity(level int) {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			explicit = true
		}
	})
	if !explicit && level > 0 {
		_ = flag.Set("v", strconv.Itoa(level))
	}
}

func reportError(err error) {
	var engineErr errors.EngineError
	if errors.As(err, &engineErr) {
		errors.DisplayErrors(os.Stderr, []errors.EngineError{engineErr})
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// runFile executes one command per line. Blank lines and lines starting
// with '#' are skipped. The first failing command stops the run.
func runFile(s *driver.Session, filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file '%s': %s\n", filename, err.Error())
		return 70
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := s.Exec(line)
		if !s.DisplayResult(os.Stdout, out, err) {
			fmt.Fprintf(os.Stderr, "  at %s:%d\n", filename, lineNo)
			return 70
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file '%s': %s\n", filename, err.Error())
		return 70
	}
	return 0
}

func runRepl(s *driver.Session) {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Println("ecmalite built-in inspector. Type help for commands, :quit to exit.")
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" {
			return
		}
		ln.AppendHistory(line)
		out, err := s.Exec(line)
		_ = s.DisplayResult(os.Stdout, out, err)
	}
}
