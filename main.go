// Command intcode assembles and runs INTCODE programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	goIO "io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/config"
	"github.com/aryanA101a/intcode-vm-go/loader"
	"github.com/aryanA101a/intcode-vm-go/pipeline"
	"github.com/aryanA101a/intcode-vm-go/tty"
	"github.com/aryanA101a/intcode-vm-go/vm"
)

func main() {
	configPath := flag.String("config", config.DefaultFile, "configuration file")
	verbose := flag.Int("v", -1, "log verbosity (overrides [log] verbosity)")
	logFile := flag.String("log", "", "log file (default stderr)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: intcode [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  asm  [-o out] [-format cbor|bin] file...  assemble concatenated INTCODE files\n")
		fmt.Fprintf(os.Stderr, "  run  [-input file] [-i] [-trace] file...  run an image or INTCODE text\n")
		fmt.Fprintf(os.Stderr, "  dis  file                                 disassemble an image\n")
		fmt.Fprintf(os.Stderr, "  pipeline [-input file]                    run the stages configured in [pipeline]\n")
		fmt.Fprintf(os.Stderr, "  repl                                      interactive assemble/run monitor\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath, *configPath == config.DefaultFile)
	if err != nil {
		fatal(err)
	}
	verbosity := cfg.Log.Verbosity
	if *verbose >= 0 {
		verbosity = *verbose
	}
	path := cfg.Log.File
	if *logFile != "" {
		path = *logFile
	}
	if path != "" {
		commonlog.Configure(verbosity, &path)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flag.Args()[1:]
	var code int
	switch flag.Arg(0) {
	case "asm":
		code = cmdAsm(cfg, args)
	case "run":
		code = cmdRun(ctx, cfg, args)
	case "dis":
		code = cmdDis(cfg, args)
	case "pipeline":
		code = cmdPipeline(ctx, cfg, filepath.Dir(*configPath), args)
	case "repl":
		code = cmdRepl(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "intcode: unknown command %q\n", flag.Arg(0))
		flag.Usage()
		code = 2
	}
	stop()
	os.Exit(code)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "intcode: %v\n", err)
	os.Exit(1)
}

func printWarnings(warnings []asm.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func cmdAsm(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	out := fs.String("o", "a.img", "output image")
	format := fs.String("format", "cbor", "image format: cbor or bin")
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "intcode asm: no input files")
		return 2
	}
	f, err := loader.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode asm: %v\n", err)
		return 2
	}

	img, warnings, err := loader.Load(cfg.AsmConfig(), fs.Args()...)
	printWarnings(warnings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode asm: %v\n", err)
		return 1
	}
	if err := loader.Save(*out, img, f, warnings); err != nil {
		fmt.Fprintf(os.Stderr, "intcode asm: %v\n", err)
		return 1
	}
	return 0
}

// readInput picks the emulated stdin: a named file, an interactive capture
// when -i is set on a terminal, or whatever is piped in.
func readInput(path string, interactive bool) ([]byte, error) {
	switch {
	case path != "":
		return os.ReadFile(path)
	case tty.IsTerminal(os.Stdin):
		if !interactive {
			return nil, nil
		}
		fmt.Fprintln(os.Stderr, "(enter input, Ctrl-D to finish)")
		return tty.Capture(os.Stdin, os.Stderr)
	default:
		return goIO.ReadAll(os.Stdin)
	}
}

func cmdRun(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	inputPath := fs.String("input", "", "file fed to the program's input")
	interactive := fs.Bool("i", false, "type the program's input at the terminal")
	trace := fs.Bool("trace", false, "log every instruction (needs -v 2 or higher)")
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "intcode run: no program")
		return 2
	}

	img, warnings, err := loader.Load(cfg.AsmConfig(), fs.Args()...)
	printWarnings(warnings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode run: %v\n", err)
		return 1
	}
	input, err := readInput(*inputPath, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode run: %v\n", err)
		return 1
	}

	vmConfig := cfg.VMConfig()
	vmConfig.Trace = vmConfig.Trace || *trace
	machine := vm.NewVM(vmConfig)
	if err := machine.Load(img); err != nil {
		fmt.Fprintf(os.Stderr, "intcode run: %v\n", err)
		return 1
	}
	machine.SetInput(input)
	res := machine.Run(ctx)
	os.Stdout.WriteString(res.Output)
	if !res.Success {
		fmt.Fprintf(os.Stderr, "\nintcode run: %v\n", res.Err)
		return 1
	}
	return 0
}

func cmdDis(cfg *config.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "intcode dis: exactly one image expected")
		return 2
	}
	img, warnings, err := loader.Load(cfg.AsmConfig(), args[0])
	printWarnings(warnings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode dis: %v\n", err)
		return 1
	}
	if err := asm.Disassemble(os.Stdout, img); err != nil {
		fmt.Fprintf(os.Stderr, "intcode dis: %v\n", err)
		return 1
	}
	return 0
}

func cmdPipeline(ctx context.Context, cfg *config.Config, dir string, args []string) int {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	inputPath := fs.String("input", "", "file fed to the first stage")
	interactive := fs.Bool("i", false, "type the first stage's input at the terminal")
	fs.Parse(args)
	if len(cfg.Pipeline.Stages) == 0 {
		fmt.Fprintln(os.Stderr, "intcode pipeline: no [[pipeline.stage]] configured")
		return 2
	}

	stages, err := pipeline.LoadStages(cfg.Pipeline.Stages, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode pipeline: %v\n", err)
		return 1
	}
	input, err := readInput(*inputPath, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode pipeline: %v\n", err)
		return 1
	}

	p := pipeline.New(stages, cfg.AsmConfig(), cfg.VMConfig())
	report, err := p.Run(ctx, string(input))
	if report != nil {
		for _, s := range report.Stages {
			printWarnings(s.Warnings)
		}
	}
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) && se.Output != "" {
			os.Stdout.WriteString(se.Output)
		}
		fmt.Fprintf(os.Stderr, "intcode pipeline: %v\n", err)
		return 1
	}
	os.Stdout.WriteString(report.Output)
	return 0
}
