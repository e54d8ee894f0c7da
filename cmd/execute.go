package cmd

import (
	"minicc/common"
	"minicc/config"
	"minicc/driver"
	"minicc/report"
	"os"

	"github.com/ComedicChimera/olive"
)

// stopFlags maps the names of the stop flags to the stage they stop after.
var stopFlags = []struct {
	name, short, desc string
	stage             driver.Stage
}{
	{"lex", "lx", "stop after lexing", driver.StageLex},
	{"parse", "ps", "stop after parsing", driver.StageParse},
	{"validate", "vd", "stop after name resolution and type checking", driver.StageValidate},
	{"ir", "i", "stop after IR generation", driver.StageIR},
	{"codegen", "cg", "stop after emitting assembly", driver.StageCodegen},
}

// Execute is the main entry point for the `minicc` CLI utility.  It returns
// the exit code of the process.
func Execute() int {
	return execute(os.Args)
}

// execute runs the CLI on the given command line.
func execute(args []string) (exitCode int) {
	// set up the argument parser
	cli := olive.NewCLI("minicc", "minicc (version "+common.Version+") compiles a C source file for x86-64 Linux", true)
	cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose", "debug"})
	cli.AddStringArg("config", "cf", "the path to the configuration file", false)
	cli.AddPrimaryArg("input-path", "the path to the source file to compile", true)

	for _, sf := range stopFlags {
		cli.AddFlag(sf.name, sf.short, sf.desc)
	}

	cli.AddFlag("llvm", "lv", "compile through LLVM IR using the configured translator")
	cli.AddFlag("compile", "c", "produce an object file instead of an executable")
	cli.AddFlag("debug", "g", "emit debug information")

	// run the argument parser
	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		report.ReportFatal("%s", err.Error())
	}

	inputPath, _ := result.PrimaryArg()

	logLevelName := ""
	if logLevelArg, ok := result.Arguments["loglevel"]; ok {
		logLevelName = logLevelArg.(string)
	}

	configPath := ""
	if configArg, ok := result.Arguments["config"]; ok {
		configPath = configArg.(string)
	}

	// the reporter is initialized before the configuration is loaded so that
	// configuration errors can be displayed.
	report.InitReporter(logLevelFor(logLevelName, ""))

	cfg, err := config.Load(inputPath, configPath)
	if err != nil {
		report.ReportError(config.FilePath(inputPath, configPath), "", err)
		return report.ExitCode(err)
	}

	// command line arguments override the configuration file
	if result.HasFlag("llvm") {
		cfg.Backend = config.BackendLLVM
	}

	if result.HasFlag("debug") {
		cfg.Debug = true
	}

	report.InitReporter(logLevelFor(logLevelName, cfg.LogLevel))

	// internal compiler errors are displayed and exit with -1
	defer func() {
		if x := recover(); x != nil {
			if ice, ok := x.(*report.ICE); ok {
				report.ReportInternalError(ice)
				exitCode = -1
				return
			}

			panic(x)
		}
	}()

	var stops []driver.Stage
	for _, sf := range stopFlags {
		if result.HasFlag(sf.name) {
			stops = append(stops, sf.stage)
		}
	}

	d := driver.New(cfg, driver.EarliestStage(stops...), !result.HasFlag("compile"))

	outputPath, err := d.Compile(inputPath)
	report.ReportCompilationFinished(outputPath)

	return report.ExitCode(err)
}

// logLevelFor returns the log level selected on the command line, falling back
// to the configured log level and then to verbose.
func logLevelFor(argName, configName string) int {
	if level, ok := report.LogLevelNames[argName]; ok {
		return level
	}

	if level, ok := report.LogLevelNames[configName]; ok {
		return level
	}

	return report.LogLevelVerbose
}
