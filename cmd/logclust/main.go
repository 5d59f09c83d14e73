/*
Package main implements the logclust command-line clustering tool.

logclust mines frequent words and line patterns out of flat-file logs
using density-based candidate mining: a Count-Min-style word sketch narrows
the vocabulary, a cluster sketch (or full support aggregation over a prefix
trie) narrows candidate line patterns, and an optional word-dependency
weighted join folds near-duplicate patterns that differ only in
low-weight positions.

# Config

Runtime configuration is managed via a `config.toml` file (see pkg/config),
overridable by flags for one-shot runs. A default configuration is created
automatically if one does not exist.

# Probe Mode

Passing -probe after a run starts an interactive loop: each typed line is
run through the same tokenizer and candidate lookup used by the outlier
pass, reporting which surviving cluster (if any) it belongs to.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/logclust/internal/cli"
	"github.com/bastiangx/logclust/internal/logger"
	"github.com/bastiangx/logclust/internal/pipeline"
	"github.com/bastiangx/logclust/internal/utils"
	"github.com/bastiangx/logclust/pkg/config"
	"github.com/bastiangx/logclust/pkg/ipc"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "logclust"
	gh      = "https://github.com/bastiangx/logclust"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize and run the clustering pass.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	probeMode := flag.Bool("probe", false, "After the run completes, start an interactive cluster-lookup probe")
	ipcMode := flag.Bool("ipc", false, "Emit the cluster set as a single MessagePack document instead of plain text")

	support := flag.Int("support", defaultConfig.Mining.Support, "Minimum absolute support for a word or cluster candidate")
	rsupport := flag.Float64("rsupport", defaultConfig.Mining.RSupport, "Minimum relative support as a percentage of input lines (overrides -support when > 0)")
	wsize := flag.Int("wsize", defaultConfig.Mining.WSize, "Word sketch size (0 disables the word sketch pre-pass)")
	csize := flag.Int("csize", defaultConfig.Mining.CSize, "Cluster sketch size (0 disables; mutually exclusive with -aggrsup)")
	aggrsup := flag.Bool("aggrsup", defaultConfig.Mining.AggrSup, "Aggregate candidate support over the prefix trie instead of a cluster sketch")
	wtablesize := flag.Int("wtablesize", defaultConfig.Mining.WTableSize, "Word hash table size")
	initseed := flag.Uint64("initseed", defaultConfig.Mining.InitSeed, "Master PRNG seed deriving every sketch/table seed")
	wfilter := flag.String("wfilter", defaultConfig.Mining.WFilter, "Regexp a word must match to get a transformed synthetic form")
	wsearch := flag.String("wsearch", defaultConfig.Mining.WSearch, "Regexp matched within a qualifying word to replace")
	wreplace := flag.String("wreplace", defaultConfig.Mining.WReplace, "Replacement text for -wsearch matches")

	wweight := flag.Float64("wweight", defaultConfig.Join.WWeight, "Word weight threshold for cluster joining (0 disables joining)")
	weightf := flag.Int("weightf", defaultConfig.Join.WeightF, "Word weight function: 1 or 2")

	byteoffset := flag.Int("byteoffset", defaultConfig.Input.ByteOffset, "Bytes to skip at the start of every input line")
	lfilter := flag.String("lfilter", defaultConfig.Input.LFilter, "Regexp a line must match to be processed")
	template := flag.String("template", defaultConfig.Input.Template, "Template expanded with the -lfilter match's $1/$name capture groups to form the working line (used only with -lfilter)")
	separator := flag.String("separator", defaultConfig.Input.Separator, "Regexp splitting a line into words")

	outputmode := flag.Int("outputmode", defaultConfig.Output.OutputMode, "0: order clusters by support, 1: order by complexity")
	detailtoken := flag.Bool("detailtoken", defaultConfig.Output.DetailToken, "Always parenthesize token sets, even single-word ones")
	outliers := flag.String("outliers", defaultConfig.Output.Outliers, "Path to write lines that matched no surviving cluster")

	syslogFacility := flag.String("syslog", defaultConfig.Logging.Syslog, "Syslog facility to log to instead of stderr (e.g. local0, daemon)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	appLogger, err := buildLogger(*syslogFacility, *debugMode)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}

	cfg, err := resolveConfig(*configFile, appLogger)
	if err != nil {
		appLogger.Fatalf("config: %v", err)
	}
	applyFlagOverrides(cfg, flagOverrides{
		support: support, rsupport: rsupport, wsize: wsize, csize: csize,
		aggrsup: aggrsup, wtablesize: wtablesize, initseed: initseed,
		wfilter: wfilter, wsearch: wsearch, wreplace: wreplace,
		wweight: wweight, weightf: weightf,
		byteoffset: byteoffset, lfilter: lfilter, template: template, separator: separator,
		outputmode: outputmode, detailtoken: detailtoken, outliers: outliers,
	})
	cfg.Input.Paths = flag.Args()

	if len(cfg.Input.Paths) == 0 {
		appLogger.Fatal("no input files given; pass one or more paths after the flags")
	}

	engine, err := pipeline.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("engine init: %v", err)
	}

	showStartupInfo(appLogger, cfg)

	result, err := engine.Run(cfg.Input.Paths)
	if err != nil {
		appLogger.Fatalf("run: %v", err)
	}
	appLogger.Infof("clustering done: %d unjoined, %d joined clusters", countUnjoined(result), len(result.Joined))

	if *ipcMode {
		if err := ipc.Dump(os.Stdout, result.Emitter, result); err != nil {
			appLogger.Fatalf("ipc dump: %v", err)
		}
	} else if err := result.Emitter.Emit(os.Stdout, result.Family, result.Joined); err != nil {
		appLogger.Fatalf("emit: %v", err)
	}

	if *probeMode {
		probe := cli.NewProbe(cfg, engine, result, appLogger)
		if err := probe.Start(); err != nil {
			appLogger.Fatalf("probe error: %v", err)
		}
	}
}

// buildLogger wires stderr or syslog output per the logging config,
// honoring -v for verbosity.
func buildLogger(syslogFacility string, debug bool) (*log.Logger, error) {
	if syslogFacility != "" {
		l, err := logger.NewSyslog(AppName, syslogFacility)
		if err != nil {
			return nil, err
		}
		if debug {
			l.SetLevel(log.DebugLevel)
		}
		return l, nil
	}
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: debug})
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l, nil
}

func countUnjoined(r *pipeline.Result) int {
	n := 0
	r.Family.All(func(c *pipeline.Candidate) {
		if !c.JoinedFlag {
			n++
		}
	})
	return n
}

// resolveConfig loads -config if given. Otherwise it asks a PathResolver for
// the platform's standard config location (falling back across $HOME, the
// temp dir, and the executable's own directory in turn) and loads-or-creates
// the config there; if even path resolution fails, it falls back to defaults
// without touching disk.
func resolveConfig(configFile string, logger *log.Logger) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.InitConfig(configFile)
		if err != nil {
			return nil, err
		}
		logger.Debugf("loaded config from %s", configFile)
		return cfg, nil
	}

	resolver, err := utils.NewPathResolver()
	if err != nil {
		logger.Warnf("path resolution failed, using defaults without touching disk: %v", err)
		return config.DefaultConfig(), nil
	}
	path, err := resolver.GetConfigPath("config.toml")
	if err != nil {
		logger.Warnf("config path resolution failed, using defaults without touching disk: %v", err)
		return config.DefaultConfig(), nil
	}
	cfg, err := config.InitConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Debugf("loaded config from %s", path)
	return cfg, nil
}

type flagOverrides struct {
	support                          *int
	rsupport                         *float64
	wsize, csize, wtablesize         *int
	aggrsup                          *bool
	initseed                         *uint64
	wfilter, wsearch, wreplace       *string
	wweight                          *float64
	weightf                          *int
	byteoffset                       *int
	lfilter, template, separator     *string
	outputmode                       *int
	detailtoken                      *bool
	outliers                         *string
}

// applyFlagOverrides layers explicitly-set flags on top of a loaded config,
// letting a config.toml file supply defaults a flag-less invocation keeps.
func applyFlagOverrides(cfg *config.Config, o flagOverrides) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["support"] {
		cfg.Mining.Support = *o.support
	}
	if set["rsupport"] {
		cfg.Mining.RSupport = *o.rsupport
	}
	if set["wsize"] {
		cfg.Mining.WSize = *o.wsize
	}
	if set["csize"] {
		cfg.Mining.CSize = *o.csize
	}
	if set["aggrsup"] {
		cfg.Mining.AggrSup = *o.aggrsup
	}
	if set["wtablesize"] {
		cfg.Mining.WTableSize = *o.wtablesize
	}
	if set["initseed"] {
		cfg.Mining.InitSeed = *o.initseed
	}
	if set["wfilter"] {
		cfg.Mining.WFilter = *o.wfilter
	}
	if set["wsearch"] {
		cfg.Mining.WSearch = *o.wsearch
	}
	if set["wreplace"] {
		cfg.Mining.WReplace = *o.wreplace
	}
	if set["wweight"] {
		cfg.Join.WWeight = *o.wweight
	}
	if set["weightf"] {
		cfg.Join.WeightF = *o.weightf
	}
	if set["byteoffset"] {
		cfg.Input.ByteOffset = *o.byteoffset
	}
	if set["lfilter"] {
		cfg.Input.LFilter = *o.lfilter
	}
	if set["template"] {
		cfg.Input.Template = *o.template
	}
	if set["separator"] {
		cfg.Input.Separator = *o.separator
	}
	if set["outputmode"] {
		cfg.Output.OutputMode = *o.outputmode
	}
	if set["detailtoken"] {
		cfg.Output.DetailToken = *o.detailtoken
	}
	if set["outliers"] {
		cfg.Output.Outliers = *o.outliers
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[logclust] Finds recurring patterns in mountains of log lines!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use --help to see available options")
	logger.Print("")
	logger.Print("Find out more at", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(logger *log.Logger, cfg *config.Config) {
	pid := os.Getpid()

	println("===========")
	println(" logclust  ")
	println("===========")
	logger.Infof("Version: %s", Version)
	logger.Infof("Process ID: [ %d ]", pid)
	logger.Infof("inputs: %s", strings.Join(cfg.Input.Paths, ", "))
	logger.Info("status: mining")
	println("===========")
}
