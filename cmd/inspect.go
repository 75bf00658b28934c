package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
	"firestige.xyz/strix/internal/pipeline"
	"firestige.xyz/strix/internal/source/pcapfile"
	"firestige.xyz/strix/internal/source/rawfile"
	"firestige.xyz/strix/pkg/plugin"
	"firestige.xyz/strix/plugins/parser/sdp"

	// Built-in plugin registration
	_ "firestige.xyz/strix/plugins"
)

var (
	inspectRaw    bool
	inspectPorts  []int
	inspectTasks  string
	inspectFormat string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <file>...",
	Short: "Classify session descriptions found in capture files or payload dumps",
	Long: `Inspect replays each input and reports every session-description payload
it finds, line by line. Inputs are pcap files unless --raw marks them as
already-extracted payload dumps. A YAML task file can provide a batch of
inputs with per-input options instead of (or in addition to) arguments.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false,
		"treat inputs as raw payload dumps instead of pcap files")
	inspectCmd.Flags().IntSliceVar(&inspectPorts, "ports", nil,
		"restrict pcap replay to packets touching these TCP/UDP ports")
	inspectCmd.Flags().StringVar(&inspectTasks, "tasks", "",
		"YAML task file listing inputs to inspect")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "",
		"console output format (text or json), overrides config")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log.Init(&cfg.Log)
	logger := log.GetLogger()

	tasks, err := collectTasks(args)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		server.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			server.Stop(ctx)
		}()
	}

	ctx := cmd.Context()

	parsers, err := buildParsers(ctx, cfg)
	if err != nil {
		return err
	}
	reporters, err := buildReporters(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, p := range parsers {
			p.Stop(ctx)
		}
		for _, r := range reporters {
			r.Stop(ctx)
		}
	}()

	// Raw inputs have no transport context to sniff, so they are forced
	// through the SDP parser.
	var forced plugin.Parser
	for _, p := range parsers {
		if p.Name() == sdp.Name {
			forced = p
		}
	}

	for _, task := range tasks {
		opts := pipeline.Options{Parsers: parsers, Reporters: reporters}
		var src pipeline.Source
		if task.Raw {
			opts.Forced = forced
			src = rawfile.New(task.Input)
		} else {
			src = pcapfile.New(task.Input, task.Ports)
		}

		if err := pipeline.New(opts).Run(ctx, src); err != nil {
			return fmt.Errorf("inspection of %s failed: %w", task.Input, err)
		}
	}

	pipe := pipeline.New(pipeline.Options{Reporters: reporters})
	if err := pipe.Flush(ctx); err != nil {
		logger.WithError(err).Warn("reporter flush failed")
	}
	return nil
}

// collectTasks merges the task file, if any, with the command-line inputs.
func collectTasks(args []string) ([]config.Task, error) {
	var tasks []config.Task

	if inspectTasks != "" {
		tf, err := config.LoadTasks(inspectTasks)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, tf.Tasks...)
	}

	ports := make([]uint16, 0, len(inspectPorts))
	for _, port := range inspectPorts {
		if port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid port %d", port)
		}
		ports = append(ports, uint16(port))
	}
	for _, arg := range args {
		tasks = append(tasks, config.Task{Input: arg, Raw: inspectRaw, Ports: ports})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no inputs: pass files as arguments or use --tasks")
	}
	return tasks, nil
}

func buildParsers(ctx context.Context, cfg *config.Config) ([]plugin.Parser, error) {
	registry := plugin.Default()
	parsers := make([]plugin.Parser, 0, len(registry.ParserNames()))
	for _, name := range registry.ParserNames() {
		p, err := registry.NewParser(name)
		if err != nil {
			return nil, err
		}
		if err := p.Init(cfg.Parsers[name]); err != nil {
			return nil, fmt.Errorf("%w: parser %s: %v", core.ErrPluginInitFailed, name, err)
		}
		if err := p.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start parser %s: %w", name, err)
		}
		parsers = append(parsers, p)
	}
	return parsers, nil
}

func buildReporters(ctx context.Context, cfg *config.Config) ([]plugin.Reporter, error) {
	registry := plugin.Default()
	reporters := make([]plugin.Reporter, 0, len(cfg.Reporters))
	for _, rc := range cfg.Reporters {
		r, err := registry.NewReporter(rc.Name)
		if err != nil {
			return nil, err
		}

		options := rc.Options
		if rc.Name == "console" && inspectFormat != "" {
			options = map[string]any{}
			for k, v := range rc.Options {
				options[k] = v
			}
			options["format"] = inspectFormat
		}

		if err := r.Init(options); err != nil {
			return nil, fmt.Errorf("%w: reporter %s: %v", core.ErrPluginInitFailed, rc.Name, err)
		}
		if err := r.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start reporter %s: %w", rc.Name, err)
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}
