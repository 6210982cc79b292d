package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"ragqa/internal/app"
	"ragqa/internal/chain"
	"ragqa/internal/config"
	"ragqa/internal/domain"
	"ragqa/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		defPath string
		verbose bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragqa/config.yaml if not provided)")
	flag.StringVar(&defPath, "def", "", "Chain definition YAML")
	flag.BoolVar(&verbose, "verbose", false, "Log every prompt and reply")
	flag.Parse()

	if defPath == "" {
		fmt.Println("Usage: chain --def=chain.yaml [--config=config.yaml] [--verbose] key=value ... | text")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	def, err := chain.LoadDefinition(defPath)
	if err != nil {
		log.Fatalf("chain definition: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := app.NewGenerator(ctx, cfg.Generator)
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	opts := []chain.Option{chain.WithLogger(logger), chain.WithVerbose(verbose)}
	if err := run(ctx, os.Stdout, gen, def, flag.Args(), opts...); err != nil {
		log.Fatalf("chain %s: %v", def.Name, err)
	}
}

func run(ctx context.Context, out io.Writer, gen domain.Generator, def *chain.Definition, args []string, opts ...chain.Option) error {
	if def.IsSimple() {
		c, err := chain.NewSimpleSequential(gen, def.Simple, opts...)
		if err != nil {
			return err
		}
		res, err := c.RunString(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res)
		return nil
	}

	c, err := chain.NewSequential(gen, def.Steps, def.Inputs, def.Outputs, opts...)
	if err != nil {
		return err
	}
	inputs, err := parseInputs(args)
	if err != nil {
		return err
	}
	var missing []string
	for _, k := range c.InputKeys() {
		if _, ok := inputs[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return domain.InvalidConfig("chain input", strings.Join(missing, ","), "missing key=value argument")
	}
	res, err := c.Run(ctx, inputs)
	if err != nil {
		return err
	}
	for _, k := range c.OutputKeys() {
		fmt.Fprintf(out, "%s: %s\n", k, res[k])
	}
	return nil
}

func parseInputs(args []string) (map[string]string, error) {
	inputs := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, domain.InvalidConfig("chain input", a, "expected key=value")
		}
		inputs[k] = v
	}
	return inputs, nil
}
