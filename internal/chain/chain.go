// Package chain runs prompt templates against a generator in sequence,
// passing each step's output on to later steps by name.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"ragqa/internal/domain"
)

var variableRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Step renders Template with the values gathered so far and stores the
// generator's reply under OutputKey.
type Step struct {
	Name      string `yaml:"name"`
	Template  string `yaml:"template"`
	OutputKey string `yaml:"output_key"`
}

type compiledStep struct {
	Step
	prompt prompts.PromptTemplate
}

type Option func(*options)

type options struct {
	logger  *slog.Logger
	verbose bool
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithVerbose logs every rendered prompt and reply at info level.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Sequential is a fixed list of steps with named inputs and outputs.
type Sequential struct {
	gen        domain.Generator
	steps      []compiledStep
	inputKeys  []string
	outputKeys []string
	opts       options
}

// NewSequential checks that every template variable is an input key or
// the output of an earlier step, that output keys are unique, and that
// every requested output is produced. With no outputKeys the last step's
// output is returned.
func NewSequential(gen domain.Generator, steps []Step, inputKeys, outputKeys []string, opts ...Option) (*Sequential, error) {
	if len(steps) == 0 {
		return nil, domain.InvalidConfig("chain", "steps", "at least one step is required")
	}
	known := make(map[string]string, len(inputKeys)+len(steps))
	for _, k := range inputKeys {
		if _, dup := known[k]; dup {
			return nil, domain.InvalidConfig("chain", k, "duplicate input key")
		}
		known[k] = "input"
	}
	compiled := make([]compiledStep, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			s.Name = fmt.Sprintf("step%d", i+1)
		}
		if s.OutputKey == "" {
			return nil, domain.InvalidConfig("chain", s.Name, "step has no output_key")
		}
		vars := Variables(s.Template)
		for _, v := range vars {
			if _, ok := known[v]; !ok {
				return nil, domain.InvalidConfig("chain", s.Name, fmt.Sprintf("variable {%s} is neither an input nor an earlier output", v))
			}
		}
		if owner, dup := known[s.OutputKey]; dup {
			return nil, domain.InvalidConfig("chain", s.OutputKey, "output key already defined by "+owner)
		}
		known[s.OutputKey] = s.Name
		compiled[i] = compiledStep{Step: s, prompt: fstring(s.Template, vars)}
	}
	if len(outputKeys) == 0 {
		outputKeys = []string{compiled[len(compiled)-1].OutputKey}
	}
	for _, k := range outputKeys {
		if _, ok := known[k]; !ok {
			return nil, domain.InvalidConfig("chain", k, "requested output is never produced")
		}
	}
	return &Sequential{
		gen:        gen,
		steps:      compiled,
		inputKeys:  append([]string(nil), inputKeys...),
		outputKeys: append([]string(nil), outputKeys...),
		opts:       buildOptions(opts),
	}, nil
}

// InputKeys returns the names Run expects.
func (c *Sequential) InputKeys() []string { return c.inputKeys }

// OutputKeys returns the names Run returns, in order.
func (c *Sequential) OutputKeys() []string { return c.outputKeys }

// Run executes the steps in order. A failing step aborts the chain with
// domain.ErrGenerationFailed naming the step.
func (c *Sequential) Run(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(inputs)+len(c.steps))
	for _, k := range c.inputKeys {
		v, ok := inputs[k]
		if !ok {
			return nil, domain.InvalidConfig("chain run", k, "missing input")
		}
		values[k] = v
	}
	for _, s := range c.steps {
		args := make(map[string]any, len(s.prompt.InputVariables))
		for _, v := range s.prompt.InputVariables {
			args[v] = values[v]
		}
		out, err := run(ctx, c.gen, c.opts, s.Name, s.prompt, args)
		if err != nil {
			return nil, err
		}
		values[s.OutputKey] = out
	}
	result := make(map[string]string, len(c.outputKeys))
	for _, k := range c.outputKeys {
		result[k] = values[k]
	}
	return result, nil
}

func run(ctx context.Context, gen domain.Generator, o options, name string, p prompts.PromptTemplate, values map[string]any) (string, error) {
	prompt, err := p.Format(values)
	if err != nil {
		return "", domain.InvalidConfig("chain step "+name, p.Template, err.Error())
	}
	if o.verbose {
		o.logger.Info("chain step prompt", "step", name, "prompt", prompt)
	}
	out, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", domain.NewError(domain.ErrGenerationFailed, "chain step", name, err)
	}
	out = strings.TrimSpace(out)
	if o.verbose {
		o.logger.Info("chain step output", "step", name, "output", out)
	} else {
		o.logger.Debug("chain step done", "step", name, "chars", len(out))
	}
	return out, nil
}

// SimpleSequential feeds each step's output into the single variable of
// the next template.
type SimpleSequential struct {
	gen   domain.Generator
	steps []simpleStep
	opts  options
}

type simpleStep struct {
	name     string
	variable string
	prompt   prompts.PromptTemplate
}

// NewSimpleSequential requires every template to have exactly one variable.
func NewSimpleSequential(gen domain.Generator, templates []string, opts ...Option) (*SimpleSequential, error) {
	if len(templates) == 0 {
		return nil, domain.InvalidConfig("simple chain", "templates", "at least one template is required")
	}
	steps := make([]simpleStep, len(templates))
	for i, tmpl := range templates {
		vars := Variables(tmpl)
		if len(vars) != 1 {
			return nil, domain.InvalidConfig("simple chain", tmpl, fmt.Sprintf("template must have exactly one variable, found %d", len(vars)))
		}
		steps[i] = simpleStep{name: fmt.Sprintf("step%d", i+1), variable: vars[0], prompt: fstring(tmpl, vars)}
	}
	return &SimpleSequential{gen: gen, steps: steps, opts: buildOptions(opts)}, nil
}

// RunString runs every step and returns the last output.
func (c *SimpleSequential) RunString(ctx context.Context, input string) (string, error) {
	cur := input
	for _, s := range c.steps {
		out, err := run(ctx, c.gen, c.opts, s.name, s.prompt, map[string]any{s.variable: cur})
		if err != nil {
			return "", err
		}
		cur = out
	}
	return cur, nil
}

// Variables lists the distinct {name} placeholders of an f-string template
// in order of first use. Doubled braces are literal.
func Variables(tmpl string) []string {
	clean := strings.NewReplacer("{{", "", "}}", "").Replace(tmpl)
	var out []string
	seen := map[string]bool{}
	for _, m := range variableRe.FindAllStringSubmatch(clean, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

func fstring(tmpl string, vars []string) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       tmpl,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatFString,
	}
}
