// Package prompt collects a record interactively by walking a runtime node
// tree. Each answer is checked with the node runtime before moving on, so
// constraint violations are reported at the prompt that caused them.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemafields/pkg/fields"
	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/widgets"
)

// Collector prompts for the values of a node tree.
type Collector struct {
	driver  Driver
	widgets *widgets.Registry
	prefill map[string]any
	logger  zerolog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithDriver overrides the survey driver.
func WithDriver(driver Driver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithWidgets overrides the widget registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(c *Collector) {
		if registry != nil {
			c.widgets = registry
		}
	}
}

// WithPrefill supplies the current record. Its values become prompt defaults
// and are shown for readonly fields.
func WithPrefill(values map[string]any) Option {
	return func(c *Collector) {
		c.prefill = values
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New constructs a Collector using survey and the built-in widgets.
func New(options ...Option) *Collector {
	c := &Collector{
		driver:  NewSurveyDriver(),
		widgets: widgets.NewRegistry(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collect prompts for every field of root and returns the raw record. The
// result still needs root.Deserialize for coercion and whole-record checks.
func (c *Collector) Collect(ctx context.Context, root *node.Node) (any, error) {
	if root == nil {
		return nil, errors.New("prompt: node is nil")
	}
	value, _, err := c.collect(ctx, root, "")
	return value, err
}

// collect prompts for n. path addresses the value inside the record and is
// empty for the root.
func (c *Collector) collect(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	widget, _ := c.widgets.Resolve(n)
	c.logger.Debug().Str("path", path).Str("widget", widget).Msg("prompt")

	switch widget {
	case widgets.WidgetReadonly:
		if current, ok := fields.ResolvePath(path, c.prefill); ok {
			return nil, false, c.driver.Info(ctx, fmt.Sprintf("%s: %v (readonly)", n.Title, current))
		}
		return nil, false, nil
	case widgets.WidgetGroup:
		return c.collectMapping(ctx, n, path)
	case widgets.WidgetList:
		return c.collectSequence(ctx, n, path)
	case widgets.WidgetChips:
		return c.collectSet(ctx, n, path)
	case widgets.WidgetToggle:
		return c.collectBoolean(ctx, n, path)
	case widgets.WidgetSelect:
		return c.collectChoice(ctx, n, path)
	default:
		return c.collectText(ctx, n, path, widget)
	}
}

func (c *Collector) collectMapping(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	if n.Title != "" && path != "" {
		if err := c.driver.Info(ctx, n.Title); err != nil {
			return nil, false, err
		}
	}
	out := make(map[string]any, len(n.Children))
	for _, child := range n.Children {
		value, present, err := c.collect(ctx, child, joinPath(path, child.Name))
		if err != nil {
			return nil, false, err
		}
		if present {
			out[child.Name] = value
		}
	}
	if len(out) == 0 && !n.Missing.IsRequired() && path != "" {
		return nil, false, nil
	}
	return out, true, nil
}

func (c *Collector) collectSequence(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	if len(n.Children) != 1 {
		return nil, false, fmt.Errorf("prompt: sequence %q needs exactly one child", path)
	}
	item := n.Children[0]
	var items []any
	if !n.Missing.IsRequired() {
		add, err := c.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s?", n.Title), Help: widgets.HelpText(n)})
		if err != nil {
			return nil, false, err
		}
		if !add {
			return nil, false, nil
		}
	}
	for {
		value, present, err := c.collect(ctx, item, fmt.Sprintf("%s.%d", path, len(items)))
		if err != nil {
			return nil, false, err
		}
		if present {
			items = append(items, value)
		}
		more, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add another?"})
		if err != nil {
			return nil, false, err
		}
		if !more {
			break
		}
	}
	if items == nil {
		items = []any{}
	}
	return items, true, nil
}

func (c *Collector) collectSet(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	choices := n.Choices()
	options := stringify(choices)
	var defaults []int
	if current, ok := fields.ResolvePath(path, c.prefill); ok {
		if list, ok := current.([]any); ok {
			defaults = indicesOf(options, stringify(list))
		}
	}
	for {
		indices, err := c.driver.MultiSelect(ctx, SelectConfig{
			Message:  n.Title,
			Options:  options,
			Defaults: defaults,
			Help:     widgets.HelpText(n),
		})
		if err != nil {
			return nil, false, err
		}
		var value any
		if len(indices) > 0 {
			selected := make([]any, 0, len(indices))
			for _, idx := range indices {
				if idx >= 0 && idx < len(choices) {
					selected = append(selected, choices[idx])
				}
			}
			value = selected
		}
		if ok, err := c.check(ctx, n, path, value); err != nil || !ok {
			if err != nil {
				return nil, false, err
			}
			continue
		}
		return value, value != nil, nil
	}
}

func (c *Collector) collectBoolean(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	def, _ := c.current(n, path).(bool)
	value, err := c.driver.Confirm(ctx, ConfirmConfig{Message: n.Title, Default: def, Help: widgets.HelpText(n)})
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *Collector) collectChoice(ctx context.Context, n *node.Node, path string) (any, bool, error) {
	choices := n.Choices()
	options := stringify(choices)
	defaultIdx := -1
	if current := c.current(n, path); current != nil {
		defaultIdx = indexOf(options, fmt.Sprint(current))
	}
	for {
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      n.Title,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         widgets.HelpText(n),
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(choices) {
			if err := c.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", displayPath(path))); err != nil {
				return nil, false, err
			}
			continue
		}
		value := choices[idx]
		if ok, err := c.check(ctx, n, path, value); err != nil || !ok {
			if err != nil {
				return nil, false, err
			}
			continue
		}
		return value, true, nil
	}
}

func (c *Collector) collectText(ctx context.Context, n *node.Node, path, widget string) (any, bool, error) {
	def := ""
	if current := c.current(n, path); current != nil {
		def = fmt.Sprint(current)
	}
	cfg := InputConfig{Message: n.Title, Default: def, Help: widgets.HelpText(n)}
	for {
		var (
			answer string
			err    error
		)
		switch widget {
		case widgets.WidgetPassword:
			answer, err = c.driver.Password(ctx, cfg)
		case widgets.WidgetCodeEditor:
			answer, err = c.driver.TextArea(ctx, cfg)
		default:
			answer, err = c.driver.Input(ctx, cfg)
		}
		if err != nil {
			return nil, false, err
		}

		value, perr := parseAnswer(n.Kind, answer)
		if perr != nil {
			if err := c.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", displayPath(path), perr)); err != nil {
				return nil, false, err
			}
			continue
		}
		if ok, err := c.check(ctx, n, path, value); err != nil || !ok {
			if err != nil {
				return nil, false, err
			}
			continue
		}
		return value, value != nil, nil
	}
}

// check runs the node runtime on value and reports violations through the
// driver. Non-validation errors abort collection.
func (c *Collector) check(ctx context.Context, n *node.Node, path string, value any) (bool, error) {
	_, err := n.Deserialize(value)
	if err == nil {
		return true, nil
	}
	inv, ok := node.AsInvalid(err)
	if !ok {
		return false, err
	}
	flat := inv.Asdict()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := c.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", displayPath(path), flat[key])); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (c *Collector) current(n *node.Node, path string) any {
	if value, ok := fields.ResolvePath(path, c.prefill); ok {
		return value
	}
	if value, ok := n.Option(node.OptionDefault); ok {
		return value
	}
	return nil
}

// parseAnswer converts terminal input for kind. Blank input means absent.
func parseAnswer(kind node.Kind, answer string) (any, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil, nil
	}
	switch kind {
	case node.KindInteger:
		return strconv.ParseInt(trimmed, 10, 64)
	case node.KindFloat:
		return strconv.ParseFloat(trimmed, 64)
	default:
		return answer, nil
	}
}

func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func joinPath(parent, name string) string {
	switch {
	case parent == "":
		return name
	case name == "":
		return parent
	default:
		return parent + "." + name
	}
}

func displayPath(path string) string {
	if path == "" {
		return "value"
	}
	return path
}
