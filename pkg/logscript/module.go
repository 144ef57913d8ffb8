package logscript

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

var ErrNoRegister = errors.New("logscript: script did not call register()")
var ErrHookTimeout = errors.New("logscript: js hook timeout")

// Module is one loaded annotator script. Scripts call
//
//	register({ name: "...", annotate: function(line, ctx) { ... } })
//
// and annotate() returns null to skip a line, a string to replace its
// message, or an object with level/message/tags/timestamp fields. The
// ctx object carries lineNumber and a persistent state object.
type Module struct {
	vm     *goja.Runtime
	opts   options
	config *goja.Object

	scriptPath string

	name string
	tag  string

	annotateFn goja.Callable
	initFn     goja.Callable
	shutdownFn goja.Callable

	state *goja.Object
	stats Stats
}

type options struct {
	hookTimeout time.Duration
}

func parseOptions(opts Options) (options, error) {
	var out options
	if opts.HookTimeout != "" {
		d, err := time.ParseDuration(opts.HookTimeout)
		if err != nil {
			return options{}, errors.Wrap(err, "parse hook timeout")
		}
		out.hookTimeout = d
	}
	return out, nil
}

func LoadFromFile(scriptPath string, opts Options) (*Module, error) {
	parsedOpts, err := parseOptions(opts)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}

	m := &Module{
		vm:         goja.New(),
		opts:       parsedOpts,
		scriptPath: scriptPath,
	}

	enableConsole(m.vm)
	m.state = m.vm.NewObject()

	if err := m.vm.Set("register", func(config goja.Value) error {
		if m.config != nil {
			return errors.New("register() called more than once")
		}
		if goja.IsNull(config) || goja.IsUndefined(config) {
			return errors.New("register(config) requires a config object")
		}
		m.config = config.ToObject(m.vm)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "set register")
	}

	if err := injectHelpers(m); err != nil {
		return nil, err
	}

	prog, err := goja.Compile(scriptPath, string(b), false)
	if err != nil {
		return nil, errors.Wrap(err, "compile script")
	}
	if _, err := m.vm.RunProgram(prog); err != nil {
		return nil, errors.Wrap(err, "run script")
	}

	if m.config == nil {
		return nil, ErrNoRegister
	}

	nameVal := m.config.Get("name")
	if isNullish(nameVal) || strings.TrimSpace(nameVal.String()) == "" {
		return nil, errors.New("register({ name: string, ... }): name is required")
	}
	m.name = nameVal.String()
	m.tag = m.name

	tagVal := m.config.Get("tag")
	if !isNullish(tagVal) && strings.TrimSpace(tagVal.String()) != "" {
		m.tag = tagVal.String()
	}

	annotateFn, ok := goja.AssertFunction(m.config.Get("annotate"))
	if !ok {
		return nil, errors.New("register({ annotate: function(line, ctx), ... }): annotate is required")
	}
	m.annotateFn = annotateFn

	if fn, ok := goja.AssertFunction(m.config.Get("init")); ok {
		m.initFn = fn
	}
	if fn, ok := goja.AssertFunction(m.config.Get("shutdown")); ok {
		m.shutdownFn = fn
	}

	if m.initFn != nil {
		if _, err := m.callHook(m.initFn, m.buildContext(0)); err != nil {
			m.stats.HookErrors++
		}
	}

	return m, nil
}

func (m *Module) Name() string       { return m.name }
func (m *Module) Tag() string        { return m.tag }
func (m *Module) ScriptPath() string { return m.scriptPath }
func (m *Module) Stats() Stats       { return m.stats }

func (m *Module) Close() error {
	if m.shutdownFn == nil {
		return nil
	}
	if _, err := m.callHook(m.shutdownFn, m.buildContext(0)); err != nil {
		m.stats.HookErrors++
	}
	return nil
}

// Annotate classifies one line. A nil annotation with nil error means
// the script chose to leave the line alone.
func (m *Module) Annotate(line string, lineNumber int64) (*Annotation, error) {
	m.stats.LinesProcessed++

	trimmed := strings.TrimRight(line, "\r\n")
	ctxObj := m.buildContext(lineNumber)

	v, err := m.callHook(m.annotateFn, m.vm.ToValue(trimmed), ctxObj)
	if err != nil {
		m.stats.HookErrors++
		return nil, err
	}
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		m.stats.Skipped++
		return nil, nil
	}

	ann := &Annotation{
		Level:      "INFO",
		Message:    trimmed,
		Raw:        trimmed,
		LineNumber: lineNumber,
	}

	if s, ok := v.Export().(string); ok {
		ann.Message = s
		m.stats.Annotated++
		return ann, nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, errors.Errorf("annotate must return null, a string or an object, got %T", v.Export())
	}

	if levelVal := obj.Get("level"); !isNullish(levelVal) {
		ann.Level = strings.ToUpper(levelVal.String())
	}
	if msgVal := obj.Get("message"); !isNullish(msgVal) {
		ann.Message = msgVal.String()
	}
	if tsVal := obj.Get("timestamp"); !isNullish(tsVal) {
		s := strings.TrimSpace(tsVal.String())
		if s != "" {
			ann.Timestamp = &s
		}
	}
	if tagsVal := obj.Get("tags"); !isNullish(tagsVal) {
		if arr, ok := tagsVal.Export().([]any); ok {
			out := make([]string, 0, len(arr))
			for _, it := range arr {
				if s, ok := it.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			ann.Tags = out
		}
	}

	m.stats.Annotated++
	return ann, nil
}

func (m *Module) buildContext(lineNumber int64) *goja.Object {
	obj := m.vm.NewObject()
	_ = obj.Set("lineNumber", lineNumber)
	_ = obj.Set("state", m.state)
	_ = obj.Set("now", m.newDate(time.Now().UTC()))
	return obj
}

func (m *Module) newDate(t time.Time) goja.Value {
	ctor := m.vm.Get("Date")
	o, err := m.vm.New(ctor, m.vm.ToValue(t.UnixMilli()))
	if err != nil {
		return goja.Undefined()
	}
	return o
}

func (m *Module) callHook(fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	if fn == nil {
		return goja.Undefined(), nil
	}

	if m.opts.hookTimeout > 0 {
		timer := time.AfterFunc(m.opts.hookTimeout, func() {
			m.vm.Interrupt(ErrHookTimeout)
		})
		defer timer.Stop()
		defer m.vm.ClearInterrupt()
	}

	v, err := fn(goja.Undefined(), args...)
	if err != nil {
		if isInterruptedByTimeout(err) {
			m.stats.HookTimeouts++
		}
		return nil, err
	}
	return v, nil
}

// injectHelpers defines log.parseTimestamp(value): best-effort timestamp
// parsing backed by dateparse, returning a JS Date or null.
func injectHelpers(m *Module) error {
	logObj := m.vm.NewObject()

	if err := logObj.Set("parseTimestamp", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || isNullish(call.Arguments[0]) {
			return goja.Null()
		}
		s := strings.TrimSpace(call.Arguments[0].String())
		if s == "" {
			return goja.Null()
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return goja.Null()
		}
		return m.newDate(t.UTC())
	}); err != nil {
		return errors.Wrap(err, "set log.parseTimestamp")
	}

	return errors.Wrap(m.vm.Set("log", logObj), "set log")
}

func enableConsole(vm *goja.Runtime) {
	obj := vm.NewObject()

	_ = obj.Set("log", func(call goja.FunctionCall) goja.Value {
		_, _ = fmt.Fprintln(os.Stderr, joinArgs(call.Arguments)...)
		return goja.Undefined()
	})
	_ = obj.Set("error", func(call goja.FunctionCall) goja.Value {
		_, _ = fmt.Fprintln(os.Stderr, joinArgs(call.Arguments)...)
		return goja.Undefined()
	})

	_ = vm.Set("console", obj)
}

func joinArgs(args []goja.Value) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		out = append(out, a.Export())
	}
	return out
}

func isNullish(v goja.Value) bool {
	if v == nil {
		return true
	}
	return goja.IsUndefined(v) || goja.IsNull(v)
}

func isInterruptedByTimeout(err error) bool {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if v, ok := interrupted.Value().(error); ok && errors.Is(v, ErrHookTimeout) {
			return true
		}
	}
	return errors.Is(err, ErrHookTimeout)
}
