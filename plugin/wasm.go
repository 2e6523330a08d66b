package plugin

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/engine"
	"github.com/wippyai/cortex-bridge/errors"
	"github.com/wippyai/cortex-bridge/heartbeat"
	"github.com/wippyai/cortex-bridge/schedule"
)

// TickExport is the guest function called once per tick with the tick number.
const TickExport = "cortex_tick"

// Config holds configuration for plugin loading.
type Config struct {
	// Flag receives cortex.heartbeat calls. Nil means heartbeat.Default.
	Flag *heartbeat.Flag

	// Name is the guest module name. Empty means "decision".
	Name string

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Wasm is a decision plugin compiled to WebAssembly. It implements
// engine.Plugin by ticking the guest in schedule.Update.
type Wasm struct {
	runtime wazero.Runtime
	tick    api.Function
	log     *zap.Logger
	name    string

	closeOnce sync.Once
	closeErr  error
}

var _ engine.Plugin = (*Wasm)(nil)

// LoadFile reads a plugin from disk.
func LoadFile(ctx context.Context, path string, cfg *Config) (*Wasm, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Instantiation(fmt.Sprintf("read %s", path), err)
	}
	return Load(ctx, wasmBytes, cfg)
}

// Load compiles and instantiates a plugin in its own wazero runtime.
// The guest must export cortex_tick(i64).
func Load(ctx context.Context, wasmBytes []byte, cfg *Config) (*Wasm, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Flag == nil {
		c.Flag = heartbeat.Default
	}
	if c.Name == "" {
		c.Name = "decision"
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if c.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	w, err := instantiate(ctx, rt, wasmBytes, c)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return w, nil
}

func instantiate(ctx context.Context, rt wazero.Runtime, wasmBytes []byte, c Config) (*Wasm, error) {
	log := Logger().With(zap.String("plugin", c.Name))

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Instantiation("compile plugin", err)
	}

	if _, err := instantiateHost(ctx, rt, c.Flag, log); err != nil {
		return nil, errors.Instantiation("instantiate host module", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(c.Name))
	if err != nil {
		return nil, errors.Instantiation("instantiate plugin", err)
	}

	fn := mod.ExportedFunction(TickExport)
	if fn == nil {
		return nil, errors.MissingExport(TickExport)
	}
	if err := checkTickSignature(fn.Definition()); err != nil {
		return nil, err
	}

	log.Info("plugin loaded", zap.Int("exports", len(compiled.ExportedFunctions())))
	return &Wasm{
		runtime: rt,
		tick:    fn,
		log:     log,
		name:    c.Name,
	}, nil
}

func checkTickSignature(def api.FunctionDefinition) error {
	params, results := def.ParamTypes(), def.ResultTypes()
	if len(params) == 1 && params[0] == api.ValueTypeI64 && len(results) == 0 {
		return nil
	}
	return errors.New(errors.PhasePlugin, errors.KindInstantiation).
		Detail("%s must have type (i64) -> (), got %d params and %d results", TickExport, len(params), len(results)).
		Build()
}

func (w *Wasm) Name() string { return w.name }

// Build registers the tick system and closes the runtime with the app.
func (w *Wasm) Build(app *engine.App) error {
	w.log = w.log.With(zap.String("run_id", app.RunID()))
	app.AddSystem(schedule.Update, "wasm:"+w.name, w.system)
	app.OnClose(w.Close)
	return nil
}

// Tick calls the guest once.
func (w *Wasm) Tick(ctx context.Context, seq uint64) error {
	if _, err := w.tick.Call(ctx, seq); err != nil {
		return errors.Trap(fmt.Sprintf("%s(%d)", TickExport, seq), err)
	}
	return nil
}

// system keeps the loop running when the guest traps.
func (w *Wasm) system(ctx context.Context, tick *schedule.Tick) {
	if err := w.Tick(ctx, tick.Seq); err != nil {
		w.log.Error("plugin tick failed", zap.Uint64("tick", tick.Seq), zap.Error(err))
	}
}

// Close releases the guest and its runtime. Idempotent.
func (w *Wasm) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.closeErr = w.runtime.Close(ctx)
	})
	return w.closeErr
}
