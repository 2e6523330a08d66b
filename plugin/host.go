package plugin

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/cortex-bridge/heartbeat"
)

// HostModuleName is the import module guests use for host functions.
const HostModuleName = "cortex"

// Guest log levels accepted by cortex.log.
const (
	LogDebug int32 = iota
	LogInfo
	LogWarn
	LogError
)

// maxLogMessage caps how much guest memory one cortex.log call may read.
const maxLogMessage = 64 << 10

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// hostModuleBuilder collects host functions and instantiates them as one
// module in a wazero runtime.
type hostModuleBuilder struct {
	runtime wazero.Runtime
	name    string
	funcs   []hostFunc
}

func newHostModule(rt wazero.Runtime, name string) *hostModuleBuilder {
	return &hostModuleBuilder{runtime: rt, name: name}
}

// Func adds a function to the host module builder.
func (b *hostModuleBuilder) Func(name string, fn api.GoModuleFunc, params, results []api.ValueType) *hostModuleBuilder {
	b.funcs = append(b.funcs, hostFunc{name: name, fn: fn, params: params, results: results})
	return b
}

// Build instantiates the host module into the wazero runtime.
func (b *hostModuleBuilder) Build(ctx context.Context) (api.Module, error) {
	builder := b.runtime.NewHostModuleBuilder(b.name)
	for _, f := range b.funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	return builder.Instantiate(ctx)
}

// instantiateHost registers cortex.heartbeat and cortex.log.
func instantiateHost(ctx context.Context, rt wazero.Runtime, flag *heartbeat.Flag, log *zap.Logger) (api.Module, error) {
	return newHostModule(rt, HostModuleName).
		Func("heartbeat", heartbeatFunc(flag), nil, nil).
		Func("log", logFunc(log),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, nil).
		Build(ctx)
}

func heartbeatFunc(flag *heartbeat.Flag) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, _ []uint64) {
		flag.Request()
	}
}

// logFunc reads (level, ptr, len) and forwards the guest's message.
func logFunc(log *zap.Logger) api.GoModuleFunc {
	return func(_ context.Context, mod api.Module, stack []uint64) {
		level := api.DecodeI32(stack[0])
		ptr := api.DecodeU32(stack[1])
		length := api.DecodeU32(stack[2])

		if length > maxLogMessage {
			log.Warn("guest log message too large", zap.Uint32("length", length))
			return
		}
		mem := mod.Memory()
		if mem == nil {
			log.Warn("guest logged without memory")
			return
		}
		msg, ok := mem.Read(ptr, length)
		if !ok {
			log.Warn("guest log message out of range",
				zap.Uint32("ptr", ptr),
				zap.Uint32("length", length))
			return
		}
		log.Log(guestLevel(level), string(msg), zap.String("source", "guest"))
	}
}

func guestLevel(level int32) zapcore.Level {
	switch level {
	case LogDebug:
		return zapcore.DebugLevel
	case LogInfo:
		return zapcore.InfoLevel
	case LogWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
