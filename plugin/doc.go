// Package plugin hosts a WebAssembly decision plugin inside the engine.
//
// The guest is a core wasm module that exports
//
//	cortex_tick(tick i64)
//
// and may import from the "cortex" module:
//
//	heartbeat()                     // keep the engine alive
//	log(level i32, ptr i32, len i32) // 0 debug, 1 info, 2 warn, 3 error
//
// Each plugin runs in its own wazero runtime. A loaded *Wasm is an
// engine.Plugin: Build registers cortex_tick in schedule.Update and closes
// the runtime when the app closes. A trapping tick is logged and the loop
// keeps running.
package plugin
