// Command libcortex builds the cortex bridge as a C shared library:
//
//	go build -buildmode=c-shared -o libcortex.so ./cmd/libcortex
//
// The exported declarations match the header printed by cortex-abi header.
package main

/*
#include <stdbool.h>
#include <stdint.h>

typedef uint8_t cortex_in_msg;
typedef uint8_t cortex_out_msg;

typedef struct {
	uint8_t tag;
	cortex_out_msg value;
} cortex_option_out_msg;
*/
import "C"

import (
	"github.com/wippyai/cortex-bridge/abi"
	"github.com/wippyai/cortex-bridge/bridge"
)

//export cortex_create_and_autorun
func cortex_create_and_autorun() {
	bridge.CreateAndAutorun()
}

//export cortex_start
func cortex_start() {
	bridge.Start()
}

//export cortex_keepalive
func cortex_keepalive() {
	bridge.RequestHeartbeat()
}

//export cortex_await_message
func cortex_await_message() C.cortex_option_out_msg {
	return toC(bridge.AwaitMessage())
}

//export cortex_try_get_message
func cortex_try_get_message() C.cortex_option_out_msg {
	return toC(bridge.TryGetMessage())
}

//export cortex_write_ping
func cortex_write_ping() C.bool {
	return C.bool(bridge.WritePing())
}

func toC(o abi.Option[abi.OutMsg]) C.cortex_option_out_msg {
	return C.cortex_option_out_msg{
		tag:   C.uint8_t(o.Tag),
		value: C.cortex_out_msg(o.Value),
	}
}

func main() {}
