// Package cli implements the cortex-abi command: it prints the C header,
// the WIT interface and the boundary type layouts generated from abi.Schema.
package cli
