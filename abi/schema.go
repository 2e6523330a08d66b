package abi

import "go.bytecodealliance.org/wit"

// Definition names one type that crosses the host boundary.
type Definition struct {
	// Name is the WIT identifier.
	Name string
	// CName is the C typedef name.
	CName string
	Type  *wit.TypeDef
}

// Schema describes every type of the host interface in declaration order.
// Later definitions may refer to earlier ones.
type Schema struct {
	InMsg        Definition
	OutMsg       Definition
	OptionOutMsg Definition
}

// Definitions returns the schema entries in declaration order.
func (s *Schema) Definitions() []Definition {
	return []Definition{s.InMsg, s.OutMsg, s.OptionOutMsg}
}

// NewSchema builds the type definitions for the host interface. Enum cases
// are listed in discriminant order so that case index equals discriminant.
func NewSchema() *Schema {
	inCases := make([]wit.EnumCase, 0, inMsgCount)
	for _, m := range InMsgs() {
		inCases = append(inCases, wit.EnumCase{Name: m.String()})
	}
	outCases := make([]wit.EnumCase, 0, outMsgCount)
	for _, m := range OutMsgs() {
		outCases = append(outCases, wit.EnumCase{Name: m.String()})
	}

	inMsg := &wit.TypeDef{Kind: &wit.Enum{Cases: inCases}}
	outMsg := &wit.TypeDef{Kind: &wit.Enum{Cases: outCases}}
	optOut := &wit.TypeDef{Kind: &wit.Option{Type: outMsg}}

	return &Schema{
		InMsg:        Definition{Name: "in-msg", CName: "cortex_in_msg", Type: inMsg},
		OutMsg:       Definition{Name: "out-msg", CName: "cortex_out_msg", Type: outMsg},
		OptionOutMsg: Definition{Name: "option-out-msg", CName: "cortex_option_out_msg", Type: optOut},
	}
}
