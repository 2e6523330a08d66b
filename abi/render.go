package abi

import (
	"fmt"
	"io"
	"strings"

	"go.bytecodealliance.org/wit"
)

const (
	// Package is the WIT package the host interface is published under.
	Package = "cortex:bridge@0.1.0"

	symbolPrefix = "cortex_"
)

// Function is one entry of the C function table exported by the shared library.
type Function struct {
	// Name is the WIT (kebab-case) name. The C symbol is derived from it.
	Name string
	// Result is "" for no result, "bool", or the Name of a schema Definition.
	Result string
}

// Symbol returns the exported C symbol name.
func (f Function) Symbol() string {
	return symbolPrefix + strings.ReplaceAll(f.Name, "-", "_")
}

// Functions lists the host function table in export order.
func Functions() []Function {
	return []Function{
		{Name: "create-and-autorun"},
		{Name: "start"},
		{Name: "keepalive"},
		{Name: "await-message", Result: "option-out-msg"},
		{Name: "try-get-message", Result: "option-out-msg"},
		{Name: "write-ping", Result: "bool"},
	}
}

// WriteCHeader renders the C declarations of the host interface.
func WriteCHeader(w io.Writer, s *Schema) error {
	var b strings.Builder
	calc := NewLayoutCalculator()
	names := s.cNames()

	b.WriteString("/* Code generated by cortex-abi. DO NOT EDIT. */\n")
	b.WriteString("#ifndef CORTEX_BRIDGE_H\n")
	b.WriteString("#define CORTEX_BRIDGE_H\n\n")
	b.WriteString("#include <stdbool.h>\n")
	b.WriteString("#include <stdint.h>\n")

	for _, def := range s.Definitions() {
		info := calc.Calculate(def.Type)
		fmt.Fprintf(&b, "\n/* %s: size %d, align %d */\n", def.Name, info.Size, info.Align)

		switch kind := def.Type.Kind.(type) {
		case *wit.Enum:
			fmt.Fprintf(&b, "typedef %s %s;\n", cInt(DiscriminantSize(len(kind.Cases))), def.CName)
			for i, cs := range kind.Cases {
				fmt.Fprintf(&b, "#define %s_%s ((%s)%d)\n", strings.ToUpper(def.CName), cIdent(cs.Name), def.CName, i)
			}
		case *wit.Option:
			b.WriteString("typedef struct {\n")
			b.WriteString("\tuint8_t tag;\n")
			fmt.Fprintf(&b, "\t%s value;\n", cTypeName(kind.Type, names))
			fmt.Fprintf(&b, "} %s;\n", def.CName)
		}
	}

	b.WriteString("\n#define CORTEX_OPTION_NONE ((uint8_t)0)\n")
	b.WriteString("#define CORTEX_OPTION_SOME ((uint8_t)1)\n\n")

	byName := s.byName()
	for _, fn := range Functions() {
		result := "void"
		switch {
		case fn.Result == "bool":
			result = "bool"
		case fn.Result != "":
			result = byName[fn.Result].CName
		}
		fmt.Fprintf(&b, "%s %s(void);\n", result, fn.Symbol())
	}

	b.WriteString("\n#endif /* CORTEX_BRIDGE_H */\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteWIT renders the host interface as a WIT package.
func WriteWIT(w io.Writer, s *Schema) error {
	var b strings.Builder
	names := s.witNames()

	fmt.Fprintf(&b, "package %s;\n\n", Package)
	b.WriteString("interface host {\n")

	for _, def := range s.Definitions() {
		switch kind := def.Type.Kind.(type) {
		case *wit.Enum:
			fmt.Fprintf(&b, "    enum %s {\n", def.Name)
			for _, cs := range kind.Cases {
				fmt.Fprintf(&b, "        %s,\n", cs.Name)
			}
			b.WriteString("    }\n\n")
		case *wit.Option:
			inner, _ := kind.Type.(*wit.TypeDef)
			fmt.Fprintf(&b, "    type %s = option<%s>;\n\n", def.Name, names[inner])
		}
	}

	for _, fn := range Functions() {
		if fn.Result == "" {
			fmt.Fprintf(&b, "    %s: func();\n", fn.Name)
			continue
		}
		fmt.Fprintf(&b, "    %s: func() -> %s;\n", fn.Name, fn.Result)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Schema) byName() map[string]Definition {
	m := make(map[string]Definition)
	for _, def := range s.Definitions() {
		m[def.Name] = def
	}
	return m
}

func (s *Schema) cNames() map[*wit.TypeDef]string {
	m := make(map[*wit.TypeDef]string)
	for _, def := range s.Definitions() {
		m[def.Type] = def.CName
	}
	return m
}

func (s *Schema) witNames() map[*wit.TypeDef]string {
	m := make(map[*wit.TypeDef]string)
	for _, def := range s.Definitions() {
		m[def.Type] = def.Name
	}
	return m
}

func cTypeName(t wit.Type, names map[*wit.TypeDef]string) string {
	switch t := t.(type) {
	case *wit.TypeDef:
		if name, ok := names[t]; ok {
			return name
		}
		return "void"
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "uint8_t"
	case wit.U16:
		return "uint16_t"
	case wit.U32:
		return "uint32_t"
	case wit.U64:
		return "uint64_t"
	default:
		return "void"
	}
}

func cInt(size uint32) string {
	return fmt.Sprintf("uint%d_t", size*8)
}

func cIdent(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
