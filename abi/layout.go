package abi

import "go.bytecodealliance.org/wit"

// Info describes the in-memory layout of a type.
type Info struct {
	Size  uint32
	Align uint32
	// PayloadOffset is the byte offset of the payload for tagged types
	// (option, result, variant). Zero otherwise.
	PayloadOffset uint32
}

// LayoutCalculator computes Canonical ABI layouts and caches results per
// type definition. Not safe for concurrent use.
type LayoutCalculator struct {
	cache map[*wit.TypeDef]Info
}

func NewLayoutCalculator() *LayoutCalculator {
	return &LayoutCalculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

// Layout is a convenience wrapper around a fresh calculator.
func Layout(t wit.Type) Info {
	return NewLayoutCalculator().Calculate(t)
}

func (c *LayoutCalculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *LayoutCalculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info = c.calculateRecord(kind)
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Variant:
		payloads := make([]wit.Type, 0, len(kind.Cases))
		for _, cs := range kind.Cases {
			payloads = append(payloads, cs.Type)
		}
		info = c.calculateTagged(DiscriminantSize(len(kind.Cases)), payloads)
	case *wit.Option:
		info = c.calculateTagged(1, []wit.Type{kind.Type})
	case *wit.Result:
		info = c.calculateTagged(1, []wit.Type{kind.OK, kind.Err})
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

func (c *LayoutCalculator) calculateRecord(r *wit.Record) Info {
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range r.Fields {
		fl := c.Calculate(field.Type)
		offset = AlignTo(offset, fl.Align)
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
		offset += fl.Size
	}

	return Info{Size: AlignTo(offset, maxAlign), Align: maxAlign}
}

// calculateTagged lays out a discriminant followed by the largest payload.
// A nil payload is a case without data.
func (c *LayoutCalculator) calculateTagged(discSize uint32, payloads []wit.Type) Info {
	maxAlign := discSize
	maxSize := uint32(0)

	for _, p := range payloads {
		if p == nil {
			continue
		}
		pl := c.Calculate(p)
		if pl.Align > maxAlign {
			maxAlign = pl.Align
		}
		if pl.Size > maxSize {
			maxSize = pl.Size
		}
	}

	payloadOffset := AlignTo(discSize, maxAlign)
	return Info{
		Size:          AlignTo(payloadOffset+maxSize, maxAlign),
		Align:         maxAlign,
		PayloadOffset: payloadOffset,
	}
}

// DiscriminantSize returns the byte width needed to tag n cases.
func DiscriminantSize(n int) uint32 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
