package abi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"go.bytecodealliance.org/wit"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewLayoutCalculator()

	tests := []struct {
		typ   wit.Type
		name  string
		size  uint32
		align uint32
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.U16{}, "u16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.F32{}, "f32", 4, 4},
		{wit.Char{}, "char", 4, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(tc.typ)
			assert.Equal(t, tc.size, info.Size)
			assert.Equal(t, tc.align, info.Align)
		})
	}
}

func TestCalculateTagged(t *testing.T) {
	t.Run("option u32", func(t *testing.T) {
		info := Layout(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
		assert.Equal(t, Info{Size: 8, Align: 4, PayloadOffset: 4}, info)
	})

	t.Run("variant with empty case", func(t *testing.T) {
		info := Layout(&wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
			{Name: "none"},
			{Name: "some", Type: wit.U16{}},
		}}})
		assert.Equal(t, Info{Size: 4, Align: 2, PayloadOffset: 2}, info)
	})

	t.Run("result", func(t *testing.T) {
		info := Layout(&wit.TypeDef{Kind: &wit.Result{OK: wit.U8{}, Err: wit.U32{}}})
		assert.Equal(t, Info{Size: 8, Align: 4, PayloadOffset: 4}, info)
	})

	t.Run("record", func(t *testing.T) {
		info := Layout(&wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
			{Name: "a", Type: wit.U8{}},
			{Name: "b", Type: wit.U32{}},
			{Name: "c", Type: wit.U8{}},
		}}})
		assert.Equal(t, Info{Size: 12, Align: 4}, info)
	})
}

func TestDiscriminantSize(t *testing.T) {
	assert.Equal(t, uint32(1), DiscriminantSize(1))
	assert.Equal(t, uint32(1), DiscriminantSize(256))
	assert.Equal(t, uint32(2), DiscriminantSize(257))
	assert.Equal(t, uint32(2), DiscriminantSize(1<<16))
	assert.Equal(t, uint32(4), DiscriminantSize(1<<16+1))
}

func TestAlignTo(t *testing.T) {
	assert.Equal(t, uint32(0), AlignTo(0, 4))
	assert.Equal(t, uint32(4), AlignTo(1, 4))
	assert.Equal(t, uint32(8), AlignTo(8, 8))
	assert.Equal(t, uint32(3), AlignTo(3, 0))
}

// The Go declarations are what the C boundary actually copies, so they must
// agree byte for byte with the schema layout.
func TestGoLayoutMatchesSchema(t *testing.T) {
	s := NewSchema()
	c := NewLayoutCalculator()

	var in InMsg
	inInfo := c.Calculate(s.InMsg.Type)
	assert.Equal(t, uintptr(inInfo.Size), unsafe.Sizeof(in))
	assert.Equal(t, uintptr(inInfo.Align), unsafe.Alignof(in))

	var out OutMsg
	outInfo := c.Calculate(s.OutMsg.Type)
	assert.Equal(t, uintptr(outInfo.Size), unsafe.Sizeof(out))
	assert.Equal(t, uintptr(outInfo.Align), unsafe.Alignof(out))

	var opt Option[OutMsg]
	optInfo := c.Calculate(s.OptionOutMsg.Type)
	assert.Equal(t, uintptr(optInfo.Size), unsafe.Sizeof(opt))
	assert.Equal(t, uintptr(optInfo.Align), unsafe.Alignof(opt))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(opt.Tag))
	assert.Equal(t, uintptr(optInfo.PayloadOffset), unsafe.Offsetof(opt.Value))
}

func TestGoLayoutMatchesOptionOfWiderPayload(t *testing.T) {
	var o16 Option[uint16]
	info16 := Layout(&wit.TypeDef{Kind: &wit.Option{Type: wit.U16{}}})
	assert.Equal(t, uintptr(info16.Size), unsafe.Sizeof(o16))
	assert.Equal(t, uintptr(info16.PayloadOffset), unsafe.Offsetof(o16.Value))

	var o32 Option[uint32]
	info32 := Layout(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
	assert.Equal(t, uintptr(info32.Size), unsafe.Sizeof(o32))
	assert.Equal(t, uintptr(info32.PayloadOffset), unsafe.Offsetof(o32.Value))
}

func TestSchemaCaseOrderMatchesDiscriminants(t *testing.T) {
	s := NewSchema()

	inEnum, ok := s.InMsg.Type.Kind.(*wit.Enum)
	if assert.True(t, ok) {
		for i, cs := range inEnum.Cases {
			assert.Equal(t, InMsg(i).String(), cs.Name)
		}
	}

	outEnum, ok := s.OutMsg.Type.Kind.(*wit.Enum)
	if assert.True(t, ok) {
		assert.Len(t, outEnum.Cases, len(OutMsgs()))
		for i, cs := range outEnum.Cases {
			assert.Equal(t, OutMsg(i).String(), cs.Name)
		}
	}
}
