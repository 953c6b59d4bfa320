package testutil

import "github.com/roach88/cbind/internal/ir"

// Sample type nodes shared by SampleLibrary. Each call to SampleLibrary
// builds fresh nodes, so tests may not mutate these.
type SampleTypes struct {
	Context    *ir.OpaqueType
	Vec3       *ir.CompositeType
	Color      *ir.EnumType
	Particle   *ir.CompositeType
	Callback   *ir.FnPointerType
	FFIError   ir.SuccessEnum
	SliceVec3  ir.Slice
	OptionVec3 ir.Option
	Marker     *ir.CompositeType
}

// NewSampleTypes builds the type graph used by SampleLibrary.
func NewSampleTypes() SampleTypes {
	var s SampleTypes

	s.Context = &ir.OpaqueType{Name: "Context", Doc: ir.Documentation{"Simulation state owned by the library."}}
	s.Vec3 = &ir.CompositeType{
		Name: "Vec3",
		Doc:  ir.Documentation{"A point in space."},
		Fields: []ir.Field{
			{Name: "x", Type: ir.F32},
			{Name: "y", Type: ir.F32},
			{Name: "z", Type: ir.F32},
		},
	}
	s.Color = &ir.EnumType{
		Name: "Color",
		Variants: []ir.Variant{
			{Name: "Red", Value: 0},
			{Name: "Green", Value: 5},
			{Name: "Lime", Value: 5},
		},
	}
	s.Particle = &ir.CompositeType{
		Name: "Particle",
		Fields: []ir.Field{
			{Name: "pos", Type: s.Vec3},
			{Name: "color", Type: s.Color},
			{Name: "ctx", Type: ir.ReadWritePointer{Target: s.Context}},
		},
	}
	s.Callback = &ir.FnPointerType{
		Name: "Callback",
		Signature: ir.Signature{
			Params: []ir.Parameter{
				{Type: ir.F32},
				{Type: ir.ReadWritePointer{Target: ir.U8}},
			},
			Rval: ir.I32,
		},
	}
	s.FFIError = ir.SuccessEnum{
		Enum: &ir.EnumType{
			Name: "FFIError",
			Variants: []ir.Variant{
				{Name: "Ok", Value: 0},
				{Name: "Null", Value: 100},
				{Name: "Panic", Value: 200},
			},
		},
		Success: "Ok",
	}
	s.SliceVec3 = ir.NewSliceOf("SliceVec3", s.Vec3)
	s.OptionVec3 = ir.NewOptionOf("OptionVec3", s.Vec3)
	s.Marker = &ir.CompositeType{Name: "Marker"}

	return s
}

// SampleLibrary returns a library exercising every type variant.
func SampleLibrary() *ir.Library {
	return SampleLibraryFrom(NewSampleTypes())
}

// SampleLibraryFrom builds the sample library over the given nodes.
func SampleLibraryFrom(s SampleTypes) *ir.Library {
	functions := []ir.Function{
		{
			Name: "particle_new",
			Doc:  ir.Documentation{"Creates a particle."},
			Signature: ir.Signature{
				Params: []ir.Parameter{
					{Name: "ctx", Type: ir.ReadWritePointer{Target: s.Context}},
					{Name: "pos", Type: s.Vec3},
				},
				Rval: s.Particle,
			},
		},
		{
			Name: "particle_step",
			Signature: ir.Signature{
				Params: []ir.Parameter{
					{Name: "p", Type: ir.ReadWritePointer{Target: s.Particle}},
					{Name: "dt", Type: ir.F32},
					{Name: "cb", Type: s.Callback},
				},
				Rval: s.FFIError,
			},
		},
		{
			Name: "particle_sum",
			Signature: ir.Signature{
				Params: []ir.Parameter{{Name: "points", Type: s.SliceVec3}},
				Rval:   s.OptionVec3,
			},
		},
		{
			Name: "context_name",
			Signature: ir.Signature{
				Params: []ir.Parameter{{Name: "ctx", Type: ir.ReadPointer{Target: s.Context}}},
				Rval:   ir.AsciiPointer{},
			},
		},
		{
			Name: "mark",
			Signature: ir.Signature{
				Params: []ir.Parameter{{Name: "m", Type: ir.ReadWritePointer{Target: s.Marker}}},
			},
		},
		{
			Name: "color_of",
			Signature: ir.Signature{
				Params: []ir.Parameter{{Name: "p", Type: ir.ReadPointer{Target: s.Particle}}},
				Rval:   s.Color,
			},
		},
	}

	constants := []ir.Constant{
		{Name: "MAX_PARTICLES", Type: ir.U32, Value: ir.UintValue(1024)},
		{Name: "GRAVITY", Type: ir.F32, Value: ir.FloatValue(9.81)},
	}

	return ir.NewLibrary(functions, constants)
}
