package vecf32

// Box is an axis-aligned 3D bounding box, float32-native, trimmed to what
// mesh ingestion needs: accumulate vertices, report extents.
type Box struct {
	Min, Max Vec
}

// EmptyBox returns a box with inverted extents, ready to Include points into.
func EmptyBox() Box {
	const inf = math32MaxFloat
	return Box{Min: Vec{inf, inf, inf}, Max: Vec{-inf, -inf, -inf}}
}

const math32MaxFloat = 3.4028235e+38

// Include enlarges a box to include a point.
func (b Box) Include(v Vec) Box {
	return Box{Min: MinElem(b.Min, v), Max: MaxElem(b.Max, v)}
}

// Size returns the size of the box.
func (b Box) Size() Vec { return Sub(b.Max, b.Min) }
