package vm

import "github.com/cafebabevm/mjvm/classfile"

// Object is the heap-allocated instance header plus packed field area. The
// Class holds no back pointer to its instances, so there is no cycle to
// break: classes live forever in the registry, instances hold a
// non-owning reference to theirs.
//
// Fields are addressed by the byte offset the loader computed when it
// rewrote a FieldRef into a SubstitutionField; since every size class in
// this subset is at least a 4-byte word, offset/4 is always an exact slot
// index.
type Object struct {
	Class  *classfile.Class
	fields []slot
}

const fieldSlotBytes = 4

// NewObject allocates a zeroed instance of c. The field area's size comes
// straight from the class's layout summary; there is no constructor call
// and no destructor — objects are never freed.
func NewObject(c *classfile.Class) *Object {
	n := (c.Layout.InstanceSize() + fieldSlotBytes - 1) / fieldSlotBytes
	return &Object{Class: c, fields: make([]slot, n)}
}

func (o *Object) getField(offset int) slot {
	return o.fields[offset/fieldSlotBytes]
}

func (o *Object) putField(offset int, v slot) {
	o.fields[offset/fieldSlotBytes] = v
}
