package ops

// CanonicalOrder is the fixed kind sequence used to flatten an OperationCollection
// (spec.md §4.3): destructive/loosening steps first, then relocations and renames of
// surviving objects, then constructive steps in dependency order.
var CanonicalOrder = []Kind{
	KindDropIndex,
	KindDropForeignKey,
	KindDropPrimaryKey,
	KindDropDefaultConstraint,
	KindDropColumn,
	KindDropTable,
	KindMoveTable,
	KindRenameTable,
	KindRenameColumn,
	KindRenameIndex,
	KindCreateTable,
	KindAddColumn,
	KindAlterColumn,
	KindAddDefaultConstraint,
	KindAddPrimaryKey,
	KindAddForeignKey,
	KindCreateIndex,
}

// Collection is a mapping from operation-kind tag to an ordered list of operations of
// that kind, per spec.md §3. Insertion order within a kind is preserved; canonical
// flattening is a read-only function over CanonicalOrder, not a mutating method.
type Collection struct {
	buckets map[Kind][]Operation
}

// New returns an empty Collection.
func New() *Collection {
	return &Collection{buckets: make(map[Kind][]Operation)}
}

// Add appends op to its kind's bucket, preserving insertion order.
func (c *Collection) Add(op Operation) {
	c.buckets[op.Kind()] = append(c.buckets[op.Kind()], op)
}

// AddAll appends each op in ops to its kind's bucket, in order.
func (c *Collection) AddAll(list []Operation) {
	for _, op := range list {
		c.Add(op)
	}
}

// Replace swaps out the entire bucket for kind.
func (c *Collection) Replace(kind Kind, list []Operation) {
	c.buckets[kind] = list
}

// ByKind returns the operations of the given kind, in insertion order. The returned
// slice must not be mutated by callers.
func (c *Collection) ByKind(kind Kind) []Operation {
	return c.buckets[kind]
}

// Len returns the total number of operations across all kinds.
func (c *Collection) Len() int {
	n := 0
	for _, b := range c.buckets {
		n += len(b)
	}
	return n
}

// Flatten returns every operation in canonical kind order (spec.md §4.3); within a
// kind, emission order is preserved.
func (c *Collection) Flatten() []Operation {
	out := make([]Operation, 0, c.Len())
	for _, k := range CanonicalOrder {
		out = append(out, c.buckets[k]...)
	}
	return out
}
