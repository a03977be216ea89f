package cloud

// Stats counts what one reconciliation did.
type Stats struct {
	Updated int
	Added   int
	Removed int
}

// Reconciler applies inbound batches to a Store.
type Reconciler struct {
	store *Store
}

// NewReconciler returns a reconciler that applies batches to store.
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{store: store}
}

// Apply makes the store mirror batch: index i of the batch becomes point i.
//
// Points that persist keep their identity and only move, new indices get new
// points, and surplus points are removed last-first. Positions snap.
func (r *Reconciler) Apply(batch []Point3D) Stats {
	var st Stats
	s := r.store

	for i, pt := range batch {
		pos := ToScene(pt.Vector)
		if i < s.Len() {
			s.SetPosition(s.points[i], pos)
			st.Updated++
			continue
		}
		s.push(pos)
		st.Added++
	}

	for s.Len() > len(batch) {
		s.pop()
		st.Removed++
	}
	return st
}
