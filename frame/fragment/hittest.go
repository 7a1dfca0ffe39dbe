package fragment

// HitTest returns the deepest fragment containing the point (x, y), in CSS
// pixels. Fragments painted later are on top, so siblings are searched
// from last to first. Children are searched even if the point lies outside
// of their parent, as positioned content may overflow its ancestors.
// Fragments which are hidden or not rendered are never hit.
func (snap *Snapshot) HitTest(x, y float64) (*Fragment, bool) {
	if snap == nil || snap.Root == nil {
		return nil, false
	}
	f := hit(snap.Root, x, y)
	return f, f != nil
}

// HitPath is like HitTest, but returns the path from the root to the hit
// fragment.
func (snap *Snapshot) HitPath(x, y float64) []*Fragment {
	if snap == nil || snap.Root == nil {
		return nil
	}
	var path []*Fragment
	var search func(f *Fragment) bool
	search = func(f *Fragment) bool {
		if f.NotRendered {
			return false
		}
		path = append(path, f)
		for i := len(f.Children) - 1; i >= 0; i-- {
			if search(f.Children[i]) {
				return true
			}
		}
		if !f.Paint.Hidden && f.Bounds.Contains(x, y) {
			return true
		}
		path = path[:len(path)-1]
		return false
	}
	search(snap.Root)
	return path
}

func hit(f *Fragment, x, y float64) *Fragment {
	if f.NotRendered {
		return nil
	}
	for i := len(f.Children) - 1; i >= 0; i-- {
		if h := hit(f.Children[i], x, y); h != nil {
			return h
		}
	}
	if !f.Paint.Hidden && f.Bounds.Contains(x, y) {
		return f
	}
	return nil
}
