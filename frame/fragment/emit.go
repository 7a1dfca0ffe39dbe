package fragment

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	tp "github.com/xlab/treeprint"
)

// Emit writes a snapshot in its serialized form for painting. The output is
// JSON, deterministic for equal snapshots.
func Emit(w io.Writer, snap *Snapshot) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tracer().Errorf("cannot emit snapshot of pass %d: %v", snap.Pass, err)
		return err
	}
	return nil
}

// Marshal returns the serialized form of a snapshot, without indentation.
func Marshal(snap *Snapshot) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(snap)
}

// Unmarshal reads a serialized snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// UnmarshalText is the counterpart to Kind.MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	*k = Block
	return nil
}

// String returns a printable representation of the fragment tree of a
// snapshot, one fragment per line.
func (snap *Snapshot) String() string {
	if snap == nil || snap.Root == nil {
		return "<empty snapshot>\n"
	}
	p := tp.New()
	p.SetValue(snap.Root.String())
	for _, c := range snap.Root.Children {
		dumpFragment(p, c)
	}
	return p.String()
}

func dumpFragment(p tp.Tree, f *Fragment) {
	if len(f.Children) == 0 {
		p.AddNode(f.String())
		return
	}
	branch := p.AddBranch(f.String())
	for _, c := range f.Children {
		dumpFragment(branch, c)
	}
}
