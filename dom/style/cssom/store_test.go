package cssom

import (
	"sync"
	"testing"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

// a minimal style sheet implementation for the tests
type fakeSheet struct{ name string }

func (f *fakeSheet) AppendRules(StyleSheet) {}
func (f *fakeSheet) Empty() bool            { return true }
func (f *fakeSheet) Rules() []Rule          { return nil }

func TestStoreRevisions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.style")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	ua := &fakeSheet{"ua"}
	store := NewStore(ua)
	r1 := store.Current()
	assert.Len(t, r1.Sheets, 1)
	assert.Equal(t, UserAgent, r1.Sheets[0].Origin)
	//
	a := store.Add(Author, &fakeSheet{"a"})
	b := store.Add(User, &fakeSheet{"b"})
	r3 := store.Current()
	assert.Equal(t, r1.Number+2, r3.Number)
	assert.Len(t, r3.Sheets, 3)
	assert.Len(t, r1.Sheets, 1) // old revisions are never modified
	//
	assert.True(t, store.Remove(a))
	assert.False(t, store.Remove(a))
	assert.Equal(t, b, store.Current().Sheets[1].ID)
	//
	rev := store.Replace(Sheet{Origin: Author, StyleSheet: &fakeSheet{"c"}})
	assert.Len(t, rev.Sheets, 2)
	assert.Equal(t, ua, rev.Sheets[0].StyleSheet)
	assert.NotEqual(t, b, rev.Sheets[1].ID)
	assert.Equal(t, "author", rev.Sheets[1].Origin.String())
}

func TestStoreConcurrentWriters(t *testing.T) {
	store := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Add(Author, &fakeSheet{})
			_ = store.Current().Sheets
		}()
	}
	wg.Wait()
	assert.Len(t, store.Current().Sheets, 20)
	assert.Equal(t, uint64(21), store.Current().Number)
}

func TestDeclarationString(t *testing.T) {
	d := Declaration{Key: "color", Value: style.Property("red"), Important: true}
	assert.Equal(t, "color: red !important", d.String())
}
