package terms

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestFindSearchesTheWholeTree(t *testing.T) {
	is := is.New(t)

	root := NewStatusTerms()

	found, ok := root.Find(StatusInactive)
	is.True(ok)
	is.Equal(found.Label().Value(), "Inactive")

	_, ok = root.Find("CGR:Status-Deleted")
	is.True(!ok)

	found, ok = root.Find(StatusRoot)
	is.True(ok)
	is.True(found == root)
}

func TestTermRoundTrip(t *testing.T) {
	is := is.New(t)

	first, err := json.Marshal(NewStatusTerms())
	is.NoErr(err)

	decoded, err := NewFromJSON(first)
	is.NoErr(err)
	is.Equal(len(decoded.Children()), 4)

	second, err := json.Marshal(decoded)
	is.NoErr(err)
	is.Equal(string(first), string(second))
}

func TestTermWithoutCode(t *testing.T) {
	is := is.New(t)

	_, err := NewFromJSON([]byte(`{"label":"nothing"}`))
	is.True(err != nil)
}
