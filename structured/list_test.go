package structured

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKeepsOrderAndDuplicates(t *testing.T) {
	var l List
	l.Add("first")
	l.Addf("second %d", 2)
	l.Add("first")

	assert.Equal(t, List{"first", "second 2", "first"}, l)
	assert.False(t, l.Empty())
}

func TestListAppend(t *testing.T) {
	l := List{"a"}
	l.Append(List{"b", "c"})
	assert.Equal(t, List{"a", "b", "c"}, l)
}

func TestListErr(t *testing.T) {
	var l List
	require.NoError(t, l.Err())

	l.Add("one")
	l.Add("two")
	require.EqualError(t, l.Err(), "one\ntwo")
}

func TestNewErrCopiesDictionaryEntry(t *testing.T) {
	dict := &Error{Impact: "impact", Action: "action"}
	cause := errors.New("boom")

	e := NewErr(dict, cause)
	require.ErrorIs(t, e, cause)
	assert.Nil(t, dict.Err)
	assert.Equal(t, "impact", e.Impact)

	withInfo := e.WithInfo("file %s", "a.txt")
	assert.Equal(t, "file a.txt", withInfo.MoreInfo)
	assert.Empty(t, e.MoreInfo)
	assert.Contains(t, withInfo.Error(), "moreInfo=file a.txt")
}
