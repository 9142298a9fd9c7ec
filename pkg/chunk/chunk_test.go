// pkg/chunk/chunk_test.go

package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	seq := Sequence{{ID: 3, Data: []byte("ab")}, {ID: 1, Data: []byte("cde")}}
	assert.Equal(t, []Identity{3, 1}, seq.Identities())
	assert.Equal(t, 5, seq.Size())

	b := seq.Bytes()
	assert.Equal(t, "abcde", string(b))
	b[0] = 'X'
	assert.Equal(t, "ab", string(seq[0].Data))

	var empty Sequence
	assert.Empty(t, empty.Identities())
	assert.Zero(t, empty.Size())
	assert.NotNil(t, empty.Bytes())
}

func TestDirection(t *testing.T) {
	for _, d := range []Direction{Request, Response} {
		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
	assert.Equal(t, "direction(7)", Direction(7).String())
	assert.Equal(t, "buffered", Buffered.String())
	assert.Equal(t, "view(9)", View(9).String())
}
