package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestVocabSpecialTokens(t *testing.T) {
	v := NewVocab()
	assert.Equal(t, PadID, v.ID("<pad>"))
	assert.Equal(t, StartID, v.ID("<s>"))
	assert.Equal(t, EndID, v.ID("</s>"))
	assert.Equal(t, UnkID, v.ID("<unk>"))
	assert.Equal(t, 4, v.Size())
}

func TestBuildVocabFirstAppearanceOrder(t *testing.T) {
	path := writeCorpusFile(t, "b a", "a c")
	v, err := BuildVocab(path)
	require.NoError(t, err)

	assert.Equal(t, 4, v.ID("b"))
	assert.Equal(t, 5, v.ID("a"))
	assert.Equal(t, 6, v.ID("c"))
	assert.Equal(t, 7, v.Size())
	assert.Equal(t, "b", v.Word(4))
}

func TestVocabUnknownWords(t *testing.T) {
	path := writeCorpusFile(t, "a b")
	v, err := BuildVocab(path)
	require.NoError(t, err)

	assert.Equal(t, UnkID, v.ID("zzz"))
	assert.Equal(t, []int{v.ID("a"), UnkID}, v.Encode("a zzz"))
}

func TestEncodeAddsNoMarkers(t *testing.T) {
	path := writeCorpusFile(t, "a")
	v, err := BuildVocab(path)
	require.NoError(t, err)

	ids := v.Encode("a")
	require.Len(t, ids, 1)
	assert.NotEqual(t, StartID, ids[0])
	assert.Empty(t, v.Encode(""))
}
