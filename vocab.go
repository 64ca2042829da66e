package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Special token ids are fixed ahead of all corpus words so checkpoints
// stay readable across runs on the same training file.
const (
	PadID   = 0
	StartID = 1
	EndID   = 2
	UnkID   = 3
)

var specialTokens = []string{"<pad>", "<s>", "</s>", "<unk>"}

// Vocab maps words to ids and back. It is built once from the training
// corpus and shared read-only by every consumer for the life of the run.
type Vocab struct {
	toID   map[string]int
	toWord []string
}

func NewVocab() *Vocab {
	v := &Vocab{toID: make(map[string]int)}
	for _, tok := range specialTokens {
		v.add(tok)
	}
	return v
}

func (v *Vocab) add(word string) int {
	if id, ok := v.toID[word]; ok {
		return id
	}
	id := len(v.toWord)
	v.toID[word] = id
	v.toWord = append(v.toWord, word)
	return id
}

// BuildVocab reads the training corpus and assigns ids in order of first
// appearance. Only the training file ever grows the vocabulary; the test
// corpus maps unseen words to <unk>.
func BuildVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open vocab source %s", path)
	}
	defer f.Close()

	v := NewVocab()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, w := range strings.Fields(sc.Text()) {
			v.add(w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan vocab source %s", path)
	}
	return v, nil
}

// ID returns the id for word, or the <unk> id for unseen words.
func (v *Vocab) ID(word string) int {
	if id, ok := v.toID[word]; ok {
		return id
	}
	return UnkID
}

// Word returns the surface form for id.
func (v *Vocab) Word(id int) string {
	if id < 0 || id >= len(v.toWord) {
		return specialTokens[UnkID]
	}
	return v.toWord[id]
}

// Encode maps one whitespace-tokenized line to ids. Sequence markers are
// not added here; the corpus loader owns that.
func (v *Vocab) Encode(line string) []int {
	fields := strings.Fields(line)
	ids := make([]int, len(fields))
	for i, w := range fields {
		ids[i] = v.ID(w)
	}
	return ids
}

func (v *Vocab) Size() int { return len(v.toWord) }
