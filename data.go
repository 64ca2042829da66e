package main

import (
	"bufio"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Corpus holds one id sequence per input line, each wrapped in <s> ... </s>,
// so a stored sequence's length counts both markers.
type Corpus struct {
	Seqs [][]int
}

// LoadCorpus reads one sentence per line and encodes it with v. Blank lines
// still yield the two-marker sequence the accounting expects.
func LoadCorpus(path string, v *Vocab) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open corpus %s", path)
	}
	defer f.Close()

	c := &Corpus{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		words := v.Encode(sc.Text())
		seq := make([]int, 0, len(words)+2)
		seq = append(seq, StartID)
		seq = append(seq, words...)
		seq = append(seq, EndID)
		c.Seqs = append(c.Seqs, seq)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan corpus %s", path)
	}
	if len(c.Seqs) == 0 {
		return nil, errors.Errorf("corpus %s is empty", path)
	}
	return c, nil
}

func (c *Corpus) Len() int { return len(c.Seqs) }

// Words returns the number of predicted positions in the corpus: every
// token after the start marker, end marker included.
func (c *Corpus) Words() int {
	n := 0
	for _, s := range c.Seqs {
		n += len(s) - 1
	}
	return n
}

// NumBatches reports how many batches one pass at the given size yields.
func (c *Corpus) NumBatches(size int) int {
	return (len(c.Seqs) + size - 1) / size
}

// Batch is one rectangular training unit: token ids padded to the longest
// sequence in the batch, plus the true (marker-inclusive) lengths.
type Batch struct {
	IDs  [][]int // [B][T], padded with <pad>
	Lens []int   // true length per row, markers included
	T    int     // padded time dimension
}

// Size returns the number of sequences in the batch.
func (b *Batch) Size() int { return len(b.IDs) }

// Words returns the number of predicted positions in the batch, which is
// sum(len-1) over its rows. The start marker is never predicted.
func (b *Batch) Words() int {
	n := 0
	for _, l := range b.Lens {
		n += l - 1
	}
	return n
}

// StepOneHot encodes position t of every row as a [B, vocab] one-hot
// matrix. Multiplying by an embedding matrix keeps the embedding trainable.
func (b *Batch) StepOneHot(t, vocab int) *tensor.Dense {
	B := b.Size()
	data := make([]float64, B*vocab)
	for i := 0; i < B; i++ {
		data[i*vocab+b.IDs[i][t]] = 1.0
	}
	return tensor.New(tensor.WithShape(B, vocab), tensor.WithBacking(data))
}

// TargetOneHot encodes the teacher-forcing targets: row t*B+i selects token
// t+1 of sequence i while that position is real, and stays all-zero past
// the sequence's end so padded positions contribute nothing to the loss.
func (b *Batch) TargetOneHot(vocab int) *tensor.Dense {
	B, steps := b.Size(), b.T-1
	data := make([]float64, steps*B*vocab)
	for t := 0; t < steps; t++ {
		for i := 0; i < B; i++ {
			if t+1 < b.Lens[i] {
				data[(t*B+i)*vocab+b.IDs[i][t+1]] = 1.0
			}
		}
	}
	return tensor.New(tensor.WithShape(steps*B, vocab), tensor.WithBacking(data))
}

// BatchIter walks a shuffled corpus in fixed-size batches. It is lazy and
// not restartable; take a fresh iterator each pass.
type BatchIter struct {
	corpus *Corpus
	order  []int
	size   int
	pos    int
}

// Batches shuffles the corpus with rng and returns an iterator producing
// batches of up to size sequences. The final batch may be smaller; no
// sequence is ever dropped.
func (c *Corpus) Batches(size int, rng *rand.Rand) *BatchIter {
	return &BatchIter{corpus: c, order: rng.Perm(len(c.Seqs)), size: size}
}

// Next returns the next batch, or nil once the pass is exhausted.
func (it *BatchIter) Next() *Batch {
	if it.pos >= len(it.order) {
		return nil
	}
	end := it.pos + it.size
	if end > len(it.order) {
		end = len(it.order)
	}
	rows := it.order[it.pos:end]
	it.pos = end

	b := &Batch{
		IDs:  make([][]int, len(rows)),
		Lens: make([]int, len(rows)),
	}
	for i, r := range rows {
		b.Lens[i] = len(it.corpus.Seqs[r])
		if b.Lens[i] > b.T {
			b.T = b.Lens[i]
		}
	}
	for i, r := range rows {
		seq := it.corpus.Seqs[r]
		row := make([]int, b.T)
		copy(row, seq)
		for j := len(seq); j < b.T; j++ {
			row[j] = PadID
		}
		b.IDs[i] = row
	}
	return b
}
