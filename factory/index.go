package factory

import (
	"bytes"
	"math"
	"time"

	"github.com/google/btree"
	"github.com/iov-one/quorum"
)

// CreationRecord describes one instance produced by the factory.
type CreationRecord struct {
	Creator   quorum.Identity
	Instance  quorum.Identity
	Salt      []byte
	CreatedAt time.Time
	// Sequence is a global, strictly increasing creation counter. It
	// doubles as the pagination cursor.
	Sequence uint64
}

type indexItem struct {
	rec CreationRecord
}

// Less orders items by creator first and sequence second, so that all
// records of one creator are adjacent and time ordered.
func (it indexItem) Less(than btree.Item) bool {
	other := than.(indexItem)
	switch bytes.Compare(it.rec.Creator[:], other.rec.Creator[:]) {
	case -1:
		return true
	case 1:
		return false
	}
	return it.rec.Sequence < other.rec.Sequence
}

// Index records which instances each creator deployed, with creation time
// and salt, and serves reverse chronological paginated reads.
type Index struct {
	tree *btree.BTree
	seq  uint64
}

func NewIndex() *Index {
	return &Index{tree: btree.New(32)}
}

func (ix *Index) record(creator, instance quorum.Identity, salt []byte, now time.Time) CreationRecord {
	ix.seq++
	rec := CreationRecord{
		Creator:   creator,
		Instance:  instance,
		Salt:      append([]byte(nil), salt...),
		CreatedAt: now,
		Sequence:  ix.seq,
	}
	ix.tree.ReplaceOrInsert(indexItem{rec: rec})
	return rec
}

// Count returns the number of records stored for the given creator.
func (ix *Index) Count(creator quorum.Identity) int {
	var n int
	ix.walk(creator, math.MaxUint64, func(CreationRecord) bool {
		n++
		return true
	})
	return n
}

// List returns up to limit records of the given creator, newest first,
// together with the cursor for the next page. A zero cursor starts at the
// newest record. A zero next cursor means the walk is exhausted; any other
// value is passed to the following List call to continue.
func (ix *Index) List(creator quorum.Identity, cursor uint64, limit int) ([]CreationRecord, uint64) {
	if limit <= 0 {
		return nil, 0
	}
	if cursor == 0 {
		cursor = math.MaxUint64
	}

	var (
		page []CreationRecord
		next uint64
	)
	ix.walk(creator, cursor, func(rec CreationRecord) bool {
		if len(page) == limit {
			// One more record exists past the page, so its
			// sequence becomes the continuation cursor.
			next = rec.Sequence
			return false
		}
		page = append(page, rec)
		return true
	})
	return page, next
}

// walk visits the creator records in descending sequence order, starting
// at the given sequence (inclusive), until fn returns false.
func (ix *Index) walk(creator quorum.Identity, from uint64, fn func(CreationRecord) bool) {
	pivot := indexItem{rec: CreationRecord{Creator: creator, Sequence: from}}
	ix.tree.DescendLessOrEqual(pivot, func(item btree.Item) bool {
		rec := item.(indexItem).rec
		if rec.Creator != creator {
			return false
		}
		return fn(rec)
	})
}
