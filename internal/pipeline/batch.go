package pipeline

import "github.com/couchcryptid/weather-bigtable-etl/internal/domain"

// batch accumulates row mutations and tracks their total cell mutation count.
type batch struct {
	rows      []domain.RowMutation
	mutations int
	limit     int
}

func (b *batch) add(m domain.RowMutation) {
	b.rows = append(b.rows, m)
	b.mutations += m.MutationCount()
}

// full reports whether the pending mutation count has reached the limit.
func (b *batch) full() bool {
	return b.limit > 0 && b.mutations >= b.limit
}

func (b *batch) empty() bool {
	return len(b.rows) == 0
}

// reset starts a new batch. The backing array is not reused because the
// writer may still hold the previous slice.
func (b *batch) reset() {
	b.rows = nil
	b.mutations = 0
}
