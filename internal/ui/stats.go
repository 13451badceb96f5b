package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/brogergvhs/kirarank/internal/util"
)

// Stats counts scrape work across concurrent tasks.
type Stats struct {
	Issues atomic.Int64
	Rows   atomic.Int64
	Failed atomic.Int64
	Bytes  atomic.Int64
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d issues, %d rows, %d failed, %s fetched",
		s.Issues.Load(), s.Rows.Load(), s.Failed.Load(), util.Human(s.Bytes.Load()))
}
