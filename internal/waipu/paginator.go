package waipu

import (
	"context"
	"fmt"
	"runtime/trace"
)

const previewLen = 30

// PageObserver receives the pagination progress.  Fetched is called with the
// raw number of messages on the page, Filtered with the total number of
// eligible messages found so far.
type PageObserver interface {
	Fetched(offset, n int)
	Filtered(found int)
}

// Paginator collects IDs of eligible messages from all pages of the search
// results.
type Paginator struct {
	s      Searcher
	pageSz int
	fw     floodWaiter
	log    Logger
}

// NewPaginator returns the paginator requesting pageSize messages at a time.
// pageSize must be in [1, MaxPageSize].
func NewPaginator(s Searcher, pageSize int, opts ...Option) (*Paginator, error) {
	if pageSize < 1 || MaxPageSize < pageSize {
		return nil, fmt.Errorf("%w: page size must be in [1, %d], got %d", ErrInvalidArgument, MaxPageSize, pageSize)
	}
	st := applyOpts(opts)
	return &Paginator{
		s:      s,
		pageSz: pageSize,
		fw:     floodWaiter{sleep: st.sleep, log: st.log},
		log:    st.log,
	}, nil
}

// PageSize returns the page size.
func (p *Paginator) PageSize() int {
	return p.pageSz
}

// FetchEligibleIDs pages through all messages of the current user in chat and
// returns IDs of the ones that are eligible according to policy.  obs may be
// nil.
//
// Search is exhausted when the server returns less than a full page.  The
// offset always advances by the page size, filtering may drop the whole page
// while there are more pages to go.
func (p *Paginator) FetchEligibleIDs(ctx context.Context, chat Chat, policy Eligibility, obs PageObserver) ([]int, error) {
	ctx, task := trace.NewTask(ctx, "FetchEligibleIDs")
	defer task.End()

	var ids []int
	for offset := 0; ; offset += p.pageSz {
		var page []Message
		err := p.fw.do(ctx, fmt.Sprintf("search %q", chat.Title), func() error {
			var err error
			page, err = p.s.SearchMyMessages(ctx, chat, offset, p.pageSz)
			return err
		})
		if err != nil {
			trace.Logf(ctx, "api", "search error at offset %d: %s", offset, err)
			return ids, fmt.Errorf("search at offset %d: %w", offset, err)
		}
		p.log.Debugf("searching messages in %q, offset: %d, got: %d", chat.Title, offset, len(page))
		if obs != nil {
			obs.Fetched(offset, len(page))
		}

		eligible := Filter(page, policy)
		for _, m := range eligible {
			p.log.Debugf("    - #%d: %s", m.ID, m.Preview(previewLen))
		}
		ids = append(ids, messageIDs(eligible)...)
		p.log.Printf("found %d of your messages in %q", len(ids), chat.Title)
		if obs != nil {
			obs.Filtered(len(ids))
		}

		if len(page) < p.pageSz {
			break
		}
	}
	trace.Logf(ctx, "logic", "found %d", len(ids))
	return ids, nil
}
