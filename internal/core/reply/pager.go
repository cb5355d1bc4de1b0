package reply

import (
	"strconv"

	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// Page is a pager entry; Label is the page number, "previous" or "next"
type Page struct {
	Label  string
	Number int
	Target
}

// Pager offers the pages around the current one
type Pager struct {
	w        *wirePager
	q        query.Query
	cfg      Config
	current  int
	lastPage int
}

func newPager(w *wirePager, meta *Meta, q query.Query, cfg Config) (*Pager, error) {
	if w.CurrentPage == nil {
		return nil, perr.ReplyInvalid(nil, nil, "pager without current page")
	}
	perPage := q.FeedReplies(meta.Feed())
	if perPage <= 0 {
		perPage = meta.PageItems()
	}
	return &Pager{
		w:        w,
		q:        q,
		cfg:      cfg,
		current:  *w.CurrentPage,
		lastPage: LastPage(meta.TotalReplies(), perPage),
	}, nil
}

// LastPage is the number of pages needed for total items, perPage at a time
func LastPage(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	n := total / perPage
	if total%perPage != 0 {
		n++
	}
	return n
}

func (p *Pager) page(label string, n int) (Page, error) {
	q, err := p.q.SetPage(n)
	if err != nil {
		return Page{}, perr.ReplyInvalid(err, nil, "pager page "+strconv.Itoa(n))
	}
	return Page{Label: label, Number: n, Target: p.cfg.target(q)}, nil
}

// Current is the number of the page being displayed
func (p *Pager) Current() int { return p.current }

func (p *Pager) HasPrevious() bool { return p.w.PreviousPage != nil }
func (p *Pager) HasNext() bool     { return p.w.NextPage != nil }

// Previous fails with an out of range error on the first page
func (p *Pager) Previous() (Page, error) {
	if p.w.PreviousPage == nil {
		return Page{}, perr.OutOfRangef("no previous page available")
	}
	return p.page("previous", *p.w.PreviousPage)
}

// Next fails with an out of range error on the last page
func (p *Pager) Next() (Page, error) {
	if p.w.NextPage == nil {
		return Page{}, perr.OutOfRangef("no next page available")
	}
	return p.page("next", *p.w.NextPage)
}

// Pages lists the numbered pages in reply order
func (p *Pager) Pages() ([]Page, error) {
	out := make([]Page, 0, len(p.w.Page))
	for _, n := range p.w.Page {
		pg, err := p.page(strconv.Itoa(n), n)
		if err != nil {
			return nil, err
		}
		out = append(out, pg)
	}
	return out, nil
}

// LastPage targets the last page computed from the total and the page size
func (p *Pager) LastPage() (Page, error) {
	if p.lastPage == 0 {
		return Page{}, perr.OutOfRangef("no page available")
	}
	return p.page(strconv.Itoa(p.lastPage), p.lastPage)
}

// LastPageNumber is 0 when the replyset is empty
func (p *Pager) LastPageNumber() int { return p.lastPage }

// AllPages is previous, the numbered pages and next, skipping the absent ones
func (p *Pager) AllPages() ([]Page, error) {
	pages, err := p.Pages()
	if err != nil {
		return nil, err
	}
	out := make([]Page, 0, len(pages)+2)
	if p.HasPrevious() {
		prev, err := p.Previous()
		if err != nil {
			return nil, err
		}
		out = append(out, prev)
	}
	out = append(out, pages...)
	if p.HasNext() {
		next, err := p.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}
