package domain

const (
	// DefaultPageSize is the single page of candidates fetched per term.
	DefaultPageSize = 30

	// MaxPageSize is the largest page every provider accepts.
	MaxPageSize = 80
)

// SearchParams holds one provider search request.
type SearchParams struct {
	Term     string
	Page     int // 1-indexed
	PageSize int
}

// NewSearchParams returns params for the first page of a term.
func NewSearchParams(term Term, pageSize int) SearchParams {
	p := SearchParams{
		Term:     string(term),
		Page:     1,
		PageSize: pageSize,
	}
	p.Validate()

	return p
}

// Validate ensures search params are within acceptable bounds. This is bound correction, not validation.
func (p *SearchParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}
