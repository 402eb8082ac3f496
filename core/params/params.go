package params

// QueryParams carries common list-endpoint paging parameters.
type QueryParams struct {
	PageNumber int `query:"page" json:"page"`
	PageSize   int `query:"page_size" json:"page_size"`
}

// Normalized returns params with defaults applied.
func (p QueryParams) Normalized() QueryParams {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}
