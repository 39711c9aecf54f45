package dto

import (
	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
)

// PhotoResponse is a candidate photo.
type PhotoResponse struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	PreviewURL string `json:"preview_url"`
	URL        string `json:"url"`
}

// PositionResponse is the reviewer's current position.
type PositionResponse struct {
	Finished        bool           `json:"finished"`
	Exhausted       bool           `json:"exhausted"`
	Term            string         `json:"term,omitempty"`
	TermIndex       int            `json:"term_index"`
	TermCount       int            `json:"term_count"`
	PhotoIndex      int            `json:"photo_index"`
	PhotoCount      int            `json:"photo_count"`
	Photo           *PhotoResponse `json:"photo,omitempty"`
	AcceptedForTerm int            `json:"accepted_for_term"`
	AcceptedTotal   int            `json:"accepted_total"`
	Provider        string         `json:"provider"`
}

// FromPosition converts domain.Position to PositionResponse.
func FromPosition(p domain.Position) PositionResponse {
	resp := PositionResponse{
		Finished:        p.Finished,
		Exhausted:       p.Exhausted(),
		Term:            string(p.Term),
		TermIndex:       p.TermIndex,
		TermCount:       p.TermCount,
		PhotoIndex:      p.PhotoIndex,
		PhotoCount:      p.PhotoCount,
		AcceptedForTerm: p.AcceptedForTerm,
		AcceptedTotal:   p.AcceptedTotal,
		Provider:        p.Provider.String(),
	}
	if p.Photo != nil {
		resp.Photo = &PhotoResponse{
			ID:         p.Photo.ID,
			Provider:   p.Photo.Provider.String(),
			PreviewURL: p.Photo.PreviewURL,
			URL:        p.URL,
		}
	}

	return resp
}

// RecordResponse is one catalog record.
type RecordResponse struct {
	ID           string `json:"id"`
	Provider     string `json:"provider"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FromRecord converts domain.CatalogRecord to RecordResponse.
func FromRecord(r domain.CatalogRecord) RecordResponse {
	return RecordResponse{
		ID:           r.ID,
		Provider:     r.Provider.String(),
		URL:          domain.RecordURL(r.Payload),
		ThumbnailURL: domain.ThumbnailURL(r),
	}
}

// TermRecordsResponse groups records under a term key.
type TermRecordsResponse struct {
	Term    string           `json:"term"`
	Count   int              `json:"count"`
	Records []RecordResponse `json:"records"`
}

// CatalogResponse lists catalog records by term.
type CatalogResponse struct {
	Terms []TermRecordsResponse `json:"terms"`
	Total int                   `json:"total"`
}

// FromTermRecords groups flat term records, keeping their order.
func FromTermRecords(records []service.TermRecord) CatalogResponse {
	resp := CatalogResponse{Terms: []TermRecordsResponse{}}
	index := map[string]int{}

	for _, tr := range records {
		i, ok := index[tr.TermKey]
		if !ok {
			i = len(resp.Terms)
			index[tr.TermKey] = i
			resp.Terms = append(resp.Terms, TermRecordsResponse{Term: tr.TermKey, Records: []RecordResponse{}})
		}
		resp.Terms[i].Records = append(resp.Terms[i].Records, FromRecord(tr.Record))
		resp.Terms[i].Count++
		resp.Total++
	}

	return resp
}

// ProvidersResponse lists registered providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Active    string   `json:"active"`
}

// DownloadResultResponse represents the result of a bulk download.
type DownloadResultResponse struct {
	Provider string `json:"provider"`
	Saved    int    `json:"saved"`
	Existing int    `json:"existing"`
	TooLarge int    `json:"too_large"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// FromDownloadResult converts service.DownloadResult to DownloadResultResponse.
func FromDownloadResult(r service.DownloadResult) DownloadResultResponse {
	resp := DownloadResultResponse{
		Provider: r.Provider.String(),
		Saved:    r.Saved,
		Existing: r.Existing,
		TooLarge: r.TooLarge,
		Failed:   r.Failed,
		Duration: r.Duration.String(),
	}
	if r.Error != nil {
		resp.Error = r.Error.Error()
	}

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
