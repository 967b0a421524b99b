package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/foregonehq/foregone/internal/models"
)

// searchResponse is the Yahoo search API envelope.
type searchResponse struct {
	Quotes []struct {
		Symbol    string  `json:"symbol"`
		ShortName string  `json:"shortname"`
		LongName  string  `json:"longname"`
		Exchange  string  `json:"exchange"`
		QuoteType string  `json:"quoteType"`
		Score     float64 `json:"score"`
	} `json:"quotes"`
}

// Search looks up ticker candidates for a free-text query. Scores are the
// provider's relevance scores; the market service re-ranks them locally.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	reqURL := fmt.Sprintf("%s?%s", c.searchURL, params.Encode())

	var resp searchResponse
	if err := c.get(ctx, reqURL, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.SearchCandidate, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		candidates = append(candidates, models.SearchCandidate{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
			Score:    q.Score,
		})
	}

	return candidates, nil
}
