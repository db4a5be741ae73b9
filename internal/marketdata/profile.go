package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type yahooRawValue struct {
	Raw float64 `json:"raw"`
}

type yahooSummaryResp struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				FullTimeEmployees   int64  `json:"fullTimeEmployees"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			Price struct {
				LongName           string        `json:"longName"`
				ShortName          string        `json:"shortName"`
				MarketCap          yahooRawValue `json:"marketCap"`
				RegularMarketPrice yahooRawValue `json:"regularMarketPrice"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE yahooRawValue `json:"trailingPE"`
				MarketCap  yahooRawValue `json:"marketCap"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetProfile 获取公司概况。quoteSummary接口经常被风控拦截，
// 调用方拿不到时应以"N/A"兜底而不是报错
func (c *Client) GetProfile(ctx context.Context, symbol string) (*Profile, error) {
	key := cacheKey("profile", symbol)
	cached := &Profile{}
	if err := getCacheProvider().Get(key, cached); err == nil && cached.Symbol != "" {
		return cached, nil
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile%%2Cprice%%2CsummaryDetail",
		c.baseURL, url.PathEscape(symbol))
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quoteSummary status %d", resp.StatusCode)
	}

	var parsed yahooSummaryResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary: %s", parsed.QuoteSummary.Error.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}

	result := parsed.QuoteSummary.Result[0]
	name := result.Price.LongName
	if name == "" {
		name = result.Price.ShortName
	}
	marketCap := int64(result.Price.MarketCap.Raw)
	if marketCap == 0 {
		marketCap = int64(result.SummaryDetail.MarketCap.Raw)
	}

	profile := &Profile{
		Symbol:    symbol,
		Name:      name,
		Sector:    result.AssetProfile.Sector,
		Industry:  result.AssetProfile.Industry,
		Employees: result.AssetProfile.FullTimeEmployees,
		Summary:   result.AssetProfile.LongBusinessSummary,
		MarketCap: marketCap,
		PERatio:   result.SummaryDetail.TrailingPE.Raw,
	}

	_ = getCacheProvider().Set(key, profile, c.profileTTL)
	return profile, nil
}
