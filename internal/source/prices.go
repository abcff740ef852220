package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/tidwall/gjson"
)

var (
	errNotJSON      = errors.New("body is not valid json")
	errNotObject    = errors.New("expected a json object")
	errNotArray     = errors.New("expected a json array")
	errEmptyDoc     = errors.New("document is empty")
	errRecordShape  = errors.New("price record is not an object")
	errRateNotFloat = errors.New("rate is not a number")
)

// FetchPriceTable fetches the global price table and extracts its item names.
// An empty table is rejected so it can never replace a good one.
func (c *Client) FetchPriceTable(ctx context.Context) (model.PriceTable, error) {
	const op = "fetch price table"

	body, err := c.get(ctx, op, c.pricesURL)
	if err != nil {
		return model.PriceTable{}, err
	}

	root, err := parseObject(op, body)
	if err != nil {
		return model.PriceTable{}, err
	}

	var keys []string
	var shapeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() && value.Type != gjson.Null {
			shapeErr = fmt.Errorf("%q: %w", key.String(), errRecordShape)
			return false
		}
		keys = append(keys, key.String())
		return true
	})
	if shapeErr != nil {
		return model.PriceTable{}, cache.NewError(cache.KindSourceParse, op, "", shapeErr)
	}
	if len(keys) == 0 {
		return model.PriceTable{}, cache.NewError(cache.KindSourceParse, op, "", errEmptyDoc)
	}

	return model.PriceTable{Raw: body, Keys: keys}, nil
}

// FetchCurrencyRates fetches the currency-code to rate document.
func (c *Client) FetchCurrencyRates(ctx context.Context) ([]byte, error) {
	const op = "fetch currency rates"

	body, err := c.get(ctx, op, c.ratesURL)
	if err != nil {
		return nil, err
	}

	root, err := parseObject(op, body)
	if err != nil {
		return nil, err
	}

	count := 0
	var shapeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			shapeErr = fmt.Errorf("%q: %w", key.String(), errRateNotFloat)
			return false
		}
		count++
		return true
	})
	if shapeErr != nil {
		return nil, cache.NewError(cache.KindSourceParse, op, "", shapeErr)
	}
	if count == 0 {
		return nil, cache.NewError(cache.KindSourceParse, op, "", errEmptyDoc)
	}

	return body, nil
}

// parseObject validates body and requires a JSON object at its root.
func parseObject(op string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, cache.NewError(cache.KindSourceParse, op, "", errNotJSON)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, cache.NewError(cache.KindSourceParse, op, "", errNotObject)
	}
	return root, nil
}

// parseArray validates body and requires a JSON array at its root.
func parseArray(op string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, cache.NewError(cache.KindSourceParse, op, "", errNotJSON)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return gjson.Result{}, cache.NewError(cache.KindSourceParse, op, "", errNotArray)
	}
	return root, nil
}
