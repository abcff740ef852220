package source

import (
	"context"
	"fmt"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/tidwall/gjson"
)

// FetchCatalog fetches the item catalog of one category. Every element must
// be an object; an empty catalog is rejected.
func (c *Client) FetchCatalog(ctx context.Context, category model.Category) ([]byte, error) {
	op := fmt.Sprintf("fetch %s catalog", category)

	body, err := c.get(ctx, op, c.catalogURL+"/"+string(category)+".json")
	if err != nil {
		return nil, err
	}

	root, err := parseArray(op, body)
	if err != nil {
		return nil, err
	}

	count := 0
	valid := true
	root.ForEach(func(_, value gjson.Result) bool {
		if !value.IsObject() {
			valid = false
			return false
		}
		count++
		return true
	})
	if !valid {
		return nil, cache.NewError(cache.KindSourceParse, op, "", fmt.Errorf("element %d: %w", count, errNotObject))
	}
	if count == 0 {
		return nil, cache.NewError(cache.KindSourceParse, op, "", errEmptyDoc)
	}

	return body, nil
}
