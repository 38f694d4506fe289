package services

import (
	"encoding/json"
	"strconv"
)

// Cache key layout for catalog entries.
const (
	ProductsListKeyPrefix     = "ProductsList:"
	FilteredProductsKeyPrefix = "FilteredProducts:"
	ProductKeyPrefix          = "Product:"
	ProductsGenerationKey     = "ProductsGeneration"
)

// ProductsListKey derives the key of one listing page within a collection generation.
func ProductsListKey(page, perPage int, generation string) string {
	return withGeneration(ProductsListKeyPrefix+strconv.Itoa(page)+":"+strconv.Itoa(perPage), generation)
}

// FilteredProductsKey derives the key of a filter result within a collection generation.
// Logically identical filters produce the same key.
func FilteredProductsKey(filter ProductFilter, generation string) (string, error) {
	encoded, err := json.Marshal(filter.Normalized())
	if err != nil {
		return "", err
	}
	return withGeneration(FilteredProductsKeyPrefix+string(encoded), generation), nil
}

// ProductKey derives the key of a single product within a collection generation.
// A read that raced a mutation can only populate the generation the mutation retired.
func ProductKey(id uint64, generation string) string {
	return withGeneration(ProductKeyPrefix+strconv.FormatUint(id, 10), generation)
}

func withGeneration(key, generation string) string {
	if generation == "" {
		return key
	}
	return key + "@" + generation
}
