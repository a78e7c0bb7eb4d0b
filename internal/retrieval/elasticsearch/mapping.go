package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for listing documents.
const DefaultIndexName = "grovi_listings"

// buildIndexMapping returns the JSON mapping for the listings index. Text is
// indexed already normalized in search_text; the analyzers only need to
// split and lowercase.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "folding_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        },
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase", "asciifolding"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "listing_key":       { "type": "keyword" },
      "product_id":        { "type": "keyword" },
      "sku":               { "type": "keyword" },
      "title":             { "type": "text", "analyzer": "folding_analyzer", "fields": { "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "brand":             { "type": "text", "analyzer": "folding_analyzer" },
      "brand_key":         { "type": "keyword" },
      "category_id":       { "type": "keyword" },
      "category_name":     { "type": "text", "analyzer": "folding_analyzer" },
      "leaf_category_id":  { "type": "keyword" },
      "category_path_ids": { "type": "keyword" },
      "in_stock":          { "type": "boolean" },
      "price":             { "type": "long" },
      "store_id":          { "type": "keyword" },
      "search_text":       { "type": "text", "analyzer": "folding_analyzer" }
    }
  }
}`
}
