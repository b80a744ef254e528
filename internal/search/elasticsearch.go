package search

import (
	"bytes"
	"context"
	"encoding/json"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/models"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ElasticClient projects activity events into Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if !cfg.Enabled {
		return nil, errors.New("elasticsearch is disabled")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// ActivityDocument builds the indexed document for an event
func ActivityDocument(event models.ActivityEvent) map[string]interface{} {
	doc := map[string]interface{}{
		"id":             event.ID,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"event_type":     event.EventType,
		"actor_uid":      event.ActorUID,
		"time":           event.CreatedAt,
	}

	// Flatten the payload so dashboards can aggregate on xp, durations and users
	var data map[string]interface{}
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID).Msg("could not unmarshal event data")
		}
	}
	for key, value := range data {
		if _, reserved := doc[key]; !reserved {
			doc[key] = value
		}
	}
	return doc
}

// IndexActivity indexes one activity event, keyed by its id so retries overwrite
func (c *ElasticClient) IndexActivity(ctx context.Context, event models.ActivityEvent) error {
	docJSON, err := json.Marshal(ActivityDocument(event))
	if err != nil {
		return errors.Wrap(err, "failed to marshal activity document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, c.config.Index),
		DocumentID: event.ID,
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Debug().Str("event_id", event.ID).Str("event_type", event.EventType).Msg("activity event indexed")
	return nil
}

// ActivityFilter narrows an activity search; empty fields are ignored
type ActivityFilter struct {
	AggregateID string
	EventType   string
	ActorUID    string
	Size        int
}

// ActivityQuery builds the search body for filter, newest events first
func ActivityQuery(filter ActivityFilter) map[string]interface{} {
	must := make([]map[string]interface{}, 0, 3)
	for field, value := range map[string]string{
		"aggregate_id": filter.AggregateID,
		"event_type":   filter.EventType,
		"actor_uid":    filter.ActorUID,
	} {
		if value != "" {
			must = append(must, map[string]interface{}{"term": map[string]interface{}{field + ".keyword": value}})
		}
	}

	size := filter.Size
	if size <= 0 || size > 500 {
		size = 50
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(must) > 0 {
		query = map[string]interface{}{"bool": map[string]interface{}{"filter": must}}
	}
	return map[string]interface{}{
		"size":  size,
		"query": query,
		"sort":  []map[string]interface{}{{"time": map[string]interface{}{"order": "desc"}}},
	}
}

// SearchActivity runs a raw query against the activity index and returns the sources
func (c *ElasticClient) SearchActivity(ctx context.Context, query map[string]interface{}) ([]map[string]interface{}, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	req := esapi.SearchRequest{
		Index: []string{config.FormatIndex(c.config, c.config.Index)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return nil, errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return nil, errors.Errorf("Elasticsearch search error: %v", e)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to parse Elasticsearch search response")
	}

	docs := make([]map[string]interface{}, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// Ping checks cluster connectivity
func (c *ElasticClient) Ping(ctx context.Context) error {
	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "failed to ping Elasticsearch")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Errorf("Elasticsearch ping returned %s", res.Status())
	}
	return nil
}
