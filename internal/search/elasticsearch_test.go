package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/models"

	"github.com/stretchr/testify/require"
)

func TestActivityDocumentFlattensPayload(t *testing.T) {
	event := models.ActivityEvent{
		ID:            "evt-1",
		AggregateType: models.AggregateLot,
		AggregateID:   "12345678",
		EventType:     "LotCompleted",
		ActorUID:      "u1",
		Data:          []byte(`{"xpEarned":200,"id":"ignored"}`),
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	doc := ActivityDocument(event)

	require.Equal(t, "evt-1", doc["id"])
	require.Equal(t, "12345678", doc["aggregate_id"])
	require.Equal(t, float64(200), doc["xpEarned"])
}

func TestIndexActivity(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer server.Close()

	client, err := NewElasticClient(config.ElasticConfig{
		Enabled: true,
		URL:     server.URL,
		Prefix:  "picking",
		Index:   "activity",
	})
	require.NoError(t, err)

	err = client.IndexActivity(context.Background(), models.ActivityEvent{
		ID:            "evt-2",
		AggregateType: models.AggregateSingleOrder,
		AggregateID:   "SO-1",
		EventType:     "SingleOrderSealed",
		Data:          []byte(`{}`),
	})
	require.NoError(t, err)
	require.Equal(t, "/picking-activity/_doc/evt-2", gotPath)
	require.Equal(t, "SingleOrderSealed", gotBody["event_type"])
}

func TestActivityQuery(t *testing.T) {
	q := ActivityQuery(ActivityFilter{AggregateID: "12345678"})
	require.Equal(t, 50, q["size"])

	filter := q["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]map[string]interface{})
	require.Len(t, filter, 1)
	require.Equal(t, map[string]interface{}{"aggregate_id.keyword": "12345678"}, filter[0]["term"])

	all := ActivityQuery(ActivityFilter{Size: 10})
	require.Equal(t, 10, all["size"])
	require.Contains(t, all["query"], "match_all")
}

func TestSearchActivity(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"event_type":"LotCompleted","aggregate_id":"12345678"}}]}}`))
	}))
	defer server.Close()

	client, err := NewElasticClient(config.ElasticConfig{Enabled: true, URL: server.URL, Prefix: "picking", Index: "activity"})
	require.NoError(t, err)

	docs, err := client.SearchActivity(context.Background(), ActivityQuery(ActivityFilter{AggregateID: "12345678"}))
	require.NoError(t, err)
	require.Equal(t, "/picking-activity/_search", gotPath)
	require.Len(t, docs, 1)
	require.Equal(t, "LotCompleted", docs[0]["event_type"])
}

func TestNewElasticClientDisabled(t *testing.T) {
	_, err := NewElasticClient(config.ElasticConfig{Enabled: false})
	require.Error(t, err)
}
