package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// SearchConfig configures the Elasticsearch sink.
type SearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// SearchSink bulk-indexes events into daily indices named <index>-YYYY.MM.DD.
type SearchSink struct {
	client *elasticsearch.Client
	index  string
}

// NewSearchSink creates a SearchSink. No request is made until the first write.
func NewSearchSink(cfg SearchConfig) (*SearchSink, error) {
	esCfg := elasticsearch.Config{Addresses: cfg.Addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &SearchSink{client: client, index: cfg.Index}, nil
}

// Name identifies the sink in logs and metrics.
func (s *SearchSink) Name() string { return "elasticsearch" }

type bulkAction struct {
	Index bulkTarget `json:"index"`
}

type bulkTarget struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type searchDocument struct {
	*auditDomain.Event
	Timestamp string `json:"@timestamp"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

// Write sends the batch as one bulk request. Event ids are used as document ids so a
// retried batch does not duplicate documents.
func (s *SearchSink) Write(ctx context.Context, events []*auditDomain.Event) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, ev := range events {
		action := bulkAction{Index: bulkTarget{Index: s.indexFor(ev.Timestamp), ID: ev.ID.String()}}
		if err := enc.Encode(action); err != nil {
			return apperrors.Wrap(err, "failed to encode bulk action")
		}
		doc := searchDocument{Event: ev, Timestamp: ev.Timestamp.UTC().Format(time.RFC3339Nano)}
		if err := enc.Encode(doc); err != nil {
			return apperrors.Wrap(err, "failed to encode audit document")
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(body.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("false"),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to index audit events")
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk error: %s", res.Status())
	}

	var parsed bulkResponse
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return apperrors.Wrap(err, "failed to read bulk response")
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apperrors.Wrap(err, "failed to decode bulk response")
	}
	if parsed.Errors {
		return fmt.Errorf("elasticsearch bulk response reported item errors")
	}
	return nil
}

// Close is a no-op.
func (s *SearchSink) Close() error { return nil }

func (s *SearchSink) indexFor(ts time.Time) string {
	return fmt.Sprintf("%s-%s", s.index, ts.UTC().Format("2006.01.02"))
}
