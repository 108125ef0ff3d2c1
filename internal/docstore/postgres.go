package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/beaconsafety/beacon-server/internal/logging"
)

const changeChannelPrefix = "doc:"

// PostgresStore keeps documents as JSONB rows in a single table and
// publishes the change feed over Redis pub/sub so every server instance
// sees writes from every other instance.
type PostgresStore struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

func NewPostgresStore(pool *pgxpool.Pool, redisClient *redis.Client) *PostgresStore {
	return &PostgresStore{pool: pool, redis: redisClient}
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2",
		collection, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s/%s: %w", collection, id, err)
	}
	return decodeDocument(id, raw)
}

func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	conditions := []string{"collection = $1"}
	args := []any{collection}
	idx := 2

	for _, f := range filters {
		path := strings.Split(f.Field, ".")
		for _, seg := range path {
			if seg == "" {
				return nil, fmt.Errorf("invalid filter field %q", f.Field)
			}
		}
		switch f.Op {
		case OpEqual:
			value, err := json.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("encoding filter value for %s: %w", f.Field, err)
			}
			conditions = append(conditions, fmt.Sprintf("data #> $%d = $%d::jsonb", idx, idx+1))
			args = append(args, path, string(value))
			idx += 2
		case OpIn:
			values, ok := f.Value.([]string)
			if !ok {
				return nil, fmt.Errorf("in filter on %s requires a string set", f.Field)
			}
			conditions = append(conditions, fmt.Sprintf("data #>> $%d = ANY($%d)", idx, idx+1))
			args = append(args, path, values)
			idx += 2
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}

	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT id, data FROM documents WHERE %s", strings.Join(conditions, " AND ")),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding document %s/%s: %w", collection, id, err)
	}

	var inserted bool
	err = s.pool.QueryRow(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		 RETURNING (xmax = 0)`,
		collection, id, raw,
	).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("setting document %s/%s: %w", collection, id, err)
	}

	kind := ChangeModified
	if inserted {
		kind = ChangeAdded
	}
	s.publish(ctx, kind, collection, id, raw)
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	if err := validateUpdates(updates); err != nil {
		return err
	}

	expr := "data"
	args := []any{collection, id}
	idx := 3
	for _, u := range updates {
		value, err := json.Marshal(u.Value)
		if err != nil {
			return fmt.Errorf("encoding update %s: %w", u.Path, err)
		}
		expr = fmt.Sprintf("jsonb_set(%s, $%d::text[], $%d::jsonb, true)", expr, idx, idx+1)
		args = append(args, []string(u.Path), string(value))
		idx += 2
	}

	var raw []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE documents SET data = %s, updated_at = NOW()
			 WHERE collection = $1 AND id = $2
			 RETURNING data`,
			expr,
		),
		args...,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating document %s/%s: %w", collection, id, err)
	}

	s.publish(ctx, ChangeModified, collection, id, raw)
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2 RETURNING data",
		collection, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}

	s.publish(ctx, ChangeRemoved, collection, id, raw)
	return nil
}

// Subscribe consumes the collection's Redis channel and applies the
// filters client-side. The underlying pub/sub connection reconnects on
// failure; changes published while disconnected are not replayed, so
// consumers needing a complete view should re-Query after long gaps.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, filters []Filter, fn func(Change)) (Subscription, error) {
	pubsub := s.redis.Subscribe(ctx, changeChannelPrefix+collection)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", collection, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var event changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logging.Warn("Dropping malformed change event", map[string]interface{}{
					"collection": collection,
					"error":      err.Error(),
				})
				continue
			}
			if !matches(event.Data, filters) {
				continue
			}
			fn(Change{
				Kind:       event.Kind,
				Collection: event.Collection,
				Doc:        Document{ID: event.ID, Fields: event.Data},
			})
		}
	}()

	return &redisSub{pubsub: pubsub}, nil
}

func (s *PostgresStore) Batch(ctx context.Context, writes []Write) error {
	for i, w := range writes {
		var err error
		switch w.Op {
		case WriteSet:
			err = s.Set(ctx, w.Collection, w.ID, w.Fields)
		case WriteUpdate:
			err = s.Update(ctx, w.Collection, w.ID, w.Updates)
		case WriteDelete:
			err = s.Delete(ctx, w.Collection, w.ID)
		default:
			err = fmt.Errorf("unknown write op %d", w.Op)
		}
		if err != nil {
			return fmt.Errorf("batch write %d (%s/%s): %w", i, w.Collection, w.ID, err)
		}
	}
	return nil
}

type redisSub struct {
	pubsub *redis.PubSub
}

func (s *redisSub) Close() error { return s.pubsub.Close() }

type changeEvent struct {
	Kind       ChangeKind     `json:"kind"`
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Data       map[string]any `json:"data"`
}

func (s *PostgresStore) publish(ctx context.Context, kind ChangeKind, collection, id string, raw []byte) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		logging.Warn("Skipping change publish for undecodable document", map[string]interface{}{
			"collection": collection,
			"id":         id,
		})
		return
	}
	payload, err := json.Marshal(changeEvent{Kind: kind, Collection: collection, ID: id, Data: fields})
	if err != nil {
		return
	}
	// Change feed delivery is best effort; a failed publish never fails
	// the write it describes.
	if err := s.redis.Publish(ctx, changeChannelPrefix+collection, payload).Err(); err != nil {
		logging.Warn("Failed to publish document change", map[string]interface{}{
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		})
	}
}

func decodeDocument(id string, raw []byte) (*Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}
