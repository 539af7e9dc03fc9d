package redis

import (
	"clientsvc/internal/backends/fanout"
	"clientsvc/internal/types"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// the braces end the table name and make it the cluster hash tag
	recordKeyNameTemplate = "_clientsvc_{%s}:%s"
	scanBatch             = 200
)

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Each record is a hash whose fields hold JSON-encoded attribute values, so a partial update
// is a plain HSET of the named fields. Existence checks and writes run in one script.
var (
	insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1`)

	updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return false end
redis.call('HSET', KEYS[1], unpack(ARGV))
return redis.call('HGETALL', KEYS[1])`)
)

type RecordStore struct {
	table       string
	cli         *redis.Client
	concurrency int
	newID       func() string
}

func NewRecordStore(table string, cli *redis.Client, concurrency int) *RecordStore {
	return &RecordStore{table: table, cli: cli, concurrency: concurrency, newID: uuid.NewString}
}

func (s *RecordStore) GetAll(ctx context.Context) ([]types.Record, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]types.Record, 0, len(keys))
	if len(keys) == 0 {
		return records, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = s.cli.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HGetAll(ctx, k)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "hgetall")
	}
	for _, c := range cmds {
		fields := c.Val()
		// deleted between SCAN and HGETALL
		if len(fields) == 0 {
			continue
		}
		r, err := decodeRecord(fields)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RecordStore) GetByID(ctx context.Context, id string) (types.Record, error) {
	out := s.cli.HGetAll(ctx, s.recordKey(id))
	if out.Err() != nil {
		if errors.Is(out.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, storageErr(out.Err(), "hgetall")
	}
	if len(out.Val()) == 0 {
		return nil, nil
	}
	return decodeRecord(out.Val())
}

func (s *RecordStore) Insert(ctx context.Context, candidate types.Record) (types.Record, error) {
	rec := candidate.Clone()
	if rec == nil {
		rec = types.Record{}
	}
	id := s.newID()
	rec[types.IDField] = id

	args, err := encodeFields(rec)
	if err != nil {
		return nil, err
	}
	created, err := insertScript.Run(ctx, s.cli, []string{s.recordKey(id)}, args...).Int()
	if err != nil {
		return nil, storageErr(err, "insert")
	}
	if created == 0 {
		return nil, types.Err(types.ErrAlreadyExists, nil, "id %s", id)
	}
	return rec, nil
}

func (s *RecordStore) InsertAll(ctx context.Context, candidates []types.Record) ([]types.Record, error) {
	return fanout.InsertAll(ctx, candidates, s.concurrency, s.Insert)
}

func (s *RecordStore) Update(ctx context.Context, id string, updates types.Record) (types.UpdateResult, error) {
	fields := types.UpdateFields(updates)
	if len(fields) == 0 {
		return types.UpdateResult{Outcome: types.NoFieldsProvided}, nil
	}
	args, err := encodeFields(fields)
	if err != nil {
		return types.UpdateResult{}, err
	}
	flat, err := updateScript.Run(ctx, s.cli, []string{s.recordKey(id)}, args...).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.UpdateResult{Outcome: types.UpdateNotFound}, nil
		}
		return types.UpdateResult{}, storageErr(err, "update")
	}
	m := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		m[flat[i]] = flat[i+1]
	}
	rec, err := decodeRecord(m)
	if err != nil {
		return types.UpdateResult{}, err
	}
	return types.UpdatedWith(rec), nil
}

func (s *RecordStore) DeleteItem(ctx context.Context, id string) error {
	if err := s.cli.Del(ctx, s.recordKey(id)).Err(); err != nil {
		return storageErr(err, "del")
	}
	return nil
}

// CreateTable only checks connectivity; Redis needs no provisioning.
func (s *RecordStore) CreateTable(ctx context.Context) error {
	if err := s.cli.Ping(ctx).Err(); err != nil {
		return storageErr(err, "ping")
	}
	return nil
}

// DeleteTable removes every record key of the table.
func (s *RecordStore) DeleteTable(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.cli.Del(ctx, keys...).Err(); err != nil {
		return storageErr(err, "del")
	}
	return nil
}

func (s *RecordStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.cli.Scan(ctx, 0, s.scanPattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr(err, "scan")
	}
	return keys, nil
}

func (s *RecordStore) recordKey(id string) string {
	return fmt.Sprintf(recordKeyNameTemplate, s.table, id)
}

// scanPattern matches the record keys of this table only. Glob characters in the table
// name are escaped.
func (s *RecordStore) scanPattern() string {
	return fmt.Sprintf(recordKeyNameTemplate, globEscaper.Replace(s.table), "*")
}

func encodeFields(r types.Record) ([]any, error) {
	args := make([]any, 0, 2*len(r))
	for k, v := range r {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, types.Err(types.ErrInvalidInput, err, "encode field %s", k)
		}
		args = append(args, k, string(b))
	}
	return args, nil
}

func decodeRecord(fields map[string]string) (types.Record, error) {
	r := make(types.Record, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, types.Err(types.ErrStorageRejected, err, "decode field %s", k)
		}
		r[k] = v
	}
	return r, nil
}

func storageErr(err error, op string) error {
	return types.Err(types.ErrStorageUnavailable, err, "redis %s", op)
}
