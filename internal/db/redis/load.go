package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/comparables/internal/db"
	"github.com/kailas-cloud/comparables/internal/domain/batch"
	"github.com/kailas-cloud/comparables/internal/domain/property"
)

// loadScript applies a whole batch atomically.
// KEYS[1] ids set; ARGV[1] record key prefix, ARGV[2] "1" to wipe first,
// ARGV[3] write time, ARGV[4..] JSON {id, fields}.
// Returns {total, revision per record}.
var loadScript = rueidis.NewLuaScript(`
local ids = KEYS[1]
local prefix = ARGV[1]
local now = ARGV[3]
if ARGV[2] == '1' then
	for _, id in ipairs(redis.call('SMEMBERS', ids)) do
		redis.call('DEL', prefix .. id)
	end
	redis.call('DEL', ids)
end
local out = {0}
for i = 4, #ARGV do
	local rec = cjson.decode(ARGV[i])
	local key = prefix .. rec.id
	local rev = redis.call('HINCRBY', key, 'revision', 1)
	redis.call('HSETNX', key, 'created_at', now)
	redis.call('HDEL', key, 'total_area', 'covered_area', 'age', 'price')
	redis.call('HSET', key, 'updated_at', now, unpack(rec.fields))
	redis.call('SADD', ids, rec.id)
	out[#out + 1] = rev
end
out[1] = redis.call('SCARD', ids)
return out
`)

// deleteScript removes one record. KEYS[1] ids set, KEYS[2] record key, ARGV[1] id.
// Returns -1 when the record does not exist, else the remaining count.
var deleteScript = rueidis.NewLuaScript(`
if redis.call('DEL', KEYS[2]) == 0 then
	return -1
end
redis.call('SREM', KEYS[1], ARGV[1])
return redis.call('SCARD', KEYS[1])
`)

type scriptRecord struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

// Load upserts props in one script call.
func (s *Store) Load(ctx context.Context, props []property.Property, replace bool) (batch.Result, error) {
	args := make([]string, 0, 3+len(props))
	wipe := "0"
	if replace {
		wipe = "1"
	}
	args = append(args, s.recordPrefix(), wipe, strconv.FormatInt(s.now().UnixNano(), 10))

	for i := range props {
		rec, err := json.Marshal(scriptRecord{ID: props[i].ID(), Fields: encodeFields(&props[i])})
		if err != nil {
			return batch.Result{}, &db.Error{Op: db.OpLoad, Err: err}
		}
		args = append(args, string(rec))
	}

	raw, err := loadScript.Exec(ctx, s.client, []string{s.idsKey()}, args).ToArray()
	if err != nil {
		return batch.Result{}, &db.Error{Op: db.OpLoad, Err: err}
	}
	if len(raw) != len(props)+1 {
		return batch.Result{}, &db.Error{
			Op:  db.OpLoad,
			Err: fmt.Errorf("unexpected script reply length %d for %d records", len(raw), len(props)),
		}
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return batch.Result{}, &db.Error{Op: db.OpLoad, Err: fmt.Errorf("parse total: %w", err)}
	}
	outcomes := make([]batch.Outcome, 0, len(props))
	for _, m := range raw[1:] {
		rev, err := m.AsInt64()
		if err != nil {
			return batch.Result{}, &db.Error{Op: db.OpLoad, Err: fmt.Errorf("parse revision: %w", err)}
		}
		outcomes = append(outcomes, batch.OutcomeFromRevision(int(rev)))
	}
	return batch.Tally(outcomes, int(total)), nil
}

// Delete removes a record and returns the remaining count.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	n, err := deleteScript.Exec(ctx, s.client, []string{s.idsKey(), s.recordKey(id)}, []string{id}).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	if n < 0 {
		return 0, &db.Error{Op: db.OpDelete, Err: db.ErrKeyNotFound}
	}
	return int(n), nil
}
