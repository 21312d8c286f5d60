package redis

import "github.com/redis/go-redis/v9"

const (
	statusOK       int64 = 0
	statusNotFound int64 = -1
	statusConflict int64 = -2
	statusStale    int64 = -3
)

// insertScript claims unique keys, writes records, and indexes them atomically.
//
// KEYS: c claim keys, r record keys, z zset keys.
// ARGV: c, r, z, c claim owners, r record values, z (score, member) pairs.
// Returns 0, or the 1-based index of the first claim already held.
const insertScript = `
local c = tonumber(ARGV[1])
local r = tonumber(ARGV[2])
local z = tonumber(ARGV[3])
for i = 1, c do
  if redis.call("EXISTS", KEYS[i]) == 1 then
    return i
  end
end
local owners = 4
for i = 1, c do
  redis.call("SET", KEYS[i], ARGV[owners + i - 1])
end
local values = owners + c
for i = 1, r do
  redis.call("SET", KEYS[c + i], ARGV[values + i - 1])
end
local pairs_at = values + r
for i = 1, z do
  redis.call("ZADD", KEYS[c + r + i], ARGV[pairs_at + 2 * (i - 1)], ARGV[pairs_at + 2 * (i - 1) + 1])
end
return 0
`

var insertLua = redis.NewScript(insertScript)

// patchScript overwrites top-level fields of a JSON record.
//
// KEYS[1]: record key. ARGV: field/value pairs; "true"/"false" become booleans.
const patchScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return -1
end
local rec = cjson.decode(raw)
for i = 1, #ARGV, 2 do
  local v = ARGV[i + 1]
  if v == "true" then
    v = true
  elseif v == "false" then
    v = false
  end
  rec[ARGV[i]] = v
end
redis.call("SET", KEYS[1], cjson.encode(rec))
return 0
`

var patchLua = redis.NewScript(patchScript)

// swapHashScript sets password_hash only while it equals the expected value.
//
// KEYS[1]: account record. ARGV: expected hash, new hash.
// Returns 0 when swapped, -3 when the hash has moved on.
const swapHashScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return -1
end
local rec = cjson.decode(raw)
if rec.password_hash ~= ARGV[1] then
  return -3
end
rec.password_hash = ARGV[2]
redis.call("SET", KEYS[1], cjson.encode(rec))
return 0
`

var swapHashLua = redis.NewScript(swapHashScript)

// recodeScript moves a tenant's code claim.
//
// KEYS: tenant record, old code claim, new code claim.
// ARGV: old code, new code, tenant ID.
const recodeScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return -1
end
local t = cjson.decode(raw)
if t.code ~= ARGV[1] then
  return -3
end
if ARGV[1] == ARGV[2] then
  return 0
end
if redis.call("EXISTS", KEYS[3]) == 1 then
  return -2
end
redis.call("DEL", KEYS[2])
redis.call("SET", KEYS[3], ARGV[3])
t.code = ARGV[2]
redis.call("SET", KEYS[1], cjson.encode(t))
return 0
`

var recodeLua = redis.NewScript(recodeScript)
