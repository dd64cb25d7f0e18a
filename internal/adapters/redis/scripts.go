package redisad

import "github.com/redis/go-redis/v9"

// KEYS[1] reservation hash, KEYS[2] guest index.
// ARGV[1] index score, ARGV[2] booking id, ARGV[3..] field/value pairs.
var createReservationScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// KEYS[1] reservation hash. ARGV field/value pairs.
var updateReservationScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// KEYS[1] guest index. ARGV[1] hash key prefix, ARGV[2] guest email, ARGV[3] status ('' = any).
// Walks the index newest first and returns each matching hash as a flat field/value list.
var guestReservationsScript = redis.NewScript(`
local ids = redis.call('ZREVRANGE', KEYS[1], 0, -1)
local out = {}
for _, id in ipairs(ids) do
  local k = ARGV[1] .. id .. ':' .. ARGV[2]
  if ARGV[3] == '' or redis.call('HGET', k, 'status') == ARGV[3] then
    local row = redis.call('HGETALL', k)
    if #row > 0 then
      table.insert(out, row)
    end
  end
end
return out
`)
