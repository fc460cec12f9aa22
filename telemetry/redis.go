package telemetry

import (
	"context"

	"github.com/garyburd/redigo/redis"
)

// RedisPublisher keeps the latest reading in a redis hash.
type RedisPublisher struct {
	conn redis.Conn
	key  string
}

type redisReading struct {
	Time    string  `redis:"time"`
	Clock   string  `redis:"clock"`
	Celsius float32 `redis:"celsius"`
}

// DialRedis connects to the redis server at addr (host:port).
func DialRedis(addr, key string) (*RedisPublisher, error) {
	conn, err := redis.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewRedisPublisher(conn, key), nil
}

func NewRedisPublisher(conn redis.Conn, key string) *RedisPublisher {
	return &RedisPublisher{conn: conn, key: key}
}

func (p *RedisPublisher) Publish(ctx context.Context, r Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := r.wire()
	rr := redisReading{Time: w.Time, Clock: w.Clock, Celsius: w.Celsius}
	_, err := p.conn.Do("HMSET", redis.Args{}.Add(p.key).AddFlat(&rr)...)
	return err
}

func (p *RedisPublisher) Close() error {
	return p.conn.Close()
}
