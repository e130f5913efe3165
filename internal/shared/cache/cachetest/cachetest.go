// Package cachetest registers redismock expectations for the cache helpers.
package cachetest

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"testing"
	"time"

	"hrms-lite/internal/shared/cache"

	"github.com/go-redis/redismock/v9"
)

// ExpectGeneration expects the generation read of key. gen < 0 means the
// counter does not exist yet.
func ExpectGeneration(mock redismock.ClientMock, key string, gen int64) {
	e := mock.ExpectGet(cache.GenerationKey(key))
	if gen < 0 {
		e.RedisNil()
		return
	}
	e.SetVal(strconv.FormatInt(gen, 10))
}

// ExpectFill expects a conditional write of v under key at generation gen.
// written is the script's answer: false means a newer invalidation won.
func ExpectFill(t testing.TB, mock redismock.ClientMock, key string, gen int64, v any, ttl time.Duration, written bool) *redismock.ExpectedCmd {
	t.Helper()

	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal cache payload: %v", err)
	}

	reply := int64(0)
	if written {
		reply = 1
	}

	e := mock.CustomMatch(ignoreScriptBody).ExpectEval("",
		[]string{key, cache.GenerationKey(key)},
		strconv.FormatInt(gen, 10), string(payload), ttl.Milliseconds(),
	)
	e.SetVal(reply)
	return e
}

// ExpectInvalidate expects the generation bumps followed by the delete.
func ExpectInvalidate(mock redismock.ClientMock, keys ...string) {
	for _, k := range keys {
		mock.ExpectIncr(cache.GenerationKey(k)).SetVal(1)
	}
	mock.ExpectDel(keys...).SetVal(int64(len(keys)))
}

// ignoreScriptBody compares EVAL arguments except the script source.
func ignoreScriptBody(expected, actual []interface{}) error {
	for i := range expected {
		if i == 1 {
			continue
		}
		if !reflect.DeepEqual(expected[i], actual[i]) {
			return fmt.Errorf("eval argument %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	return nil
}
