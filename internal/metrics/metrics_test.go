package metrics

import (
	"bytes"
	"clientsvc/internal/types"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "unavailable", Result(types.Err(types.ErrStorageUnavailable, errors.New("x"), "")))
	assert.Equal(t, "rejected", Result(types.Err(types.ErrStorageRejected, nil, "")))
	assert.Equal(t, "error", Result(errors.New("x")))
}

func TestObserveStoreOpIsExported(t *testing.T) {
	before := StoreOpCount("test", "insert", "ok")
	ObserveStoreOp("test", "insert", time.Now(), nil)
	assert.Equal(t, before+1, StoreOpCount("test", "insert", "ok"))

	var buf bytes.Buffer
	WritePrometheus(&buf)
	assert.Contains(t, buf.String(), `clientsvc_store_ops_total{backend="test",op="insert",result="ok"}`)
}
