package tracing

import (
	"errors"
	"testing"

	"example.com/backstage/services/picking/config"

	"github.com/stretchr/testify/require"
)

func TestTracerDisabledWithoutLicense(t *testing.T) {
	tracer, err := NewTracer(config.TracingConfig{AppName: "Picking Service"})
	require.NoError(t, err)

	txn := tracer.StartTransaction("complete-lot")
	require.Nil(t, txn)
	require.Nil(t, tracer.Application())

	// all calls must tolerate the nil transaction
	seg := tracer.StartSegment(txn, "score")
	seg.End()
	tracer.AddAttribute(txn, "lot_code", "12345678")
	tracer.RecordError(txn, errors.New("boom"))
	tracer.EndTransaction(txn)
	tracer.Close()
}
