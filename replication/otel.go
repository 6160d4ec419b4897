package replication

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/automoto/hitscan-mp/replication"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
