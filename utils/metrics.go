package utils

import (
	"github.com/DataDog/datadog-go/statsd"
	Logger "github.com/Luismorlan/socialmux/utils/log"
)

const metricPrefix = "socialmux."

// Metrics is the process wide statsd client. It is a no-op until InitMetrics
// is called with an agent address.
var Metrics statsd.ClientInterface = &statsd.NoOpClient{}

func InitMetrics(addr string) {
	if addr == "" {
		return
	}
	client, err := statsd.New(addr, statsd.WithNamespace(metricPrefix))
	if err != nil {
		Logger.Log.Warn("fail to create statsd client, metrics disabled: ", err)
		return
	}
	Metrics = client
}

// CountOp increments the counter of a core operation tagged with its outcome.
func CountOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	Metrics.Incr(op, []string{"outcome:" + outcome}, 1)
}

func CloseMetrics() {
	Metrics.Close()
}
