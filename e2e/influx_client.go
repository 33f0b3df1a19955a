package e2e

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxVerifier wraps the official InfluxDB v2 client to read back what
// the metrics sink wrote during a test.
type InfluxVerifier struct {
	client influxdb2.Client
	query  api.QueryAPI
	bucket string
}

func NewInfluxVerifier(url, token, org, bucket string) *InfluxVerifier {
	c := influxdb2.NewClient(url, token)
	return &InfluxVerifier{client: c, query: c.QueryAPI(org), bucket: bucket}
}

// CountPoints returns the number of rows a measurement produced in the
// last hour.
func (v *InfluxVerifier) CountPoints(ctx context.Context, measurement string) (int, error) {
	flux := `from(bucket:"` + v.bucket + `") |> range(start:-1h) |> filter(fn: (r) => r._measurement == "` + measurement + `")`
	res, err := v.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	count := 0
	for res.Next() {
		count++
	}
	return count, res.Err()
}

func (v *InfluxVerifier) Close() { v.client.Close() }
