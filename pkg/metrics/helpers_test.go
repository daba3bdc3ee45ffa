package metrics

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"
)

// metricWith returns the first series of name carrying every label pair in labels.
func metricWith(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q has no series %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	metric, err := metricWith(mfs, name, map[string]string{label: value})
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
