package metadata

import "bidsmeta/internal/openminds"

const echoTimeUnit = "second"

// EchoTimes reconstructs the echo time of rec. A list yields a series, a
// scalar yields one bare quantity. When EchoTime is missing (or an empty
// list) the EchoTime1/EchoTime2 pair is collected, in that order, into a
// series. Nothing recorded yields nil.
func (n *Normalizer) EchoTimes(rec Record) (*openminds.EchoTimes, error) {
	raw, err := Extract(rec, PropEchoTime)
	if err != nil {
		return nil, err
	}
	if raw.Present() {
		if items, isList := raw.List(); isList {
			if len(items) > 0 {
				series, err := n.QuantitySeries(raw, PropEchoTime, echoTimeUnit)
				if err != nil {
					return nil, err
				}
				return openminds.EchoTimeSeries(series), nil
			}
		} else {
			q, err := n.Quantity(raw, PropEchoTime, echoTimeUnit)
			if err != nil {
				return nil, err
			}
			return openminds.SingleEchoTime(*q), nil
		}
	}

	var series []openminds.Quantity
	for _, prop := range []Property{PropEchoTime1, PropEchoTime2} {
		alt, err := Extract(rec, prop)
		if err != nil {
			return nil, err
		}
		q, err := n.Quantity(alt, prop, echoTimeUnit)
		if err != nil {
			return nil, err
		}
		if q != nil {
			series = append(series, *q)
		}
	}
	if len(series) == 0 {
		return nil, nil
	}
	return openminds.EchoTimeSeries(series), nil
}
