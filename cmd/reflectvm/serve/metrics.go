// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"bufio"
	"net/http"
	"strconv"
	"strings"

	"github.com/luxfi/metric"
)

const textContentType = "text/plain; version=0.0.4; charset=utf-8"

// metricsHandler writes every gathered series in the text exposition format.
func metricsHandler(gatherer metric.Gatherer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		families, err := gatherer.Gather()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", textContentType)
		out := bufio.NewWriter(w)
		for _, family := range families {
			for _, m := range family.Metrics {
				out.WriteString(family.Name)
				if len(m.Labels) > 0 {
					pairs := make([]string, len(m.Labels))
					for i, label := range m.Labels {
						pairs[i] = label.Name + "=" + strconv.Quote(label.Value)
					}
					out.WriteString("{" + strings.Join(pairs, ",") + "}")
				}
				out.WriteString(" " + strconv.FormatFloat(m.Value.Value, 'g', -1, 64) + "\n")
			}
		}
		_ = out.Flush()
	})
}
