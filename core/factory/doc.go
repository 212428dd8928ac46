// Package factory holds the generic registry behind configurable modules.
// A module is named by a type string and carries a raw settings map that the
// registered constructor decodes with Decode.
//
//	sinks := factory.NewRegistry[metrics.MetricsSink]()
//	sinks.MustRegister("prometheus", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ Textfile string `json:"textfile"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newPromSink(c.Textfile)
//	})
//	sink, err := sinks.Create(factory.ModuleConfig{Type: "prometheus"})
package factory
